package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/elabftw"
	"github.com/terraincognita07/kombucha-eln/internal/metrics"
	"github.com/terraincognita07/kombucha-eln/internal/report"
)

type testApp struct {
	app     *fiber.App
	store   *db.Store
	remote  *fakeRemoteNotebook
	metrics *metrics.Workflow
}

type fakeRemoteNotebook struct {
	nextID  int64
	missing map[int64]bool
	titles  []string
}

func (fake *fakeRemoteNotebook) Upsert(_ context.Context, _ string, remoteID *int64, title string, _ string, _ []string) (int64, error) {
	fake.titles = append(fake.titles, title)
	if remoteID != nil {
		if fake.missing[*remoteID] {
			return 0, elabftw.ErrRemoteNotFound
		}
		return *remoteID, nil
	}
	fake.nextID++
	return fake.nextID, nil
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "kombucha-eln-api-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := db.NewStore(database)
	t.Cleanup(func() {
		_ = store.Close()
	})

	workflow := metrics.NewWorkflow()
	remote := &fakeRemoteNotebook{nextID: 100, missing: make(map[int64]bool)}
	handler, err := NewHandler("test-secret-key", false, Dependencies{
		Store:          store,
		Metrics:        workflow,
		MetricsHandler: workflow.Handler(),
		Remote:         remote,
		Render:         report.Render,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	app.Use(RequestID())
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{app: app, store: store, remote: remote, metrics: workflow}
}

// do sends a JSON request. body may be nil, a raw string or a value to encode.
func (testApp *testApp) do(t *testing.T, method string, path string, cookie string, body any) *http.Response {
	t.Helper()

	var payload *bytes.Reader
	switch value := body.(type) {
	case nil:
		payload = bytes.NewReader(nil)
	case string:
		payload = bytes.NewReader([]byte(value))
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		payload = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, payload)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := testApp.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func (testApp *testApp) expectStatus(t *testing.T, method string, path string, cookie string, body any, status int, target any) {
	t.Helper()

	response := testApp.do(t, method, path, cookie, body)
	if response.StatusCode != status {
		t.Fatalf("%s %s: expected status %d, got %d (%s)", method, path, status, response.StatusCode, readAPIError(t, response.Body))
	}
	if target != nil {
		decodeResponse(t, response.Body, target)
	}
}

func (testApp *testApp) registerUser(t *testing.T, username string) string {
	t.Helper()

	response := testApp.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"password": "StrongPass1",
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d", response.StatusCode)
	}
	cookie := responseCookie(response.Cookies(), authCookieName)
	if cookie == nil || strings.TrimSpace(cookie.Value) == "" {
		t.Fatal("auth cookie is missing in register response")
	}
	return cookie.Name + "=" + cookie.Value
}

type experimentPayload struct {
	ID                 uint   `json:"id"`
	Title              string `json:"title"`
	Status             string `json:"status"`
	CurrentTimepointID *uint  `json:"current_timepoint_id"`
	ElabID             *int64 `json:"elab_id"`
}

type timepointPayload struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type batchPayload struct {
	ID      uint     `json:"id"`
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	PHValue *float64 `json:"ph_value"`
}

func (testApp *testApp) startedExperiment(t *testing.T, cookie string, numBatches int) (experimentPayload, []batchPayload, []timepointPayload) {
	t.Helper()

	created := experimentPayload{}
	testApp.expectStatus(t, http.MethodPost, "/api/experiments", cookie,
		map[string]any{"title": "Green tea run", "num_batches": numBatches}, http.StatusCreated, &created)

	started := experimentPayload{}
	testApp.expectStatus(t, http.MethodPost, experimentPath(created.ID, "start"), cookie, nil, http.StatusOK, &started)

	batches := []batchPayload{}
	testApp.expectStatus(t, http.MethodGet, experimentPath(created.ID, "batches"), cookie, nil, http.StatusOK, &batches)
	timepoints := []timepointPayload{}
	testApp.expectStatus(t, http.MethodGet, experimentPath(created.ID, "timepoints"), cookie, nil, http.StatusOK, &timepoints)
	return started, batches, timepoints
}

func experimentPath(experimentID uint, suffix string) string {
	if suffix == "" {
		return fmt.Sprintf("/api/experiments/%d", experimentID)
	}
	return fmt.Sprintf("/api/experiments/%d/%s", experimentID, suffix)
}

func measurementPath(batchID uint, timepointID uint, suffix string) string {
	return fmt.Sprintf("/api/batches/%d/timepoints/%d/%s", batchID, timepointID, suffix)
}
