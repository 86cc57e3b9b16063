package elabftw

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          map[string]any
}

type fakeElab struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   map[string]int
}

func (fake *fakeElab) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body := map[string]any{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Errorf("decode request body: %v", err)
			}
		}

		fake.mu.Lock()
		fake.requests = append(fake.requests, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		status, overridden := fake.status[r.Method+" "+r.URL.Path]
		fake.mu.Unlock()

		if overridden {
			w.WriteHeader(status)
			return
		}
		if r.Method == http.MethodPost && r.URL.Path == "/api/v2/experiments" {
			w.Header().Set("Location", "https://elab.example.org/api/v2/experiments/42")
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func newTestClient(t *testing.T, fake *fakeElab) *Client {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	return New(nil, Config{BaseURL: server.URL + "/api/v2/", CategoryID: 3})
}

func TestUpsertCreatesThenPatchesBody(t *testing.T) {
	fake := &fakeElab{}
	client := newTestClient(t, fake)

	id, err := client.Upsert(context.Background(), "key-1", nil, "Run 1", "<html>report</html>", []string{"KombuchaELN", "API"})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id from Location header, got %d", id)
	}
	if len(fake.requests) != 2 {
		t.Fatalf("expected create and patch requests, got %d", len(fake.requests))
	}

	create := fake.requests[0]
	if create.Method != http.MethodPost || create.Path != "/api/v2/experiments" {
		t.Fatalf("unexpected create request %s %s", create.Method, create.Path)
	}
	if create.Authorization != "key-1" {
		t.Fatalf("expected api key in Authorization header, got %q", create.Authorization)
	}
	if create.Body["title"] != "Run 1" || create.Body["category"] != float64(3) {
		t.Fatalf("unexpected create payload: %v", create.Body)
	}

	patch := fake.requests[1]
	if patch.Method != http.MethodPatch || patch.Path != "/api/v2/experiments/42" {
		t.Fatalf("unexpected patch request %s %s", patch.Method, patch.Path)
	}
	if patch.Body["body"] != "<html>report</html>" {
		t.Fatalf("expected report body in patch, got %v", patch.Body)
	}
}

func TestUpsertUpdatesExistingExperiment(t *testing.T) {
	fake := &fakeElab{}
	client := newTestClient(t, fake)

	remoteID := int64(7)
	id, err := client.Upsert(context.Background(), "key-1", &remoteID, "Run 1", "<p>v2</p>", nil)
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected existing id 7, got %d", id)
	}
	if len(fake.requests) != 1 || fake.requests[0].Method != http.MethodPatch {
		t.Fatalf("expected a single PATCH, got %+v", fake.requests)
	}
	if fake.requests[0].Body["title"] != "Run 1" {
		t.Fatalf("expected title in update payload, got %v", fake.requests[0].Body)
	}
}

func TestUpsertReportsRemoteNotFound(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound} {
		fake := &fakeElab{status: map[string]int{"PATCH /api/v2/experiments/9": status}}
		client := newTestClient(t, fake)

		remoteID := int64(9)
		_, err := client.Upsert(context.Background(), "key-1", &remoteID, "Run", "<p></p>", nil)
		if !errors.Is(err, ErrRemoteNotFound) {
			t.Fatalf("status %d: expected ErrRemoteNotFound, got %v", status, err)
		}
	}
}

func TestUpsertServerErrorIsNotRemoteNotFound(t *testing.T) {
	fake := &fakeElab{status: map[string]int{"POST /api/v2/experiments": http.StatusInternalServerError}}
	client := newTestClient(t, fake)

	_, err := client.Upsert(context.Background(), "key-1", nil, "Run", "<p></p>", nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected HTTPError 500, got %v", err)
	}
	if errors.Is(err, ErrRemoteNotFound) {
		t.Fatal("did not expect ErrRemoteNotFound for a server error")
	}
}

func TestUpsertRequiresAPIKey(t *testing.T) {
	client := New(nil, Config{})
	if _, err := client.Upsert(context.Background(), " ", nil, "Run", "", nil); !errors.Is(err, ErrAPIKeyRequired) {
		t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestIDFromLocation(t *testing.T) {
	cases := map[string]int64{
		"https://elab/api/v2/experiments/15":  15,
		"https://elab/api/v2/experiments/15/": 15,
		"/experiments/3":                      3,
	}
	for location, expected := range cases {
		id, err := idFromLocation(location)
		if err != nil || id != expected {
			t.Fatalf("idFromLocation(%q) = %d, %v", location, id, err)
		}
	}
	if _, err := idFromLocation("https://elab/api/v2/experiments/abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestUpsertCreateForbiddenIsNotRemoteNotFound(t *testing.T) {
	fake := &fakeElab{status: map[string]int{"POST /api/v2/experiments": http.StatusForbidden}}
	client := newTestClient(t, fake)

	_, err := client.Upsert(context.Background(), "key-1", nil, "Run", "<p></p>", nil)
	if err == nil || errors.Is(err, ErrRemoteNotFound) {
		t.Fatalf("expected plain HTTP error for forbidden create, got %v", err)
	}
}
