package api

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestHealthReportsStoreAvailability(t *testing.T) {
	testApp := newTestApp(t)

	payload := map[string]string{}
	testApp.expectStatus(t, http.MethodGet, "/healthz", "", nil, http.StatusOK, &payload)
	if payload["status"] != "ok" {
		t.Fatalf("expected ok health status, got %v", payload)
	}

	if err := testApp.store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	response := testApp.do(t, http.MethodGet, "/healthz", "", nil)
	if response.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 with a closed store, got %d", response.StatusCode)
	}
}

func TestMetricsEndpointExposesWorkflowCounters(t *testing.T) {
	testApp := newTestApp(t)
	cookie := testApp.registerUser(t, "alice")
	experiment, batches, timepoints := testApp.startedExperiment(t, cookie, 1)

	testApp.expectStatus(t, http.MethodPatch, measurementPath(batches[0].ID, timepoints[0].ID, "measurement"), cookie,
		map[string]any{"ph_value": 3.3}, http.StatusOK, nil)
	testApp.expectStatus(t, http.MethodPost, experimentPath(experiment.ID, "advance"), cookie, nil, http.StatusOK, nil)

	response := testApp.do(t, http.MethodGet, "/metrics", "", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected metrics status 200, got %d", response.StatusCode)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, sample := range []string{
		"kombucha_eln_measurements_recorded_total 1",
		"kombucha_eln_timepoint_advances_total 1",
	} {
		if !strings.Contains(string(body), sample) {
			t.Fatalf("expected metrics sample %q", sample)
		}
	}
}

func TestUnknownRouteReturnsJSONNotFound(t *testing.T) {
	testApp := newTestApp(t)

	response := testApp.do(t, http.MethodGet, "/api/unknown", "", nil)
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", response.StatusCode)
	}
	if message := readAPIError(t, response.Body); message != "not found" {
		t.Fatalf("expected not found error, got %q", message)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	testApp := newTestApp(t)

	response := testApp.do(t, http.MethodGet, "/healthz", "", nil)
	if strings.TrimSpace(response.Header.Get(requestIDHeader)) == "" {
		t.Fatal("expected generated request id header")
	}
}
