package api

import (
	"fmt"
	"net/http"
	"testing"
)

func TestOtherUsersResourcesResolveToNotFound(t *testing.T) {
	testApp := newTestApp(t)
	alice := testApp.registerUser(t, "alice")
	bob := testApp.registerUser(t, "bob")
	experiment, batches, timepoints := testApp.startedExperiment(t, alice, 1)

	requests := []struct {
		method string
		path   string
		body   any
	}{
		{method: http.MethodGet, path: experimentPath(experiment.ID, "")},
		{method: http.MethodPatch, path: experimentPath(experiment.ID, ""), body: map[string]any{"title": "mine"}},
		{method: http.MethodDelete, path: experimentPath(experiment.ID, "")},
		{method: http.MethodPost, path: experimentPath(experiment.ID, "advance")},
		{method: http.MethodGet, path: experimentPath(experiment.ID, "snapshot")},
		{method: http.MethodGet, path: experimentPath(experiment.ID, "batches")},
		{method: http.MethodGet, path: fmt.Sprintf("/api/batches/%d", batches[0].ID)},
		{method: http.MethodPost, path: fmt.Sprintf("/api/batches/%d/actions/preparation", batches[0].ID)},
		{method: http.MethodGet, path: fmt.Sprintf("/api/timepoints/%d", timepoints[0].ID)},
		{method: http.MethodPatch, path: measurementPath(batches[0].ID, timepoints[0].ID, "measurement"), body: map[string]any{"ph_value": 3}},
	}
	for _, request := range requests {
		response := testApp.do(t, request.method, request.path, bob, request.body)
		if response.StatusCode != http.StatusNotFound {
			t.Fatalf("%s %s as another user: expected status 404, got %d", request.method, request.path, response.StatusCode)
		}
	}

	listed := []experimentPayload{}
	testApp.expectStatus(t, http.MethodGet, "/api/experiments", bob, nil, http.StatusOK, &listed)
	if len(listed) != 0 {
		t.Fatalf("expected empty experiment list for bob, got %+v", listed)
	}

	testApp.expectStatus(t, http.MethodGet, experimentPath(experiment.ID, ""), alice, nil, http.StatusOK, nil)
}

func TestMeasurementRouteChecksTimepointOwnership(t *testing.T) {
	testApp := newTestApp(t)
	alice := testApp.registerUser(t, "alice")
	bob := testApp.registerUser(t, "bob")
	_, aliceBatches, _ := testApp.startedExperiment(t, alice, 1)
	_, _, bobTimepoints := testApp.startedExperiment(t, bob, 1)

	response := testApp.do(t, http.MethodPatch, measurementPath(aliceBatches[0].ID, bobTimepoints[0].ID, "measurement"), alice,
		map[string]any{"ph_value": 3})
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected foreign timepoint status 404, got %d", response.StatusCode)
	}

	response = testApp.do(t, http.MethodPut, experimentPath(1, "current-timepoint"), alice,
		map[string]any{"timepoint_id": bobTimepoints[0].ID})
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected foreign current timepoint status 404, got %d", response.StatusCode)
	}
}
