package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkflowCounters(t *testing.T) {
	workflow := NewWorkflow()

	workflow.MeasurementRecorded()
	workflow.MeasurementRecorded()
	workflow.BatchActionLogged("preparation")
	workflow.TimepointAdvanced()
	workflow.SyncFinished("created")

	if got := testutil.ToFloat64(workflow.measurements); got != 2 {
		t.Fatalf("expected 2 measurements, got %v", got)
	}
	if got := testutil.ToFloat64(workflow.actions.WithLabelValues("preparation")); got != 1 {
		t.Fatalf("expected 1 preparation action, got %v", got)
	}
	if got := testutil.ToFloat64(workflow.syncs.WithLabelValues("created")); got != 1 {
		t.Fatalf("expected 1 created sync, got %v", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	workflow := NewWorkflow()
	workflow.TimepointAdvanced()

	recorder := httptest.NewRecorder()
	workflow.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(recorder.Result().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "kombucha_eln_timepoint_advances_total 1") {
		t.Fatalf("expected advance counter in exposition, got:\n%s", body)
	}
}
