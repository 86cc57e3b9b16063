package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestBuildExperimentSnapshotIsRepeatable(t *testing.T) {
	fixture := newWorkflowFixture(t)
	ctx := context.Background()
	experiment, batches, timepoints := fixture.startExperiment(t, 2)

	if _, err := fixture.batches.LogBatchAction(ctx, batches[0].ID, ActionPreparation, nil, BatchActionValues{}); err != nil {
		t.Fatalf("prepare batch: %v", err)
	}
	if _, err := fixture.measurements.RecordMeasurement(ctx, batches[0].ID, timepoints[1].ID, MeasurementPatch{PHValue: Set(3.1)}); err != nil {
		t.Fatalf("record t4: %v", err)
	}
	if _, err := fixture.measurements.RecordMeasurement(ctx, batches[0].ID, timepoints[0].ID, MeasurementPatch{PHValue: Set(3.9)}); err != nil {
		t.Fatalf("record t0: %v", err)
	}

	first, err := fixture.snapshots.BuildExperimentSnapshot(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	second, err := fixture.snapshots.BuildExperimentSnapshot(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("rebuild snapshot: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical snapshots\nfirst:  %+v\nsecond: %+v", first, second)
	}

	if len(first.Batches) != 2 || first.Batches[0].ID != batches[0].ID {
		t.Fatalf("expected batches in id order, got %+v", first.Batches)
	}
	if first.CurrentTimepoint != "t0" {
		t.Fatalf("expected current timepoint t0, got %q", first.CurrentTimepoint)
	}
	recorded := first.Batches[0].Timepoints
	if len(recorded) != 2 || recorded[0].Name != "t0" || recorded[1].Name != "t4" {
		t.Fatalf("expected measured timepoints in order, got %+v", recorded)
	}
	if len(first.Batches[1].Timepoints) != 0 {
		t.Fatalf("expected no timepoints for unmeasured batch")
	}
	if first.Batches[0].PreparationTime == nil {
		t.Fatalf("expected preparation time in snapshot")
	}
}

func TestBuildExperimentSnapshotUnknownExperiment(t *testing.T) {
	fixture := newWorkflowFixture(t)

	_, err := fixture.snapshots.BuildExperimentSnapshot(context.Background(), 999)
	if !errors.Is(err, ErrExperimentNotFound) {
		t.Fatalf("expected ErrExperimentNotFound, got %v", err)
	}
}
