package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

type workflowFixture struct {
	store        *db.Store
	experiments  *ExperimentService
	timepoints   *TimepointService
	measurements *MeasurementService
	batches      *BatchService
	snapshots    *SnapshotService
	metrics      *recordingMetrics
	owner        models.User
}

type recordingMetrics struct {
	measurements int
	actions      []string
	advances     int
	syncs        []string
}

func (metrics *recordingMetrics) MeasurementRecorded() { metrics.measurements++ }
func (metrics *recordingMetrics) BatchActionLogged(action string) {
	metrics.actions = append(metrics.actions, action)
}
func (metrics *recordingMetrics) TimepointAdvanced()          { metrics.advances++ }
func (metrics *recordingMetrics) SyncFinished(outcome string) { metrics.syncs = append(metrics.syncs, outcome) }

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "eln.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := db.NewStore(database)
	t.Cleanup(func() {
		_ = store.Close()
	})

	owner := models.User{Username: "alice", PasswordHash: "hash"}
	if err := store.Users.Create(&owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	metrics := &recordingMetrics{}
	return &workflowFixture{
		store:        store,
		experiments:  NewExperimentService(store, nil),
		timepoints:   NewTimepointService(store, nil, metrics),
		measurements: NewMeasurementService(store, nil, metrics),
		batches:      NewBatchService(store, nil, metrics),
		snapshots:    NewSnapshotService(store),
		metrics:      metrics,
		owner:        owner,
	}
}

// startExperiment creates an experiment with numBatches batches and the
// default timepoints.
func (fixture *workflowFixture) startExperiment(t *testing.T, numBatches int) (models.Experiment, []models.Batch, []models.Timepoint) {
	t.Helper()
	ctx := context.Background()

	experiment, err := fixture.experiments.CreateExperiment(ctx, fixture.owner.ID, "Fermentation run", numBatches)
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}
	experiment, err = fixture.timepoints.StartWorkflow(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("start workflow: %v", err)
	}
	batches, err := fixture.batches.ListBatches(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	timepoints, err := fixture.timepoints.ListTimepoints(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("list timepoints: %v", err)
	}
	return experiment, batches, timepoints
}

func (fixture *workflowFixture) reloadExperiment(t *testing.T, experimentID uint) models.Experiment {
	t.Helper()
	experiment, err := fixture.store.Experiments.FindByID(experimentID)
	if err != nil {
		t.Fatalf("reload experiment: %v", err)
	}
	return experiment
}

func (fixture *workflowFixture) completeTimepoint(t *testing.T, batches []models.Batch, timepointID uint) {
	t.Helper()
	for _, batch := range batches {
		if _, err := fixture.measurements.MarkMeasurementCompleted(context.Background(), batch.ID, timepointID, true); err != nil {
			t.Fatalf("complete batch %d at timepoint %d: %v", batch.ID, timepointID, err)
		}
	}
}
