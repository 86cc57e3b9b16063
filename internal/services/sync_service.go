package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/elabftw"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
)

// ErrRemoteFailure wraps eLabFTW failures other than a missing remote
// experiment, such as timeouts and server errors.
var ErrRemoteFailure = errors.New("remote failure")

var DefaultSyncTags = []string{"KombuchaELN", "API"}

// RemoteNotebook stores rendered experiments in an external notebook.
type RemoteNotebook interface {
	Upsert(ctx context.Context, apiKey string, remoteID *int64, title string, body string, tags []string) (int64, error)
}

// ReportRenderer turns batch snapshots into a report document.
type ReportRenderer func(title string, batches []BatchSnapshot) (string, error)

type SyncResult struct {
	ExternalID int64 `json:"external_id"`
	Created    bool  `json:"created"`
}

type SyncService struct {
	store     *db.Store
	snapshots *SnapshotService
	remote    RemoteNotebook
	render    ReportRenderer
	tags      []string
	logger    *logging.Logger
	metrics   WorkflowMetrics
}

func NewSyncService(store *db.Store, remote RemoteNotebook, render ReportRenderer, tags []string, logger *logging.Logger, metrics WorkflowMetrics) *SyncService {
	if len(tags) == 0 {
		tags = DefaultSyncTags
	}
	return &SyncService{
		store:     store,
		snapshots: NewSnapshotService(store),
		remote:    remote,
		render:    render,
		tags:      tags,
		logger:    loggerOrNop(logger),
		metrics:   metricsOrNop(metrics),
	}
}

// Sync renders the experiment report and creates or updates its eLabFTW
// copy. A remote experiment that is gone or forbidden is reported as
// ErrRemoteConflict; Recreate resolves it.
func (service *SyncService) Sync(ctx context.Context, ownerID uint, experimentID uint) (SyncResult, error) {
	return service.sync(ctx, ownerID, experimentID, false)
}

// Recreate drops the stored remote id and creates a fresh remote experiment.
func (service *SyncService) Recreate(ctx context.Context, ownerID uint, experimentID uint) (SyncResult, error) {
	return service.sync(ctx, ownerID, experimentID, true)
}

func (service *SyncService) sync(ctx context.Context, ownerID uint, experimentID uint, recreate bool) (SyncResult, error) {
	store := service.store.WithContext(ctx)
	user, err := store.Users.FindByID(ownerID)
	if err != nil {
		return SyncResult{}, storeError(err, ErrUserNotFound)
	}
	if !user.HasElabAPIKey() {
		return SyncResult{}, ErrAPIKeyMissing
	}
	if _, err := loadOwnedExperimentTx(store, ownerID, experimentID); err != nil {
		return SyncResult{}, err
	}

	if recreate {
		if err := store.Experiments.SetElabID(experimentID, nil); err != nil {
			return SyncResult{}, storeError(err, nil)
		}
		service.logger.Info("cleared stale eLabFTW id", "experiment_id", experimentID)
	}

	snapshot, err := service.snapshots.BuildExperimentSnapshot(ctx, experimentID)
	if err != nil {
		return SyncResult{}, err
	}
	body, err := service.render(snapshot.Title, snapshot.Batches)
	if err != nil {
		return SyncResult{}, fmt.Errorf("render report: %w", err)
	}

	remoteID, err := service.remote.Upsert(ctx, user.ElabAPIKey, snapshot.ExternalID, snapshot.Title, body, service.tags)
	if errors.Is(err, elabftw.ErrRemoteNotFound) && snapshot.ExternalID != nil {
		service.metrics.SyncFinished("conflict")
		service.logger.Warn("eLabFTW experiment not accessible", "experiment_id", experimentID, "remote_id", snapshot.ExternalID)
		return SyncResult{}, fmt.Errorf("%w: eLabFTW experiment %d is missing or forbidden", ErrRemoteConflict, *snapshot.ExternalID)
	}
	if err != nil {
		service.metrics.SyncFinished("error")
		service.logger.Error("eLabFTW sync failed", "experiment_id", experimentID, "error", err)
		return SyncResult{}, fmt.Errorf("%w: %w", ErrRemoteFailure, err)
	}

	if err := store.Experiments.SetElabID(experimentID, &remoteID); err != nil {
		return SyncResult{}, storeError(err, nil)
	}

	created := snapshot.ExternalID == nil
	outcome := "updated"
	if created {
		outcome = "created"
	}
	service.metrics.SyncFinished(outcome)
	service.logger.Info("experiment synced to eLabFTW", "experiment_id", experimentID, "remote_id", remoteID, "outcome", outcome)
	return SyncResult{ExternalID: remoteID, Created: created}, nil
}
