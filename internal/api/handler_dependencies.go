package api

import "github.com/terraincognita07/kombucha-eln/internal/services"

func (handler *Handler) withDependencies(deps Dependencies) *Handler {
	handler.authService = services.NewAuthService(deps.Store.Users)
	handler.experimentService = services.NewExperimentService(deps.Store, deps.Logger)
	handler.timepointService = services.NewTimepointService(deps.Store, deps.Logger, deps.Metrics)
	handler.batchService = services.NewBatchService(deps.Store, deps.Logger, deps.Metrics)
	handler.measurementService = services.NewMeasurementService(deps.Store, deps.Logger, deps.Metrics)
	handler.snapshotService = services.NewSnapshotService(deps.Store)
	handler.exportService = services.NewExportService(handler.snapshotService, deps.Location)
	if deps.Remote != nil && deps.Render != nil {
		handler.syncService = services.NewSyncService(deps.Store, deps.Remote, deps.Render, deps.SyncTags, deps.Logger, deps.Metrics)
	}
	return handler
}
