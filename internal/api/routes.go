package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	if handler.metricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(handler.metricsHandler))
	}
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.CurrentUser)
	auth.Put("/api-key", handler.AuthRequired, handler.UpdateAPIKey)
	auth.Put("/password", handler.AuthRequired, handler.ChangePassword)

	experiments := api.Group("/experiments", handler.AuthRequired)
	experiments.Get("", handler.ListExperiments)
	experiments.Post("", handler.CreateExperiment)
	experiments.Get("/:id", handler.GetExperiment)
	experiments.Patch("/:id", handler.UpdateExperiment)
	experiments.Delete("/:id", handler.DeleteExperiment)
	experiments.Post("/:id/start", handler.StartWorkflow)
	experiments.Post("/:id/advance", handler.AdvanceTimepoint)
	experiments.Put("/:id/current-timepoint", handler.SetCurrentTimepoint)
	experiments.Post("/:id/complete", handler.CompleteExperiment)
	experiments.Get("/:id/snapshot", handler.ExperimentSnapshot)
	experiments.Get("/:id/report", handler.ExperimentReport)
	experiments.Get("/:id/matrix", handler.MeasurementMatrix)
	experiments.Get("/:id/export/summary", handler.ExportSummary)
	experiments.Get("/:id/export/csv", handler.ExportCSV)
	experiments.Post("/:id/sync", handler.SyncExperiment)
	experiments.Post("/:id/sync/recreate", handler.RecreateRemoteExperiment)
	experiments.Get("/:id/timepoints", handler.ListTimepoints)
	experiments.Post("/:id/timepoints", handler.CreateTimepoint)
	experiments.Get("/:id/batches", handler.ListBatches)
	experiments.Post("/:id/batches", handler.AddBatch)

	timepoints := api.Group("/timepoints", handler.AuthRequired)
	timepoints.Get("/:id", handler.GetTimepoint)
	timepoints.Delete("/:id", handler.DeleteTimepoint)
	timepoints.Get("/:id/completed", handler.TimepointCompleted)
	timepoints.Get("/:id/measurements", handler.ListTimepointMeasurements)

	batches := api.Group("/batches", handler.AuthRequired)
	batches.Get("/:id", handler.GetBatch)
	batches.Patch("/:id", handler.UpdateBatch)
	batches.Delete("/:id", handler.DeleteBatch)
	batches.Post("/:id/duplicate", handler.DuplicateBatch)
	batches.Post("/:id/actions/:action", handler.LogBatchAction)
	batches.Get("/:id/measurements", handler.ListBatchMeasurements)
	batches.Get("/:id/timepoints/:tp/measurement", handler.GetMeasurement)
	batches.Patch("/:id/timepoints/:tp/measurement", handler.RecordMeasurement)
	batches.Put("/:id/timepoints/:tp/completed", handler.MarkMeasurementCompleted)
	batches.Post("/:id/timepoints/:tp/samples", handler.CollectSamples)
	batches.Delete("/:id/timepoints/:tp/samples", handler.ClearSamples)
}
