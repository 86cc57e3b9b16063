package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/models"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

const defaultBatchCount = 1

func (handler *Handler) ListExperiments(c *fiber.Ctx) error {
	status := models.ExperimentStatus(strings.TrimSpace(c.Query("status")))
	experiments, err := handler.experimentService.ListExperiments(c.UserContext(), scopeUserID(c), status)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(experiments)
}

func (handler *Handler) CreateExperiment(c *fiber.Ctx) error {
	input := createExperimentInput{}
	if err := parseJSONBody(c, &input, false); err != nil {
		return handler.respondServiceError(c, err)
	}
	numBatches := defaultBatchCount
	if input.NumBatches != nil {
		numBatches = *input.NumBatches
	}

	experiment, err := handler.experimentService.CreateExperiment(c.UserContext(), scopeUserID(c), input.Title, numBatches)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(experiment)
}

func (handler *Handler) GetExperiment(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(experiment)
}

func (handler *Handler) UpdateExperiment(c *fiber.Ctx) error {
	experimentID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	patch := services.ExperimentPatch{}
	if err := parseJSONBody(c, &patch, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	experiment, err := handler.experimentService.UpdateExperiment(c.UserContext(), scopeUserID(c), experimentID, patch)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(experiment)
}

func (handler *Handler) DeleteExperiment(c *fiber.Ctx) error {
	experimentID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := handler.experimentService.DeleteExperiment(c.UserContext(), scopeUserID(c), experimentID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) StartWorkflow(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	started, err := handler.timepointService.StartWorkflow(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(started)
}

func (handler *Handler) AdvanceTimepoint(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	next, err := handler.timepointService.AdvanceToNextTimepoint(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(next)
}

func (handler *Handler) SetCurrentTimepoint(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	input := currentTimepointInput{}
	if err := parseJSONBody(c, &input, false); err != nil {
		return handler.respondServiceError(c, err)
	}
	timepoint, err := handler.experimentService.AuthorizeTimepoint(c.UserContext(), scopeUserID(c), input.TimepointID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if timepoint.ExperimentID != experiment.ID {
		return handler.respondServiceError(c, services.ErrTimepointNotInExperiment)
	}

	if err := handler.timepointService.SetCurrentTimepoint(c.UserContext(), experiment.ID, input.TimepointID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "current_timepoint_id": input.TimepointID})
}

func (handler *Handler) CompleteExperiment(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	completed, err := handler.experimentService.CompleteExperiment(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(completed)
}

func (handler *Handler) MeasurementMatrix(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	rows, err := handler.measurementService.MeasurementMatrix(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(rows)
}
