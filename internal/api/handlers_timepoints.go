package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

func (handler *Handler) ListTimepoints(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	timepoints, err := handler.timepointService.ListTimepoints(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(timepoints)
}

func (handler *Handler) CreateTimepoint(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	input := services.TimepointInput{}
	if err := parseJSONBody(c, &input, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	timepoint, err := handler.timepointService.CreateCustomTimepoint(c.UserContext(), experiment.ID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(timepoint)
}

func (handler *Handler) GetTimepoint(c *fiber.Ctx) error {
	timepoint, err := handler.ownedTimepoint(c, "id")
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	final, err := handler.timepointService.IsFinalTimepoint(c.UserContext(), timepoint.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"timepoint": timepoint, "final": final})
}

func (handler *Handler) DeleteTimepoint(c *fiber.Ctx) error {
	timepoint, err := handler.ownedTimepoint(c, "id")
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := handler.timepointService.DeleteTimepoint(c.UserContext(), timepoint.ID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) TimepointCompleted(c *fiber.Ctx) error {
	timepoint, err := handler.ownedTimepoint(c, "id")
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	completed, err := handler.measurementService.IsTimepointCompleted(c.UserContext(), timepoint.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"timepoint_id": timepoint.ID, "completed": completed})
}

func (handler *Handler) ListTimepointMeasurements(c *fiber.Ctx) error {
	timepoint, err := handler.ownedTimepoint(c, "id")
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	measurements, err := handler.measurementService.ListTimepointMeasurements(c.UserContext(), timepoint.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(measurements)
}
