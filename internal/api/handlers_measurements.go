package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

func (handler *Handler) GetMeasurement(c *fiber.Ctx) error {
	batch, timepoint, err := handler.ownedMeasurementPair(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	measurement, found, err := handler.measurementService.GetBatchMeasurement(c.UserContext(), batch.ID, timepoint.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "measurement not recorded")
	}
	return c.JSON(measurement)
}

func (handler *Handler) RecordMeasurement(c *fiber.Ctx) error {
	batch, timepoint, err := handler.ownedMeasurementPair(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	patch := services.MeasurementPatch{}
	if err := parseJSONBody(c, &patch, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	measurement, err := handler.measurementService.RecordMeasurement(c.UserContext(), batch.ID, timepoint.ID, patch)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(measurement)
}

func (handler *Handler) MarkMeasurementCompleted(c *fiber.Ctx) error {
	batch, timepoint, err := handler.ownedMeasurementPair(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	input := completedInput{}
	if err := parseJSONBody(c, &input, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	measurement, err := handler.measurementService.MarkMeasurementCompleted(c.UserContext(), batch.ID, timepoint.ID, input.Completed)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(measurement)
}

func (handler *Handler) CollectSamples(c *fiber.Ctx) error {
	batch, timepoint, err := handler.ownedMeasurementPair(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	input := samplesInput{}
	if err := parseJSONBody(c, &input, true); err != nil {
		return handler.respondServiceError(c, err)
	}
	at := time.Time{}
	if input.At != nil {
		at = *input.At
	}

	measurement, err := handler.measurementService.CollectSamples(c.UserContext(), batch.ID, timepoint.ID, input.Kinds, at)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(measurement)
}

func (handler *Handler) ClearSamples(c *fiber.Ctx) error {
	batch, timepoint, err := handler.ownedMeasurementPair(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	measurement, err := handler.measurementService.ClearSamples(c.UserContext(), batch.ID, timepoint.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(measurement)
}

func (handler *Handler) ListBatchMeasurements(c *fiber.Ctx) error {
	batch, err := handler.ownedBatch(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	measurements, err := handler.measurementService.ListBatchMeasurements(c.UserContext(), batch.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(measurements)
}
