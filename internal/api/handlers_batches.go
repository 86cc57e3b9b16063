package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

func (handler *Handler) ListBatches(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	batches, err := handler.batchService.ListBatches(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(batches)
}

func (handler *Handler) AddBatch(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	patch := services.BatchPatch{}
	if err := parseJSONBody(c, &patch, true); err != nil {
		return handler.respondServiceError(c, err)
	}

	batch, err := handler.batchService.AddBatch(c.UserContext(), experiment.ID, patch)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(batch)
}

func (handler *Handler) GetBatch(c *fiber.Ctx) error {
	batch, err := handler.ownedBatch(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(batch)
}

func (handler *Handler) UpdateBatch(c *fiber.Ctx) error {
	batch, err := handler.ownedBatch(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	patch := services.BatchPatch{}
	if err := parseJSONBody(c, &patch, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	updated, err := handler.batchService.UpdateBatch(c.UserContext(), batch.ID, patch)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (handler *Handler) DeleteBatch(c *fiber.Ctx) error {
	batch, err := handler.ownedBatch(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := handler.batchService.DeleteBatch(c.UserContext(), batch.ID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) DuplicateBatch(c *fiber.Ctx) error {
	batch, err := handler.ownedBatch(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	duplicate, err := handler.batchService.DuplicateBatch(c.UserContext(), batch.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(duplicate)
}

func (handler *Handler) LogBatchAction(c *fiber.Ctx) error {
	batch, err := handler.ownedBatch(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	action, err := services.ParseBatchAction(c.Params("action"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	input := batchActionInput{}
	if err := parseJSONBody(c, &input, true); err != nil {
		return handler.respondServiceError(c, err)
	}

	logged, err := handler.batchService.LogBatchAction(c.UserContext(), batch.ID, action, input.At, input.BatchActionValues)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(logged)
}
