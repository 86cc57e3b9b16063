package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

// Resources of other users resolve to not found, never to forbidden.

func scopeUserID(c *fiber.Ctx) uint {
	user, ok := currentUser(c)
	if !ok {
		return 0
	}
	return user.ID
}

func (handler *Handler) ownedExperiment(c *fiber.Ctx) (models.Experiment, error) {
	experimentID, err := parseIDParam(c, "id")
	if err != nil {
		return models.Experiment{}, err
	}
	return handler.experimentService.GetExperiment(c.UserContext(), scopeUserID(c), experimentID)
}

func (handler *Handler) ownedBatch(c *fiber.Ctx) (models.Batch, error) {
	batchID, err := parseIDParam(c, "id")
	if err != nil {
		return models.Batch{}, err
	}
	return handler.experimentService.AuthorizeBatch(c.UserContext(), scopeUserID(c), batchID)
}

func (handler *Handler) ownedTimepoint(c *fiber.Ctx, param string) (models.Timepoint, error) {
	timepointID, err := parseIDParam(c, param)
	if err != nil {
		return models.Timepoint{}, err
	}
	return handler.experimentService.AuthorizeTimepoint(c.UserContext(), scopeUserID(c), timepointID)
}

// ownedMeasurementPair resolves the batch and timepoint of a
// /batches/:id/timepoints/:tp route.
func (handler *Handler) ownedMeasurementPair(c *fiber.Ctx) (models.Batch, models.Timepoint, error) {
	batch, err := handler.ownedBatch(c)
	if err != nil {
		return models.Batch{}, models.Timepoint{}, err
	}
	timepoint, err := handler.ownedTimepoint(c, "tp")
	if err != nil {
		return models.Batch{}, models.Timepoint{}, err
	}
	return batch, timepoint, nil
}
