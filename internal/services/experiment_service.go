package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

const maxBatchesPerExperiment = 50

type ExperimentPatch struct {
	Title Patch[string] `json:"title"`
	Notes Patch[string] `json:"notes"`
}

type ExperimentService struct {
	store  *db.Store
	logger *logging.Logger
}

func NewExperimentService(store *db.Store, logger *logging.Logger) *ExperimentService {
	return &ExperimentService{store: store, logger: loggerOrNop(logger)}
}

// CreateExperiment creates a Planning experiment with numBatches batches
// named "Batch 1".."Batch N", all in Setup.
func (service *ExperimentService) CreateExperiment(ctx context.Context, ownerID uint, title string, numBatches int) (models.Experiment, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Experiment{}, validationError("experiment title is required")
	}
	if numBatches < 0 || numBatches > maxBatchesPerExperiment {
		return models.Experiment{}, validationError("number of batches must be between 0 and %d", maxBatchesPerExperiment)
	}

	var created models.Experiment
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := tx.Users.FindByID(ownerID); err != nil {
			return storeError(err, ErrUserNotFound)
		}

		experiment := models.Experiment{
			Title:  title,
			UserID: ownerID,
			Status: models.ExperimentPlanning,
		}
		if err := tx.Experiments.Create(&experiment); err != nil {
			return storeError(err, nil)
		}

		batches := make([]models.Batch, 0, numBatches)
		for index := 1; index <= numBatches; index++ {
			batches = append(batches, models.Batch{
				ExperimentID: experiment.ID,
				Name:         fmt.Sprintf("Batch %d", index),
				Status:       models.BatchSetup,
			})
		}
		if err := tx.Batches.CreateMany(batches); err != nil {
			return storeError(err, nil)
		}
		created = experiment
		return nil
	})
	if err != nil {
		return models.Experiment{}, err
	}

	service.logger.Info("experiment created", "experiment_id", created.ID, "user_id", ownerID, "batches", numBatches)
	return created, nil
}

// ListExperiments returns the owner's experiments, optionally filtered by
// status.
func (service *ExperimentService) ListExperiments(ctx context.Context, ownerID uint, status models.ExperimentStatus) ([]models.Experiment, error) {
	if status != "" && !status.Valid() {
		return nil, validationError("unknown experiment status %q", status)
	}
	experiments, err := service.store.WithContext(ctx).Experiments.ListByUser(ownerID, status)
	if err != nil {
		return nil, storeError(err, nil)
	}
	return experiments, nil
}

// GetExperiment returns the experiment when ownerID owns it. Experiments of
// other users are reported as not found.
func (service *ExperimentService) GetExperiment(ctx context.Context, ownerID uint, experimentID uint) (models.Experiment, error) {
	return loadOwnedExperimentTx(service.store.WithContext(ctx), ownerID, experimentID)
}

func (service *ExperimentService) UpdateExperiment(ctx context.Context, ownerID uint, experimentID uint, patch ExperimentPatch) (models.Experiment, error) {
	updates := make(map[string]any, 2)
	if patch.Title.Present {
		if patch.Title.Value == nil || strings.TrimSpace(*patch.Title.Value) == "" {
			return models.Experiment{}, validationError("experiment title is required")
		}
		updates["title"] = strings.TrimSpace(*patch.Title.Value)
	}
	if patch.Notes.Present {
		notes := ""
		if patch.Notes.Value != nil {
			notes = *patch.Notes.Value
		}
		updates["notes"] = notes
	}

	var updated models.Experiment
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := loadOwnedExperimentTx(tx, ownerID, experimentID); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Experiments.UpdateFields(experimentID, updates); err != nil {
				return storeError(err, nil)
			}
		}
		experiment, err := loadExperimentTx(tx, experimentID)
		updated = experiment
		return err
	})
	if err != nil {
		return models.Experiment{}, err
	}
	return updated, nil
}

// DeleteExperiment removes the experiment with its batches, timepoints and
// measurements.
func (service *ExperimentService) DeleteExperiment(ctx context.Context, ownerID uint, experimentID uint) error {
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := loadOwnedExperimentTx(tx, ownerID, experimentID); err != nil {
			return err
		}
		return storeError(tx.Experiments.Delete(experimentID), nil)
	})
	if err != nil {
		return err
	}
	service.logger.Info("experiment deleted", "experiment_id", experimentID, "user_id", ownerID)
	return nil
}

// CompleteExperiment is the terminal transition. It requires the current
// timepoint to be the final one and completed for every batch.
func (service *ExperimentService) CompleteExperiment(ctx context.Context, experimentID uint) (models.Experiment, error) {
	var completed models.Experiment
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		experiment, err := loadExperimentTx(tx, experimentID)
		if err != nil {
			return err
		}
		if experiment.Status == models.ExperimentCompleted {
			return ErrExperimentCompleted
		}
		if experiment.CurrentTimepointID == nil {
			return ErrNoCurrentTimepoint
		}
		current, err := tx.Timepoints.FindByID(*experiment.CurrentTimepointID)
		if err != nil {
			return storeError(err, ErrNoCurrentTimepoint)
		}

		final, err := isFinalTimepointTx(tx, current)
		if err != nil {
			return err
		}
		done, err := isTimepointCompletedTx(tx, current)
		if err != nil {
			return err
		}
		if !final || !done {
			return ErrExperimentNotCompletable
		}

		if err := tx.Experiments.UpdateStatus(experimentID, models.ExperimentCompleted); err != nil {
			return storeError(err, nil)
		}
		experiment.Status = models.ExperimentCompleted
		completed = experiment
		return nil
	})
	if err != nil {
		return models.Experiment{}, err
	}

	service.logger.Info("experiment completed", "experiment_id", experimentID)
	return completed, nil
}

// AuthorizeBatch resolves the batch when ownerID owns its experiment.
func (service *ExperimentService) AuthorizeBatch(ctx context.Context, ownerID uint, batchID uint) (models.Batch, error) {
	store := service.store.WithContext(ctx)
	batch, err := loadBatchTx(store, batchID)
	if err != nil {
		return models.Batch{}, err
	}
	if _, err := loadOwnedExperimentTx(store, ownerID, batch.ExperimentID); err != nil {
		return models.Batch{}, ErrBatchNotFound
	}
	return batch, nil
}

// AuthorizeTimepoint resolves the timepoint when ownerID owns its experiment.
func (service *ExperimentService) AuthorizeTimepoint(ctx context.Context, ownerID uint, timepointID uint) (models.Timepoint, error) {
	store := service.store.WithContext(ctx)
	timepoint, err := loadTimepointTx(store, timepointID)
	if err != nil {
		return models.Timepoint{}, err
	}
	if _, err := loadOwnedExperimentTx(store, ownerID, timepoint.ExperimentID); err != nil {
		return models.Timepoint{}, ErrTimepointNotFound
	}
	return timepoint, nil
}

func loadOwnedExperimentTx(store *db.Store, ownerID uint, experimentID uint) (models.Experiment, error) {
	experiment, err := loadExperimentTx(store, experimentID)
	if err != nil {
		return models.Experiment{}, err
	}
	if experiment.UserID != ownerID {
		return models.Experiment{}, ErrExperimentNotFound
	}
	return experiment, nil
}
