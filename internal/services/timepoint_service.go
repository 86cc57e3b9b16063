package services

import (
	"context"
	"strings"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

type defaultTimepoint struct {
	name        string
	hours       float64
	description string
}

var defaultTimepoints = []defaultTimepoint{
	{name: "t0", hours: 0, description: "Initial measurements"},
	{name: "t4", hours: 4, description: "4-hour measurements"},
	{name: "t7", hours: 7, description: "7-hour measurements"},
	{name: "t11", hours: 11, description: "Final measurements"},
}

type TimepointInput struct {
	Name        string  `json:"name"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	Order       *int    `json:"order"`
}

type TimepointService struct {
	store   *db.Store
	logger  *logging.Logger
	metrics WorkflowMetrics
}

func NewTimepointService(store *db.Store, logger *logging.Logger, metrics WorkflowMetrics) *TimepointService {
	return &TimepointService{
		store:   store,
		logger:  loggerOrNop(logger),
		metrics: metricsOrNop(metrics),
	}
}

// CreateDefaultTimepoints creates t0/t4/t7/t11 and points the experiment at
// t0. It does nothing when the experiment already has timepoints.
func (service *TimepointService) CreateDefaultTimepoints(ctx context.Context, experimentID uint) error {
	return service.store.Transaction(ctx, func(tx *db.Store) error {
		_, err := createDefaultTimepointsTx(tx, experimentID)
		return err
	})
}

// StartWorkflow creates the default timepoints when missing, makes sure a
// current timepoint is set and moves the experiment to Running.
func (service *TimepointService) StartWorkflow(ctx context.Context, experimentID uint) (models.Experiment, error) {
	var started models.Experiment
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		experiment, err := loadExperimentTx(tx, experimentID)
		if err != nil {
			return err
		}
		if experiment.Status == models.ExperimentCompleted {
			return ErrExperimentCompleted
		}

		if _, err := createDefaultTimepointsTx(tx, experimentID); err != nil {
			return err
		}

		experiment, err = loadExperimentTx(tx, experimentID)
		if err != nil {
			return err
		}
		if experiment.CurrentTimepointID == nil {
			timepoints, err := tx.Timepoints.ListByExperiment(experimentID)
			if err != nil {
				return storeError(err, nil)
			}
			if len(timepoints) > 0 {
				first := timepoints[0].ID
				if err := tx.Experiments.SetCurrentTimepoint(experimentID, &first); err != nil {
					return storeError(err, nil)
				}
				experiment.CurrentTimepointID = &first
			}
		}

		if err := tx.Experiments.UpdateStatus(experimentID, models.ExperimentRunning); err != nil {
			return storeError(err, nil)
		}
		experiment.Status = models.ExperimentRunning
		started = experiment
		return nil
	})
	if err != nil {
		return models.Experiment{}, err
	}

	service.logger.Info("workflow started", "experiment_id", experimentID, "current_timepoint_id", started.CurrentTimepointID)
	return started, nil
}

func (service *TimepointService) CreateCustomTimepoint(ctx context.Context, experimentID uint, input TimepointInput) (models.Timepoint, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Timepoint{}, validationError("timepoint name is required")
	}
	if input.Hours < 0 {
		return models.Timepoint{}, validationError("timepoint hours must not be negative")
	}

	var created models.Timepoint
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := loadExperimentTx(tx, experimentID); err != nil {
			return err
		}
		existing, err := tx.Timepoints.ListByExperiment(experimentID)
		if err != nil {
			return storeError(err, nil)
		}

		order := 1
		if input.Order != nil {
			order = *input.Order
		} else {
			for _, timepoint := range existing {
				if timepoint.Order >= order {
					order = timepoint.Order + 1
				}
			}
		}

		for _, timepoint := range existing {
			if timepoint.Order == order {
				return validationError("timepoint order %d already exists", order)
			}
			if strings.EqualFold(timepoint.Name, name) {
				return validationError("timepoint %q already exists", name)
			}
		}

		created = models.Timepoint{
			ExperimentID: experimentID,
			Name:         name,
			Hours:        input.Hours,
			Description:  strings.TrimSpace(input.Description),
			Order:        order,
		}
		return storeError(tx.Timepoints.Create(&created), nil)
	})
	if err != nil {
		return models.Timepoint{}, err
	}
	return created, nil
}

// SetCurrentTimepoint moves the experiment pointer. Membership of the
// timepoint in the experiment is left to the caller.
func (service *TimepointService) SetCurrentTimepoint(ctx context.Context, experimentID uint, timepointID uint) error {
	return service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := loadExperimentTx(tx, experimentID); err != nil {
			return err
		}
		if _, err := loadTimepointTx(tx, timepointID); err != nil {
			return err
		}
		return storeError(tx.Experiments.SetCurrentTimepoint(experimentID, &timepointID), nil)
	})
}

// AdvanceToNextTimepoint moves the experiment to the timepoint with the
// smallest order above the current one. Completion of the current timepoint
// is left to the caller.
func (service *TimepointService) AdvanceToNextTimepoint(ctx context.Context, experimentID uint) (models.Timepoint, error) {
	var next models.Timepoint
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		experiment, err := loadExperimentTx(tx, experimentID)
		if err != nil {
			return err
		}
		if experiment.CurrentTimepointID == nil {
			return ErrNoCurrentTimepoint
		}
		current, err := tx.Timepoints.FindByID(*experiment.CurrentTimepointID)
		if err != nil {
			return storeError(err, ErrNoCurrentTimepoint)
		}

		successor, found, err := tx.Timepoints.Neighbor(experimentID, current.Order, true)
		if err != nil {
			return storeError(err, nil)
		}
		if !found {
			return ErrNoNextTimepoint
		}
		if err := tx.Experiments.SetCurrentTimepoint(experimentID, &successor.ID); err != nil {
			return storeError(err, nil)
		}
		next = successor
		return nil
	})
	if err != nil {
		return models.Timepoint{}, err
	}

	service.metrics.TimepointAdvanced()
	service.logger.Info("timepoint advanced", "experiment_id", experimentID, "timepoint", next.Name)
	return next, nil
}

func (service *TimepointService) NextTimepoint(ctx context.Context, timepointID uint) (models.Timepoint, bool, error) {
	return service.neighbor(ctx, timepointID, true)
}

func (service *TimepointService) PreviousTimepoint(ctx context.Context, timepointID uint) (models.Timepoint, bool, error) {
	return service.neighbor(ctx, timepointID, false)
}

func (service *TimepointService) neighbor(ctx context.Context, timepointID uint, next bool) (models.Timepoint, bool, error) {
	store := service.store.WithContext(ctx)
	timepoint, err := loadTimepointTx(store, timepointID)
	if err != nil {
		return models.Timepoint{}, false, err
	}
	neighbor, found, err := store.Timepoints.Neighbor(timepoint.ExperimentID, timepoint.Order, next)
	if err != nil {
		return models.Timepoint{}, false, storeError(err, nil)
	}
	return neighbor, found, nil
}

func (service *TimepointService) IsFinalTimepoint(ctx context.Context, timepointID uint) (bool, error) {
	store := service.store.WithContext(ctx)
	timepoint, err := loadTimepointTx(store, timepointID)
	if err != nil {
		return false, err
	}
	return isFinalTimepointTx(store, timepoint)
}

func (service *TimepointService) GetTimepoint(ctx context.Context, timepointID uint) (models.Timepoint, error) {
	return loadTimepointTx(service.store.WithContext(ctx), timepointID)
}

func (service *TimepointService) ListTimepoints(ctx context.Context, experimentID uint) ([]models.Timepoint, error) {
	store := service.store.WithContext(ctx)
	if _, err := loadExperimentTx(store, experimentID); err != nil {
		return nil, err
	}
	timepoints, err := store.Timepoints.ListByExperiment(experimentID)
	if err != nil {
		return nil, storeError(err, nil)
	}
	return timepoints, nil
}

// DeleteTimepoint removes an unused timepoint. Remaining orders are not
// renumbered.
func (service *TimepointService) DeleteTimepoint(ctx context.Context, timepointID uint) error {
	return service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := loadTimepointTx(tx, timepointID); err != nil {
			return err
		}

		inUse, err := tx.Experiments.ExistsWithCurrentTimepoint(timepointID)
		if err != nil {
			return storeError(err, nil)
		}
		if inUse {
			return ErrTimepointInUse
		}

		measured, err := tx.Measurements.CountByTimepoint(timepointID)
		if err != nil {
			return storeError(err, nil)
		}
		if measured > 0 {
			return ErrTimepointHasMeasurements
		}

		return storeError(tx.Timepoints.Delete(timepointID), nil)
	})
}

func createDefaultTimepointsTx(tx *db.Store, experimentID uint) (bool, error) {
	if _, err := loadExperimentTx(tx, experimentID); err != nil {
		return false, err
	}
	count, err := tx.Timepoints.CountByExperiment(experimentID)
	if err != nil {
		return false, storeError(err, nil)
	}
	if count > 0 {
		return false, nil
	}

	timepoints := make([]models.Timepoint, 0, len(defaultTimepoints))
	for index, preset := range defaultTimepoints {
		timepoints = append(timepoints, models.Timepoint{
			ExperimentID: experimentID,
			Name:         preset.name,
			Hours:        preset.hours,
			Description:  preset.description,
			Order:        index + 1,
		})
	}
	if err := tx.Timepoints.CreateMany(timepoints); err != nil {
		return false, storeError(err, nil)
	}

	first := timepoints[0].ID
	if err := tx.Experiments.SetCurrentTimepoint(experimentID, &first); err != nil {
		return false, storeError(err, nil)
	}
	return true, nil
}

func isFinalTimepointTx(store *db.Store, timepoint models.Timepoint) (bool, error) {
	_, hasNext, err := store.Timepoints.Neighbor(timepoint.ExperimentID, timepoint.Order, true)
	if err != nil {
		return false, storeError(err, nil)
	}
	return !hasNext, nil
}

func loadExperimentTx(store *db.Store, experimentID uint) (models.Experiment, error) {
	experiment, err := store.Experiments.FindByID(experimentID)
	if err != nil {
		return models.Experiment{}, storeError(err, ErrExperimentNotFound)
	}
	return experiment, nil
}

func loadTimepointTx(store *db.Store, timepointID uint) (models.Timepoint, error) {
	timepoint, err := store.Timepoints.FindByID(timepointID)
	if err != nil {
		return models.Timepoint{}, storeError(err, ErrTimepointNotFound)
	}
	return timepoint, nil
}

func loadBatchTx(store *db.Store, batchID uint) (models.Batch, error) {
	batch, err := store.Batches.FindByID(batchID)
	if err != nil {
		return models.Batch{}, storeError(err, ErrBatchNotFound)
	}
	return batch, nil
}
