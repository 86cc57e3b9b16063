package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

// BatchActionValues are the results an action may carry, such as the pH
// reading logged with ph_measurement.
type BatchActionValues struct {
	MicroResults         Patch[string]  `json:"micro_results"`
	HPLCResults          Patch[string]  `json:"hplc_results"`
	PHValue              Patch[float64] `json:"ph_value"`
	SCOBYWetWeight       Patch[float64] `json:"scoby_wet_weight"`
	SCOBYDryWeight       Patch[float64] `json:"scoby_dry_weight"`
	TemperatureLoggerIDs Patch[string]  `json:"temperature_logger_ids"`
}

func (values BatchActionValues) validate() error {
	if err := validatePH(values.PHValue); err != nil {
		return err
	}
	if err := validateWeight("scoby_wet_weight", values.SCOBYWetWeight); err != nil {
		return err
	}
	return validateWeight("scoby_dry_weight", values.SCOBYDryWeight)
}

func (values BatchActionValues) applyTo(batch *models.Batch) {
	values.MicroResults.applyTo(&batch.MicroResults)
	values.HPLCResults.applyTo(&batch.HPLCResults)
	values.PHValue.applyTo(&batch.PHValue)
	values.SCOBYWetWeight.applyTo(&batch.SCOBYWetWeight)
	values.SCOBYDryWeight.applyTo(&batch.SCOBYDryWeight)
	values.TemperatureLoggerIDs.applyTo(&batch.TemperatureLoggerIDs)
}

// BatchPatch updates a batch's name, recipe and notes.
type BatchPatch struct {
	Name                  Patch[string]  `json:"name"`
	TeaType               Patch[string]  `json:"tea_type"`
	TeaConcentration      Patch[float64] `json:"tea_concentration"`
	WaterAmount           Patch[float64] `json:"water_amount"`
	SugarType             Patch[string]  `json:"sugar_type"`
	SugarConcentration    Patch[float64] `json:"sugar_concentration"`
	InoculumConcentration Patch[float64] `json:"inoculum_concentration"`
	Temperature           Patch[float64] `json:"temperature"`
	Notes                 Patch[string]  `json:"notes"`
}

func (patch BatchPatch) validate() error {
	if patch.Name.Present && (patch.Name.Value == nil || strings.TrimSpace(*patch.Name.Value) == "") {
		return validationError("batch name is required")
	}
	quantities := []struct {
		field string
		patch Patch[float64]
	}{
		{"tea_concentration", patch.TeaConcentration},
		{"water_amount", patch.WaterAmount},
		{"sugar_concentration", patch.SugarConcentration},
		{"inoculum_concentration", patch.InoculumConcentration},
	}
	for _, quantity := range quantities {
		if err := validateWeight(quantity.field, quantity.patch); err != nil {
			return err
		}
	}
	return nil
}

func (patch BatchPatch) applyTo(batch *models.Batch) {
	if patch.Name.Present && patch.Name.Value != nil {
		batch.Name = strings.TrimSpace(*patch.Name.Value)
	}
	patch.TeaType.applyTo(&batch.TeaType)
	patch.TeaConcentration.applyTo(&batch.TeaConcentration)
	patch.WaterAmount.applyTo(&batch.WaterAmount)
	patch.SugarType.applyTo(&batch.SugarType)
	patch.SugarConcentration.applyTo(&batch.SugarConcentration)
	patch.InoculumConcentration.applyTo(&batch.InoculumConcentration)
	patch.Temperature.applyTo(&batch.Temperature)
	if patch.Notes.Present {
		batch.Notes = ""
		if patch.Notes.Value != nil {
			batch.Notes = *patch.Notes.Value
		}
	}
}

type BatchService struct {
	store   *db.Store
	logger  *logging.Logger
	metrics WorkflowMetrics
	now     func() time.Time
}

func NewBatchService(store *db.Store, logger *logging.Logger, metrics WorkflowMetrics) *BatchService {
	return &BatchService{
		store:   store,
		logger:  loggerOrNop(logger),
		metrics: metricsOrNop(metrics),
		now:     time.Now,
	}
}

// LogBatchAction stamps the action's timestamp when it is unset, applies the
// extra values and moves the batch to the action's status. Logging an earlier
// action after a later one moves the status back; timestamps are kept.
func (service *BatchService) LogBatchAction(ctx context.Context, batchID uint, action BatchAction, at *time.Time, values BatchActionValues) (models.Batch, error) {
	if !action.Valid() {
		return models.Batch{}, validationError("unknown batch action %d", int(action))
	}
	if err := values.validate(); err != nil {
		return models.Batch{}, err
	}

	stamp := service.now().UTC()
	if at != nil {
		stamp = at.UTC()
	}

	var logged models.Batch
	var experimentStatus models.ExperimentStatus
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		batch, err := loadBatchTx(tx, batchID)
		if err != nil {
			return err
		}

		if field := timestampField(&batch, action); *field == nil {
			*field = &stamp
		}
		values.applyTo(&batch)
		batch.Status = StatusForAction(action)

		if err := tx.Batches.Save(&batch); err != nil {
			return storeError(err, nil)
		}
		experimentStatus, err = recomputeExperimentStatusTx(tx, batch.ExperimentID)
		if err != nil {
			return err
		}
		logged = batch
		return nil
	})
	if err != nil {
		return models.Batch{}, err
	}

	service.metrics.BatchActionLogged(action.String())
	service.logger.Info("batch action logged",
		"batch_id", batchID,
		"action", action.String(),
		"batch_status", logged.Status,
		"experiment_status", experimentStatus,
	)
	return logged, nil
}

// RecomputeExperimentStatus derives the experiment status from its batches
// and stores it.
func (service *BatchService) RecomputeExperimentStatus(ctx context.Context, experimentID uint) (models.ExperimentStatus, error) {
	var status models.ExperimentStatus
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := loadExperimentTx(tx, experimentID); err != nil {
			return err
		}
		derived, err := recomputeExperimentStatusTx(tx, experimentID)
		status = derived
		return err
	})
	return status, err
}

func (service *BatchService) GetBatch(ctx context.Context, batchID uint) (models.Batch, error) {
	return loadBatchTx(service.store.WithContext(ctx), batchID)
}

func (service *BatchService) ListBatches(ctx context.Context, experimentID uint) ([]models.Batch, error) {
	store := service.store.WithContext(ctx)
	if _, err := loadExperimentTx(store, experimentID); err != nil {
		return nil, err
	}
	batches, err := store.Batches.ListByExperiment(experimentID)
	if err != nil {
		return nil, storeError(err, nil)
	}
	return batches, nil
}

// AddBatch creates a batch in Setup. Without a name it is called
// "Batch <n>" after the existing ones. Batch CRUD leaves the experiment
// status alone; only logged actions re-derive it.
func (service *BatchService) AddBatch(ctx context.Context, experimentID uint, patch BatchPatch) (models.Batch, error) {
	if err := patch.validate(); err != nil {
		return models.Batch{}, err
	}

	var created models.Batch
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := loadExperimentTx(tx, experimentID); err != nil {
			return err
		}
		existing, err := tx.Batches.ListByExperiment(experimentID)
		if err != nil {
			return storeError(err, nil)
		}

		batch := models.Batch{
			ExperimentID: experimentID,
			Name:         fmt.Sprintf("Batch %d", len(existing)+1),
			Status:       models.BatchSetup,
		}
		patch.applyTo(&batch)
		if err := tx.Batches.Create(&batch); err != nil {
			return storeError(err, nil)
		}
		created = batch
		return nil
	})
	if err != nil {
		return models.Batch{}, err
	}
	return created, nil
}

func (service *BatchService) UpdateBatch(ctx context.Context, batchID uint, patch BatchPatch) (models.Batch, error) {
	if err := patch.validate(); err != nil {
		return models.Batch{}, err
	}

	var updated models.Batch
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		batch, err := loadBatchTx(tx, batchID)
		if err != nil {
			return err
		}
		patch.applyTo(&batch)
		if err := tx.Batches.Save(&batch); err != nil {
			return storeError(err, nil)
		}
		updated = batch
		return nil
	})
	if err != nil {
		return models.Batch{}, err
	}
	return updated, nil
}

// DuplicateBatch copies the recipe into a new batch that starts at Setup.
func (service *BatchService) DuplicateBatch(ctx context.Context, batchID uint) (models.Batch, error) {
	var duplicate models.Batch
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		original, err := loadBatchTx(tx, batchID)
		if err != nil {
			return err
		}

		duplicate = models.Batch{
			ExperimentID:          original.ExperimentID,
			Name:                  original.Name + " (Copy)",
			Status:                models.BatchSetup,
			TeaType:               original.TeaType,
			TeaConcentration:      original.TeaConcentration,
			WaterAmount:           original.WaterAmount,
			SugarType:             original.SugarType,
			SugarConcentration:    original.SugarConcentration,
			InoculumConcentration: original.InoculumConcentration,
			Temperature:           original.Temperature,
		}
		return storeError(tx.Batches.Create(&duplicate), nil)
	})
	if err != nil {
		return models.Batch{}, err
	}
	return duplicate, nil
}

func (service *BatchService) DeleteBatch(ctx context.Context, batchID uint) error {
	return service.store.Transaction(ctx, func(tx *db.Store) error {
		if _, err := loadBatchTx(tx, batchID); err != nil {
			return err
		}
		return storeError(tx.Batches.Delete(batchID), nil)
	})
}

func recomputeExperimentStatusTx(tx *db.Store, experimentID uint) (models.ExperimentStatus, error) {
	statuses, err := tx.Batches.ListStatuses(experimentID)
	if err != nil {
		return "", storeError(err, nil)
	}
	status := DeriveExperimentStatus(statuses)
	if err := tx.Experiments.UpdateStatus(experimentID, status); err != nil {
		return "", storeError(err, nil)
	}
	return status, nil
}
