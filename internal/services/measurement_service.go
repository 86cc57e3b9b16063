package services

import (
	"context"
	"time"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

const (
	minPHValue = 0.0
	maxPHValue = 14.0
)

// MeasurementPatch is a field-level update of one (batch, timepoint)
// measurement. Absent fields are left untouched.
type MeasurementPatch struct {
	PHValue         Patch[float64]   `json:"ph_value"`
	PHSampleTime    Patch[time.Time] `json:"ph_sample_time"`
	MicroResults    Patch[string]    `json:"micro_results"`
	MicroSampleTime Patch[time.Time] `json:"micro_sample_time"`
	HPLCResults     Patch[string]    `json:"hplc_results"`
	HPLCSampleTime  Patch[time.Time] `json:"hplc_sample_time"`
	SCOBYWetWeight  Patch[float64]   `json:"scoby_wet_weight"`
	SCOBYDryWeight  Patch[float64]   `json:"scoby_dry_weight"`
	Notes           Patch[string]    `json:"notes"`
	Completed       Patch[bool]      `json:"completed"`
}

func (patch MeasurementPatch) empty() bool {
	return !patch.PHValue.Present &&
		!patch.PHSampleTime.Present &&
		!patch.MicroResults.Present &&
		!patch.MicroSampleTime.Present &&
		!patch.HPLCResults.Present &&
		!patch.HPLCSampleTime.Present &&
		!patch.SCOBYWetWeight.Present &&
		!patch.SCOBYDryWeight.Present &&
		!patch.Notes.Present &&
		!patch.Completed.Present
}

func (patch MeasurementPatch) setsSCOBYWeight() bool {
	return patch.SCOBYWetWeight.Value != nil || patch.SCOBYDryWeight.Value != nil
}

func (patch MeasurementPatch) validate() error {
	if patch.empty() {
		return validationError("measurement update has no fields")
	}
	if err := validatePH(patch.PHValue); err != nil {
		return err
	}
	if err := validateWeight("scoby_wet_weight", patch.SCOBYWetWeight); err != nil {
		return err
	}
	return validateWeight("scoby_dry_weight", patch.SCOBYDryWeight)
}

func (patch MeasurementPatch) applyTo(measurement *models.Measurement) {
	patch.PHValue.applyTo(&measurement.PHValue)
	patch.PHSampleTime.applyTo(&measurement.PHSampleTime)
	patch.MicroResults.applyTo(&measurement.MicroResults)
	patch.MicroSampleTime.applyTo(&measurement.MicroSampleTime)
	patch.HPLCResults.applyTo(&measurement.HPLCResults)
	patch.HPLCSampleTime.applyTo(&measurement.HPLCSampleTime)
	patch.SCOBYWetWeight.applyTo(&measurement.SCOBYWetWeight)
	patch.SCOBYDryWeight.applyTo(&measurement.SCOBYDryWeight)
	patch.Notes.applyTo(&measurement.Notes)
	if patch.Completed.Present {
		measurement.Completed = patch.Completed.Value != nil && *patch.Completed.Value
	}
}

func validatePH(patch Patch[float64]) error {
	if patch.Value == nil {
		return nil
	}
	if *patch.Value < minPHValue || *patch.Value > maxPHValue {
		return validationError("ph_value must be between 0 and 14, got %g", *patch.Value)
	}
	return nil
}

func validateWeight(field string, patch Patch[float64]) error {
	if patch.Value != nil && *patch.Value < 0 {
		return validationError("%s must not be negative", field)
	}
	return nil
}

type SampleKind string

const (
	SamplePH    SampleKind = "ph"
	SampleMicro SampleKind = "micro"
	SampleHPLC  SampleKind = "hplc"
)

var allSampleKinds = []SampleKind{SamplePH, SampleMicro, SampleHPLC}

// MatrixCell is one batch's state at one timepoint.
type MatrixCell struct {
	BatchID          uint     `json:"batch_id"`
	BatchName        string   `json:"batch_name"`
	Recorded         bool     `json:"recorded"`
	SamplesCollected bool     `json:"samples_collected"`
	Completed        bool     `json:"completed"`
	PHValue          *float64 `json:"ph_value"`
}

type MatrixRow struct {
	Timepoint models.Timepoint `json:"timepoint"`
	Current   bool             `json:"current"`
	Completed bool             `json:"completed"`
	Cells     []MatrixCell     `json:"cells"`
}

type MeasurementService struct {
	store   *db.Store
	logger  *logging.Logger
	metrics WorkflowMetrics
}

func NewMeasurementService(store *db.Store, logger *logging.Logger, metrics WorkflowMetrics) *MeasurementService {
	return &MeasurementService{
		store:   store,
		logger:  loggerOrNop(logger),
		metrics: metricsOrNop(metrics),
	}
}

// RecordMeasurement merges patch into the measurement for the pair, creating
// the row on first write.
func (service *MeasurementService) RecordMeasurement(ctx context.Context, batchID uint, timepointID uint, patch MeasurementPatch) (models.Measurement, error) {
	if err := patch.validate(); err != nil {
		return models.Measurement{}, err
	}

	var recorded models.Measurement
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		measurement, err := recordMeasurementTx(tx, batchID, timepointID, patch)
		if err != nil {
			return err
		}
		recorded = measurement
		return nil
	})
	if err != nil {
		return models.Measurement{}, err
	}

	service.metrics.MeasurementRecorded()
	service.logger.Debug("measurement recorded", "batch_id", batchID, "timepoint_id", timepointID, "completed", recorded.Completed)
	return recorded, nil
}

// CollectSamples stamps the collected-at time of the given sample kinds, or
// of all three when kinds is empty.
func (service *MeasurementService) CollectSamples(ctx context.Context, batchID uint, timepointID uint, kinds []SampleKind, at time.Time) (models.Measurement, error) {
	if len(kinds) == 0 {
		kinds = allSampleKinds
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	patch := MeasurementPatch{}
	for _, kind := range kinds {
		switch kind {
		case SamplePH:
			patch.PHSampleTime = Set(at)
		case SampleMicro:
			patch.MicroSampleTime = Set(at)
		case SampleHPLC:
			patch.HPLCSampleTime = Set(at)
		default:
			return models.Measurement{}, validationError("unknown sample kind %q", kind)
		}
	}
	return service.RecordMeasurement(ctx, batchID, timepointID, patch)
}

func (service *MeasurementService) ClearSamples(ctx context.Context, batchID uint, timepointID uint) (models.Measurement, error) {
	return service.RecordMeasurement(ctx, batchID, timepointID, MeasurementPatch{
		PHSampleTime:    Clear[time.Time](),
		MicroSampleTime: Clear[time.Time](),
		HPLCSampleTime:  Clear[time.Time](),
	})
}

// GetBatchMeasurement returns found=false when nothing was recorded yet.
func (service *MeasurementService) GetBatchMeasurement(ctx context.Context, batchID uint, timepointID uint) (models.Measurement, bool, error) {
	store := service.store.WithContext(ctx)
	if _, err := loadBatchTx(store, batchID); err != nil {
		return models.Measurement{}, false, err
	}
	if _, err := loadTimepointTx(store, timepointID); err != nil {
		return models.Measurement{}, false, err
	}
	measurement, found, err := store.Measurements.FindByBatchAndTimepoint(batchID, timepointID)
	if err != nil {
		return models.Measurement{}, false, storeError(err, nil)
	}
	return measurement, found, nil
}

// MarkMeasurementCompleted only touches the completed flag.
func (service *MeasurementService) MarkMeasurementCompleted(ctx context.Context, batchID uint, timepointID uint, completed bool) (models.Measurement, error) {
	return service.RecordMeasurement(ctx, batchID, timepointID, MeasurementPatch{Completed: Set(completed)})
}

// IsTimepointCompleted is true when the experiment has batches and every one
// of them has a completed measurement at the timepoint.
func (service *MeasurementService) IsTimepointCompleted(ctx context.Context, timepointID uint) (bool, error) {
	store := service.store.WithContext(ctx)
	timepoint, err := loadTimepointTx(store, timepointID)
	if err != nil {
		return false, err
	}
	return isTimepointCompletedTx(store, timepoint)
}

func (service *MeasurementService) ListTimepointMeasurements(ctx context.Context, timepointID uint) ([]models.Measurement, error) {
	store := service.store.WithContext(ctx)
	if _, err := loadTimepointTx(store, timepointID); err != nil {
		return nil, err
	}
	measurements, err := store.Measurements.ListByTimepoint(timepointID)
	if err != nil {
		return nil, storeError(err, nil)
	}
	return measurements, nil
}

func (service *MeasurementService) ListBatchMeasurements(ctx context.Context, batchID uint) ([]models.Measurement, error) {
	store := service.store.WithContext(ctx)
	if _, err := loadBatchTx(store, batchID); err != nil {
		return nil, err
	}
	measurements, err := store.Measurements.ListByBatch(batchID)
	if err != nil {
		return nil, storeError(err, nil)
	}
	return measurements, nil
}

// MeasurementMatrix lays out every timepoint against every batch of the
// experiment.
func (service *MeasurementService) MeasurementMatrix(ctx context.Context, experimentID uint) ([]MatrixRow, error) {
	var rows []MatrixRow
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		experiment, err := loadExperimentTx(tx, experimentID)
		if err != nil {
			return err
		}
		timepoints, err := tx.Timepoints.ListByExperiment(experimentID)
		if err != nil {
			return storeError(err, nil)
		}
		batches, err := tx.Batches.ListByExperiment(experimentID)
		if err != nil {
			return storeError(err, nil)
		}
		measurements, err := tx.Measurements.ListByExperiment(experimentID)
		if err != nil {
			return storeError(err, nil)
		}

		byPair := make(map[[2]uint]models.Measurement, len(measurements))
		for _, measurement := range measurements {
			byPair[[2]uint{measurement.BatchID, measurement.TimepointID}] = measurement
		}

		rows = make([]MatrixRow, 0, len(timepoints))
		for _, timepoint := range timepoints {
			row := MatrixRow{
				Timepoint: timepoint,
				Current:   experiment.CurrentTimepointID != nil && *experiment.CurrentTimepointID == timepoint.ID,
				Completed: len(batches) > 0,
				Cells:     make([]MatrixCell, 0, len(batches)),
			}
			for _, batch := range batches {
				cell := MatrixCell{BatchID: batch.ID, BatchName: batch.Name}
				if measurement, ok := byPair[[2]uint{batch.ID, timepoint.ID}]; ok {
					cell.Recorded = true
					cell.SamplesCollected = measurement.SamplesCollected()
					cell.Completed = measurement.Completed
					cell.PHValue = measurement.PHValue
				}
				row.Completed = row.Completed && cell.Completed
				row.Cells = append(row.Cells, cell)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func recordMeasurementTx(tx *db.Store, batchID uint, timepointID uint, patch MeasurementPatch) (models.Measurement, error) {
	batch, err := loadBatchTx(tx, batchID)
	if err != nil {
		return models.Measurement{}, err
	}
	timepoint, err := loadTimepointTx(tx, timepointID)
	if err != nil {
		return models.Measurement{}, err
	}
	if batch.ExperimentID != timepoint.ExperimentID {
		return models.Measurement{}, ErrTimepointMismatch
	}
	if patch.setsSCOBYWeight() {
		final, err := isFinalTimepointTx(tx, timepoint)
		if err != nil {
			return models.Measurement{}, err
		}
		if !final {
			return models.Measurement{}, validationError("SCOBY weights can only be recorded at the final timepoint")
		}
	}

	measurement, found, err := tx.Measurements.FindByBatchAndTimepoint(batchID, timepointID)
	if err != nil {
		return models.Measurement{}, storeError(err, nil)
	}
	if !found {
		measurement = models.Measurement{BatchID: batchID, TimepointID: timepointID}
	}
	patch.applyTo(&measurement)

	if found {
		err = tx.Measurements.Save(&measurement)
	} else {
		err = tx.Measurements.Create(&measurement)
	}
	if err != nil {
		return models.Measurement{}, storeError(err, nil)
	}
	return measurement, nil
}

func isTimepointCompletedTx(store *db.Store, timepoint models.Timepoint) (bool, error) {
	batches, err := store.Batches.ListByExperiment(timepoint.ExperimentID)
	if err != nil {
		return false, storeError(err, nil)
	}
	if len(batches) == 0 {
		return false, nil
	}
	measurements, err := store.Measurements.ListByTimepoint(timepoint.ID)
	if err != nil {
		return false, storeError(err, nil)
	}

	completed := make(map[uint]bool, len(measurements))
	for _, measurement := range measurements {
		completed[measurement.BatchID] = measurement.Completed
	}
	for _, batch := range batches {
		if !completed[batch.ID] {
			return false, nil
		}
	}
	return true, nil
}
