package services

import (
	"context"
	"time"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

// ExperimentSnapshot is a store-independent view of an experiment. It is the
// only input of the report renderer and the eLabFTW sync.
type ExperimentSnapshot struct {
	ID               uint                    `json:"id"`
	Title            string                  `json:"title"`
	Status           models.ExperimentStatus `json:"status"`
	Notes            string                  `json:"notes"`
	CreatedAt        time.Time               `json:"created_at"`
	CurrentTimepoint string                  `json:"current_timepoint,omitempty"`
	ExternalID       *int64                  `json:"external_id"`
	Batches          []BatchSnapshot         `json:"batches"`
}

type BatchSnapshot struct {
	ID     uint               `json:"id"`
	Name   string             `json:"name"`
	Status models.BatchStatus `json:"status"`

	TeaType               *string  `json:"tea_type"`
	TeaConcentration      *float64 `json:"tea_concentration"`
	WaterAmount           *float64 `json:"water_amount"`
	SugarType             *string  `json:"sugar_type"`
	SugarConcentration    *float64 `json:"sugar_concentration"`
	InoculumConcentration *float64 `json:"inoculum_concentration"`
	Temperature           *float64 `json:"temperature"`

	PreparationTime     *time.Time `json:"preparation_time"`
	IncubationStartTime *time.Time `json:"incubation_start_time"`
	IncubationEndTime   *time.Time `json:"incubation_end_time"`
	SampleSplitTime     *time.Time `json:"sample_split_time"`
	MicroPlatingTime    *time.Time `json:"micro_plating_time"`
	HPLCPrepTime        *time.Time `json:"hplc_prep_time"`
	PHMeasurementTime   *time.Time `json:"ph_measurement_time"`
	SCOBYWetWeightTime  *time.Time `json:"scoby_wet_weight_time"`
	SCOBYDryWeightTime  *time.Time `json:"scoby_dry_weight_time"`

	MicroResults         *string  `json:"micro_results"`
	HPLCResults          *string  `json:"hplc_results"`
	PHValue              *float64 `json:"ph_value"`
	SCOBYWetWeight       *float64 `json:"scoby_wet_weight"`
	SCOBYDryWeight       *float64 `json:"scoby_dry_weight"`
	TemperatureLoggerIDs *string  `json:"temperature_logger_ids"`
	Notes                string   `json:"notes"`

	Timepoints []TimepointMeasurementSnapshot `json:"timepoints"`
}

// TimepointMeasurementSnapshot is one recorded measurement, labelled with its
// timepoint.
type TimepointMeasurementSnapshot struct {
	TimepointID     uint       `json:"timepoint_id"`
	Name            string     `json:"name"`
	Hours           float64    `json:"hours"`
	Order           int        `json:"order"`
	PHValue         *float64   `json:"ph_value"`
	PHSampleTime    *time.Time `json:"ph_sample_time"`
	MicroResults    *string    `json:"micro_results"`
	MicroSampleTime *time.Time `json:"micro_sample_time"`
	HPLCResults     *string    `json:"hplc_results"`
	HPLCSampleTime  *time.Time `json:"hplc_sample_time"`
	SCOBYWetWeight  *float64   `json:"scoby_wet_weight"`
	SCOBYDryWeight  *float64   `json:"scoby_dry_weight"`
	Notes           *string    `json:"notes"`
	Completed       bool       `json:"completed"`
}

type SnapshotService struct {
	store *db.Store
}

func NewSnapshotService(store *db.Store) *SnapshotService {
	return &SnapshotService{store: store}
}

// BuildExperimentSnapshot reads the experiment in one transaction. Batches
// are ordered by id and each batch lists only the timepoints that have a
// measurement, in timepoint order.
func (service *SnapshotService) BuildExperimentSnapshot(ctx context.Context, experimentID uint) (ExperimentSnapshot, error) {
	var snapshot ExperimentSnapshot
	err := service.store.Transaction(ctx, func(tx *db.Store) error {
		built, err := buildExperimentSnapshotTx(tx, experimentID)
		snapshot = built
		return err
	})
	if err != nil {
		return ExperimentSnapshot{}, err
	}
	return snapshot, nil
}

func buildExperimentSnapshotTx(tx *db.Store, experimentID uint) (ExperimentSnapshot, error) {
	experiment, err := loadExperimentTx(tx, experimentID)
	if err != nil {
		return ExperimentSnapshot{}, err
	}
	batches, err := tx.Batches.ListByExperiment(experimentID)
	if err != nil {
		return ExperimentSnapshot{}, storeError(err, nil)
	}
	timepoints, err := tx.Timepoints.ListByExperiment(experimentID)
	if err != nil {
		return ExperimentSnapshot{}, storeError(err, nil)
	}
	measurements, err := tx.Measurements.ListByExperiment(experimentID)
	if err != nil {
		return ExperimentSnapshot{}, storeError(err, nil)
	}

	byPair := make(map[[2]uint]models.Measurement, len(measurements))
	for _, measurement := range measurements {
		byPair[[2]uint{measurement.BatchID, measurement.TimepointID}] = measurement
	}

	snapshot := ExperimentSnapshot{
		ID:         experiment.ID,
		Title:      experiment.Title,
		Status:     experiment.Status,
		Notes:      experiment.Notes,
		CreatedAt:  experiment.CreatedAt,
		ExternalID: experiment.ElabID,
		Batches:    make([]BatchSnapshot, 0, len(batches)),
	}
	for _, timepoint := range timepoints {
		if experiment.CurrentTimepointID != nil && *experiment.CurrentTimepointID == timepoint.ID {
			snapshot.CurrentTimepoint = timepoint.Name
		}
	}

	for _, batch := range batches {
		projected := projectBatch(batch)
		for _, timepoint := range timepoints {
			measurement, ok := byPair[[2]uint{batch.ID, timepoint.ID}]
			if !ok {
				continue
			}
			projected.Timepoints = append(projected.Timepoints, projectMeasurement(timepoint, measurement))
		}
		snapshot.Batches = append(snapshot.Batches, projected)
	}
	return snapshot, nil
}

func projectBatch(batch models.Batch) BatchSnapshot {
	return BatchSnapshot{
		ID:                    batch.ID,
		Name:                  batch.Name,
		Status:                batch.Status,
		TeaType:               batch.TeaType,
		TeaConcentration:      batch.TeaConcentration,
		WaterAmount:           batch.WaterAmount,
		SugarType:             batch.SugarType,
		SugarConcentration:    batch.SugarConcentration,
		InoculumConcentration: batch.InoculumConcentration,
		Temperature:           batch.Temperature,
		PreparationTime:       batch.PreparationTime,
		IncubationStartTime:   batch.IncubationStartTime,
		IncubationEndTime:     batch.IncubationEndTime,
		SampleSplitTime:       batch.SampleSplitTime,
		MicroPlatingTime:      batch.MicroPlatingTime,
		HPLCPrepTime:          batch.HPLCPrepTime,
		PHMeasurementTime:     batch.PHMeasurementTime,
		SCOBYWetWeightTime:    batch.SCOBYWetWeightTime,
		SCOBYDryWeightTime:    batch.SCOBYDryWeightTime,
		MicroResults:          batch.MicroResults,
		HPLCResults:           batch.HPLCResults,
		PHValue:               batch.PHValue,
		SCOBYWetWeight:        batch.SCOBYWetWeight,
		SCOBYDryWeight:        batch.SCOBYDryWeight,
		TemperatureLoggerIDs:  batch.TemperatureLoggerIDs,
		Notes:                 batch.Notes,
		Timepoints:            make([]TimepointMeasurementSnapshot, 0),
	}
}

func projectMeasurement(timepoint models.Timepoint, measurement models.Measurement) TimepointMeasurementSnapshot {
	return TimepointMeasurementSnapshot{
		TimepointID:     timepoint.ID,
		Name:            timepoint.Name,
		Hours:           timepoint.Hours,
		Order:           timepoint.Order,
		PHValue:         measurement.PHValue,
		PHSampleTime:    measurement.PHSampleTime,
		MicroResults:    measurement.MicroResults,
		MicroSampleTime: measurement.MicroSampleTime,
		HPLCResults:     measurement.HPLCResults,
		HPLCSampleTime:  measurement.HPLCSampleTime,
		SCOBYWetWeight:  measurement.SCOBYWetWeight,
		SCOBYDryWeight:  measurement.SCOBYDryWeight,
		Notes:           measurement.Notes,
		Completed:       measurement.Completed,
	}
}
