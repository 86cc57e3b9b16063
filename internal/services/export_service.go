package services

import (
	"context"
	"strconv"
	"time"
)

const exportTimeLayout = "2006-01-02 15:04"

var ExportCSVHeaders = []string{
	"Batch",
	"Batch status",
	"Timepoint",
	"Hours",
	"pH",
	"pH sampled",
	"Micro results",
	"Micro sampled",
	"HPLC results",
	"HPLC sampled",
	"SCOBY wet weight (g)",
	"SCOBY dry weight (g)",
	"Completed",
	"Notes",
}

// ExportService flattens experiment snapshots into one row per recorded
// measurement.
type ExportService struct {
	snapshots *SnapshotService
	location  *time.Location
}

type ExportSummary struct {
	Batches      int  `json:"batches"`
	Measurements int  `json:"measurements"`
	Completed    int  `json:"completed"`
	HasData      bool `json:"has_data"`
}

type ExportCSVRow struct {
	Batch       BatchSnapshot
	Measurement TimepointMeasurementSnapshot
	location    *time.Location
}

func NewExportService(snapshots *SnapshotService, location *time.Location) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{
		snapshots: snapshots,
		location:  location,
	}
}

func (service *ExportService) BuildSummary(ctx context.Context, experimentID uint) (ExportSummary, error) {
	snapshot, err := service.snapshots.BuildExperimentSnapshot(ctx, experimentID)
	if err != nil {
		return ExportSummary{}, err
	}

	summary := ExportSummary{Batches: len(snapshot.Batches)}
	for _, batch := range snapshot.Batches {
		summary.Measurements += len(batch.Timepoints)
		for _, measurement := range batch.Timepoints {
			if measurement.Completed {
				summary.Completed++
			}
		}
	}
	summary.HasData = summary.Measurements > 0
	return summary, nil
}

// BuildCSVRows returns rows in batch order, then timepoint order.
func (service *ExportService) BuildCSVRows(ctx context.Context, experimentID uint) (ExperimentSnapshot, []ExportCSVRow, error) {
	snapshot, err := service.snapshots.BuildExperimentSnapshot(ctx, experimentID)
	if err != nil {
		return ExperimentSnapshot{}, nil, err
	}

	rows := make([]ExportCSVRow, 0)
	for _, batch := range snapshot.Batches {
		for _, measurement := range batch.Timepoints {
			rows = append(rows, ExportCSVRow{Batch: batch, Measurement: measurement, location: service.location})
		}
	}
	return snapshot, rows, nil
}

func (row ExportCSVRow) Columns() []string {
	measurement := row.Measurement
	return []string{
		row.Batch.Name,
		string(row.Batch.Status),
		measurement.Name,
		strconv.FormatFloat(measurement.Hours, 'f', -1, 64),
		csvNumber(measurement.PHValue),
		csvTime(measurement.PHSampleTime, row.location),
		csvText(measurement.MicroResults),
		csvTime(measurement.MicroSampleTime, row.location),
		csvText(measurement.HPLCResults),
		csvTime(measurement.HPLCSampleTime, row.location),
		csvNumber(measurement.SCOBYWetWeight),
		csvNumber(measurement.SCOBYDryWeight),
		csvYesNo(measurement.Completed),
		csvText(measurement.Notes),
	}
}

func csvYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func csvNumber(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func csvText(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func csvTime(value *time.Time, location *time.Location) string {
	if value == nil {
		return ""
	}
	if location == nil {
		location = time.UTC
	}
	return value.In(location).Format(exportTimeLayout)
}
