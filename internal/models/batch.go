package models

import "time"

type BatchStatus string

// Batch statuses in workflow order.
const (
	BatchSetup           BatchStatus = "Setup"
	BatchPrepared        BatchStatus = "Prepared"
	BatchIncubating      BatchStatus = "Incubating"
	BatchSampling        BatchStatus = "Sampling"
	BatchAnalysisPending BatchStatus = "Analysis Pending"
	BatchMicroPlated     BatchStatus = "Micro Plated"
	BatchHPLCPrepped     BatchStatus = "HPLC Prepped"
	BatchPHMeasured      BatchStatus = "pH Measured"
	BatchSCOBYWeighed    BatchStatus = "SCOBY Weighed"
	BatchCompleted       BatchStatus = "Completed"
)

type Batch struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	ExperimentID uint        `gorm:"not null;index" json:"experiment_id"`
	Name         string      `gorm:"not null" json:"name"`
	Status       BatchStatus `gorm:"not null;default:Setup" json:"status"`

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
	HPLCPrepTime        *time.Time `gorm:"column:hplc_prep_time" json:"hplc_prep_time"`
	PHMeasurementTime   *time.Time `gorm:"column:ph_measurement_time" json:"ph_measurement_time"`
	SCOBYWetWeightTime  *time.Time `gorm:"column:scoby_wet_weight_time" json:"scoby_wet_weight_time"`
	SCOBYDryWeightTime  *time.Time `gorm:"column:scoby_dry_weight_time" json:"scoby_dry_weight_time"`

	MicroResults         *string  `json:"micro_results"`
	HPLCResults          *string  `gorm:"column:hplc_results" json:"hplc_results"`
	PHValue              *float64 `gorm:"column:ph_value" json:"ph_value"`
	SCOBYWetWeight       *float64 `gorm:"column:scoby_wet_weight" json:"scoby_wet_weight"`
	SCOBYDryWeight       *float64 `gorm:"column:scoby_dry_weight" json:"scoby_dry_weight"`
	TemperatureLoggerIDs *string  `gorm:"column:temperature_logger_ids" json:"temperature_logger_ids"`

	Notes string `gorm:"not null;default:''" json:"notes"`
}
