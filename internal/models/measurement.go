package models

import "time"

type Measurement struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	BatchID     uint `gorm:"not null;uniqueIndex:uidx_measurement_batch_timepoint" json:"batch_id"`
	TimepointID uint `gorm:"not null;uniqueIndex:uidx_measurement_batch_timepoint" json:"timepoint_id"`

	PHValue      *float64   `gorm:"column:ph_value" json:"ph_value"`
	PHSampleTime *time.Time `gorm:"column:ph_sample_time" json:"ph_sample_time"`

	MicroResults    *string    `json:"micro_results"`
	MicroSampleTime *time.Time `json:"micro_sample_time"`

	HPLCResults    *string    `gorm:"column:hplc_results" json:"hplc_results"`
	HPLCSampleTime *time.Time `gorm:"column:hplc_sample_time" json:"hplc_sample_time"`

	SCOBYWetWeight *float64 `gorm:"column:scoby_wet_weight" json:"scoby_wet_weight"`
	SCOBYDryWeight *float64 `gorm:"column:scoby_dry_weight" json:"scoby_dry_weight"`

	Notes     *string   `json:"notes"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SamplesCollected reports whether all three sample collection times are set.
func (measurement Measurement) SamplesCollected() bool {
	return measurement.PHSampleTime != nil && measurement.MicroSampleTime != nil && measurement.HPLCSampleTime != nil
}
