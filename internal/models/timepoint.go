package models

// Timepoint order is authoritative for sequencing; hours is display data.
type Timepoint struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	ExperimentID uint    `gorm:"not null;index" json:"experiment_id"`
	Name         string  `gorm:"not null" json:"name"`
	Hours        float64 `gorm:"not null;default:0" json:"hours"`
	Description  string  `gorm:"not null;default:''" json:"description"`
	Order        int     `gorm:"column:sequence_order;not null" json:"order"`
}
