package models

import "time"

type ExperimentStatus string

const (
	ExperimentPlanning  ExperimentStatus = "Planning"
	ExperimentRunning   ExperimentStatus = "Running"
	ExperimentAnalysis  ExperimentStatus = "Analysis"
	ExperimentCompleted ExperimentStatus = "Completed"
)

func (status ExperimentStatus) Valid() bool {
	switch status {
	case ExperimentPlanning, ExperimentRunning, ExperimentAnalysis, ExperimentCompleted:
		return true
	default:
		return false
	}
}

type Experiment struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	Title              string           `gorm:"not null" json:"title"`
	UserID             uint             `gorm:"not null;index" json:"user_id"`
	CreatedAt          time.Time        `gorm:"not null" json:"created_at"`
	Status             ExperimentStatus `gorm:"not null;default:Planning" json:"status"`
	Notes              string           `gorm:"not null;default:''" json:"notes"`
	CurrentTimepointID *uint            `gorm:"index" json:"current_timepoint_id"`
	ElabID             *int64           `gorm:"column:elab_id" json:"elab_id"`
}
