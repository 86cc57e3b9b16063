package db

import (
	"github.com/terraincognita07/kombucha-eln/internal/models"
	"gorm.io/gorm"
)

type TimepointRepository struct {
	database *gorm.DB
}

func NewTimepointRepository(database *gorm.DB) *TimepointRepository {
	return &TimepointRepository{database: database}
}

func (repo *TimepointRepository) FindByID(timepointID uint) (models.Timepoint, error) {
	var timepoint models.Timepoint
	if err := repo.database.First(&timepoint, timepointID).Error; err != nil {
		return models.Timepoint{}, err
	}
	return timepoint, nil
}

// ListByExperiment returns timepoints in ascending sequence order.
func (repo *TimepointRepository) ListByExperiment(experimentID uint) ([]models.Timepoint, error) {
	timepoints := make([]models.Timepoint, 0)
	if err := repo.database.
		Where("experiment_id = ?", experimentID).
		Order("sequence_order ASC, hours ASC, id ASC").
		Find(&timepoints).Error; err != nil {
		return nil, err
	}
	return timepoints, nil
}

func (repo *TimepointRepository) CountByExperiment(experimentID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Timepoint{}).Where("experiment_id = ?", experimentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Neighbor returns the timepoint directly after (or before, when next is
// false) the given order within the experiment.
func (repo *TimepointRepository) Neighbor(experimentID uint, order int, next bool) (models.Timepoint, bool, error) {
	query := repo.database.Where("experiment_id = ?", experimentID)
	if next {
		query = query.Where("sequence_order > ?", order).Order("sequence_order ASC")
	} else {
		query = query.Where("sequence_order < ?", order).Order("sequence_order DESC")
	}

	timepoint := models.Timepoint{}
	result := query.Limit(1).Find(&timepoint)
	if result.Error != nil {
		return models.Timepoint{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Timepoint{}, false, nil
	}
	return timepoint, true, nil
}

func (repo *TimepointRepository) CreateMany(timepoints []models.Timepoint) error {
	if len(timepoints) == 0 {
		return nil
	}
	return repo.database.Create(&timepoints).Error
}

func (repo *TimepointRepository) Create(timepoint *models.Timepoint) error {
	return repo.database.Create(timepoint).Error
}

// Delete removes the timepoint and its measurements.
func (repo *TimepointRepository) Delete(timepointID uint) error {
	if err := repo.database.Where("timepoint_id = ?", timepointID).Delete(&models.Measurement{}).Error; err != nil {
		return err
	}
	return repo.database.Delete(&models.Timepoint{}, timepointID).Error
}
