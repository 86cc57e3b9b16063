package db

import (
	"github.com/terraincognita07/kombucha-eln/internal/models"
	"gorm.io/gorm"
)

type MeasurementRepository struct {
	database *gorm.DB
}

func NewMeasurementRepository(database *gorm.DB) *MeasurementRepository {
	return &MeasurementRepository{database: database}
}

func (repo *MeasurementRepository) FindByBatchAndTimepoint(batchID uint, timepointID uint) (models.Measurement, bool, error) {
	measurement := models.Measurement{}
	result := repo.database.
		Where("batch_id = ? AND timepoint_id = ?", batchID, timepointID).
		Limit(1).
		Find(&measurement)
	if result.Error != nil {
		return models.Measurement{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Measurement{}, false, nil
	}
	return measurement, true, nil
}

func (repo *MeasurementRepository) ListByTimepoint(timepointID uint) ([]models.Measurement, error) {
	measurements := make([]models.Measurement, 0)
	if err := repo.database.Where("timepoint_id = ?", timepointID).Order("batch_id ASC").Find(&measurements).Error; err != nil {
		return nil, err
	}
	return measurements, nil
}

func (repo *MeasurementRepository) ListByBatch(batchID uint) ([]models.Measurement, error) {
	measurements := make([]models.Measurement, 0)
	if err := repo.database.Where("batch_id = ?", batchID).Order("timepoint_id ASC").Find(&measurements).Error; err != nil {
		return nil, err
	}
	return measurements, nil
}

// ListByExperiment returns every measurement recorded against the
// experiment's batches.
func (repo *MeasurementRepository) ListByExperiment(experimentID uint) ([]models.Measurement, error) {
	batchIDs := repo.database.Model(&models.Batch{}).Select("id").Where("experiment_id = ?", experimentID)

	measurements := make([]models.Measurement, 0)
	if err := repo.database.
		Where("batch_id IN (?)", batchIDs).
		Order("batch_id ASC, timepoint_id ASC").
		Find(&measurements).Error; err != nil {
		return nil, err
	}
	return measurements, nil
}

func (repo *MeasurementRepository) CountByTimepoint(timepointID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Measurement{}).Where("timepoint_id = ?", timepointID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *MeasurementRepository) Create(measurement *models.Measurement) error {
	return repo.database.Create(measurement).Error
}

func (repo *MeasurementRepository) Save(measurement *models.Measurement) error {
	return repo.database.Save(measurement).Error
}

