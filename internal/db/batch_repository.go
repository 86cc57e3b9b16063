package db

import (
	"github.com/terraincognita07/kombucha-eln/internal/models"
	"gorm.io/gorm"
)

type BatchRepository struct {
	database *gorm.DB
}

func NewBatchRepository(database *gorm.DB) *BatchRepository {
	return &BatchRepository{database: database}
}

func (repo *BatchRepository) FindByID(batchID uint) (models.Batch, error) {
	var batch models.Batch
	if err := repo.database.First(&batch, batchID).Error; err != nil {
		return models.Batch{}, err
	}
	return batch, nil
}

func (repo *BatchRepository) ListByExperiment(experimentID uint) ([]models.Batch, error) {
	batches := make([]models.Batch, 0)
	if err := repo.database.Where("experiment_id = ?", experimentID).Order("id ASC").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (repo *BatchRepository) ListStatuses(experimentID uint) ([]models.BatchStatus, error) {
	statuses := make([]models.BatchStatus, 0)
	if err := repo.database.Model(&models.Batch{}).
		Where("experiment_id = ?", experimentID).
		Order("id ASC").
		Pluck("status", &statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (repo *BatchRepository) Create(batch *models.Batch) error {
	return repo.database.Create(batch).Error
}

func (repo *BatchRepository) CreateMany(batches []models.Batch) error {
	if len(batches) == 0 {
		return nil
	}
	return repo.database.Create(&batches).Error
}

func (repo *BatchRepository) Save(batch *models.Batch) error {
	return repo.database.Save(batch).Error
}

// Delete removes the batch and its measurements.
func (repo *BatchRepository) Delete(batchID uint) error {
	if err := repo.database.Where("batch_id = ?", batchID).Delete(&models.Measurement{}).Error; err != nil {
		return err
	}
	return repo.database.Delete(&models.Batch{}, batchID).Error
}
