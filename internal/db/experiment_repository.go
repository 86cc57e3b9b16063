package db

import (
	"github.com/terraincognita07/kombucha-eln/internal/models"
	"gorm.io/gorm"
)

type ExperimentRepository struct {
	database *gorm.DB
}

func NewExperimentRepository(database *gorm.DB) *ExperimentRepository {
	return &ExperimentRepository{database: database}
}

func (repo *ExperimentRepository) FindByID(experimentID uint) (models.Experiment, error) {
	var experiment models.Experiment
	if err := repo.database.First(&experiment, experimentID).Error; err != nil {
		return models.Experiment{}, err
	}
	return experiment, nil
}

// ListByUser returns the owner's experiments, newest first. An empty status
// matches every experiment.
func (repo *ExperimentRepository) ListByUser(userID uint, status models.ExperimentStatus) ([]models.Experiment, error) {
	query := repo.database.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	experiments := make([]models.Experiment, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&experiments).Error; err != nil {
		return nil, err
	}
	return experiments, nil
}

func (repo *ExperimentRepository) Create(experiment *models.Experiment) error {
	return repo.database.Create(experiment).Error
}

func (repo *ExperimentRepository) UpdateFields(experimentID uint, updates map[string]any) error {
	return repo.database.Model(&models.Experiment{}).Where("id = ?", experimentID).Updates(updates).Error
}

func (repo *ExperimentRepository) UpdateStatus(experimentID uint, status models.ExperimentStatus) error {
	return repo.database.Model(&models.Experiment{}).Where("id = ?", experimentID).Update("status", status).Error
}

func (repo *ExperimentRepository) SetCurrentTimepoint(experimentID uint, timepointID *uint) error {
	return repo.database.Model(&models.Experiment{}).Where("id = ?", experimentID).Update("current_timepoint_id", timepointID).Error
}

func (repo *ExperimentRepository) SetElabID(experimentID uint, elabID *int64) error {
	return repo.database.Model(&models.Experiment{}).Where("id = ?", experimentID).Update("elab_id", elabID).Error
}

func (repo *ExperimentRepository) ExistsWithCurrentTimepoint(timepointID uint) (bool, error) {
	var count int64
	if err := repo.database.Model(&models.Experiment{}).Where("current_timepoint_id = ?", timepointID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the experiment together with its batches, timepoints and
// measurements.
func (repo *ExperimentRepository) Delete(experimentID uint) error {
	batchIDs := repo.database.Model(&models.Batch{}).Select("id").Where("experiment_id = ?", experimentID)
	if err := repo.database.Where("batch_id IN (?)", batchIDs).Delete(&models.Measurement{}).Error; err != nil {
		return err
	}
	if err := repo.database.Model(&models.Experiment{}).Where("id = ?", experimentID).Update("current_timepoint_id", nil).Error; err != nil {
		return err
	}
	if err := repo.database.Where("experiment_id = ?", experimentID).Delete(&models.Timepoint{}).Error; err != nil {
		return err
	}
	if err := repo.database.Where("experiment_id = ?", experimentID).Delete(&models.Batch{}).Error; err != nil {
		return err
	}
	return repo.database.Delete(&models.Experiment{}, experimentID).Error
}
