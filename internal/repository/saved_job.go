package repository

import (
	"context"

	"empleos/internal/models"

	"gorm.io/gorm"
)

// SavedJobRepository stores the per-seeker bookmark set.
type SavedJobRepository interface {
	Create(ctx context.Context, saved *models.SavedJob) error
	Delete(ctx context.Context, seekerID, jobID uint) error
	Exists(ctx context.Context, seekerID, jobID uint) (bool, error)
	List(ctx context.Context, seekerID uint, limit, offset int) ([]models.SavedJob, int64, error)
}

type savedJobRepository struct {
	db *gorm.DB
}

// NewSavedJobRepository returns a gorm-backed SavedJobRepository.
func NewSavedJobRepository(db *gorm.DB) SavedJobRepository {
	return &savedJobRepository{db: db}
}

// Create relies on the (job_seeker_id, job_id) unique index so concurrent
// duplicate saves resolve to one row and one conflict.
func (r *savedJobRepository) Create(ctx context.Context, saved *models.SavedJob) error {
	if err := r.db.WithContext(ctx).Omit("Job").Create(saved).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Job already saved")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *savedJobRepository) Delete(ctx context.Context, seekerID, jobID uint) error {
	res := r.db.WithContext(ctx).
		Where("job_seeker_id = ? AND job_id = ?", seekerID, jobID).
		Delete(&models.SavedJob{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundMessage("Saved job not found")
	}
	return nil
}

func (r *savedJobRepository) Exists(ctx context.Context, seekerID, jobID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SavedJob{}).
		Where("job_seeker_id = ? AND job_id = ?", seekerID, jobID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *savedJobRepository) List(ctx context.Context, seekerID uint, limit, offset int) ([]models.SavedJob, int64, error) {
	limit, offset = clampPage(limit, offset)
	q := r.db.WithContext(ctx).Model(&models.SavedJob{}).Where("job_seeker_id = ?", seekerID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var saved []models.SavedJob
	err := q.Preload("Job.Company").Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&saved).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return saved, total, nil
}
