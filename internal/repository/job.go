package repository

import (
	"context"

	"empleos/internal/models"

	"gorm.io/gorm"
)

// JobRepository persists job postings.
type JobRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Job, error)
	GetActive(ctx context.Context, id uint) (*models.Job, error)
	GetForCompany(ctx context.Context, companyID, id uint) (*models.Job, error)
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, job *models.Job) error
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, int64, error)
	CountByStatusForCompany(ctx context.Context, companyID uint) (map[models.ModerationStatus]int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository returns a gorm-backed JobRepository.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Preload("Company").First(&job, id).Error; err != nil {
		return nil, notFoundOr(err, "Job", id)
	}
	return &job, nil
}

// GetActive hides every non-active job behind a not-found error.
func (r *jobRepository) GetActive(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Preload("Company").
		Where("id = ? AND status = ?", id, models.StatusActive).
		First(&job).Error
	if err != nil {
		return nil, notFoundOr(err, "Job", id)
	}
	return &job, nil
}

func (r *jobRepository) GetForCompany(ctx context.Context, companyID, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Preload("Company").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&job).Error
	if err != nil {
		return nil, notFoundOr(err, "Job", id)
	}
	return &job, nil
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	return internal(r.db.WithContext(ctx).Omit("Company").Create(job).Error)
}

func (r *jobRepository) Update(ctx context.Context, job *models.Job) error {
	return internal(r.db.WithContext(ctx).Omit("Company").Save(job).Error)
}

// Delete removes a draft. The status guard is repeated in SQL so a job that
// was submitted concurrently is left alone.
func (r *jobRepository) Delete(ctx context.Context, job *models.Job) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", job.ID, models.StatusDraft).
		Delete(&models.Job{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidTransitionError("Only draft jobs can be deleted")
	}
	return nil
}

func (r *jobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int64, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	q := r.db.WithContext(ctx).Model(&models.Job{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CompanyID != 0 {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Region != "" {
		q = q.Where("region = ?", filter.Region)
	}
	if filter.JobType != "" {
		q = q.Where("job_type = ?", filter.JobType)
	}
	if filter.WorkMode != "" {
		q = q.Where("work_mode = ?", filter.WorkMode)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var jobs []models.Job
	if err := q.Preload("Company").Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&jobs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return jobs, total, nil
}

func (r *jobRepository) CountByStatusForCompany(ctx context.Context, companyID uint) (map[models.ModerationStatus]int64, error) {
	var rows []struct {
		Status models.ModerationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Select("status, COUNT(*) AS count").
		Where("company_id = ?", companyID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	counts := make(map[models.ModerationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
