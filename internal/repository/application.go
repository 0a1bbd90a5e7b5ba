package repository

import (
	"context"
	"time"

	"empleos/internal/models"

	"gorm.io/gorm"
)

// ApplicationRepository persists job applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetForCompany(ctx context.Context, companyID, id uint) (*models.Application, error)
	UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus, notes *string) error
	ListBySeeker(ctx context.Context, seekerID uint, limit, offset int) ([]models.Application, int64, error)
	ListForCompany(ctx context.Context, filter models.ApplicantFilter) ([]models.Application, int64, error)
	CountSince(ctx context.Context, seekerID uint, since time.Time) (int64, error)
	CountByStatusForCompany(ctx context.Context, companyID uint) (map[models.ApplicationStatus]int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository returns a gorm-backed ApplicationRepository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Omit("Job", "JobSeeker").Create(app).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You have already applied to this job")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *applicationRepository) GetForCompany(ctx context.Context, companyID, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("applications.id = ? AND jobs.company_id = ?", id, companyID).
		Preload("Job").Preload("JobSeeker").
		First(&app).Error
	if err != nil {
		return nil, notFoundOr(err, "Application", id)
	}
	return &app, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus, notes *string) error {
	updates := map[string]interface{}{"status": status}
	if notes != nil {
		updates["company_notes"] = *notes
	}
	return internal(r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *applicationRepository) ListBySeeker(ctx context.Context, seekerID uint, limit, offset int) ([]models.Application, int64, error) {
	limit, offset = clampPage(limit, offset)
	q := r.db.WithContext(ctx).Model(&models.Application{}).Where("job_seeker_id = ?", seekerID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var apps []models.Application
	err := q.Preload("Job.Company").Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&apps).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return apps, total, nil
}

func (r *applicationRepository) ListForCompany(ctx context.Context, filter models.ApplicantFilter) ([]models.Application, int64, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	q := r.db.WithContext(ctx).Model(&models.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ?", filter.CompanyID)
	if filter.JobID != 0 {
		q = q.Where("applications.job_id = ?", filter.JobID)
	}
	if filter.Status != "" {
		q = q.Where("applications.status = ?", filter.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var apps []models.Application
	err := q.Preload("Job").Preload("JobSeeker").
		Order("applications.created_at DESC, applications.id DESC").
		Limit(limit).Offset(offset).
		Find(&apps).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return apps, total, nil
}

func (r *applicationRepository) CountSince(ctx context.Context, seekerID uint, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_seeker_id = ? AND created_at >= ?", seekerID, since).
		Count(&n).Error
	return n, internal(err)
}

func (r *applicationRepository) CountByStatusForCompany(ctx context.Context, companyID uint) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("applications.status AS status, COUNT(*) AS count").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ?", companyID).
		Group("applications.status").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	counts := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
