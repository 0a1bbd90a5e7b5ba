package repository

import (
	"context"

	"empleos/internal/models"

	"gorm.io/gorm"
)

// OMILRepository persists OMIL organizations.
type OMILRepository interface {
	GetByID(ctx context.Context, id uint) (*models.OMILOrganization, error)
	GetByUserID(ctx context.Context, userID uint) (*models.OMILOrganization, error)
	List(ctx context.Context, status models.ModerationStatus, limit, offset int) ([]models.OMILOrganization, int64, error)
}

type omilRepository struct {
	db *gorm.DB
}

// NewOMILRepository returns a gorm-backed OMILRepository.
func NewOMILRepository(db *gorm.DB) OMILRepository {
	return &omilRepository{db: db}
}

func (r *omilRepository) GetByID(ctx context.Context, id uint) (*models.OMILOrganization, error) {
	var org models.OMILOrganization
	if err := r.db.WithContext(ctx).Preload("User").First(&org, id).Error; err != nil {
		return nil, notFoundOr(err, "OMIL organization", id)
	}
	return &org, nil
}

func (r *omilRepository) GetByUserID(ctx context.Context, userID uint) (*models.OMILOrganization, error) {
	var org models.OMILOrganization
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&org).Error; err != nil {
		return nil, notFoundMessageOr(err, "OMIL organization profile not found")
	}
	return &org, nil
}

func (r *omilRepository) List(ctx context.Context, status models.ModerationStatus, limit, offset int) ([]models.OMILOrganization, int64, error) {
	limit, offset = clampPage(limit, offset)

	q := r.db.WithContext(ctx).Model(&models.OMILOrganization{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var orgs []models.OMILOrganization
	if err := q.Preload("User").Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&orgs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return orgs, total, nil
}
