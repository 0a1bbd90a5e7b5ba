package repository

import (
	"context"

	"empleos/internal/models"

	"gorm.io/gorm"
)

// CompanyRepository persists companies. Status changes go through
// ModerationRepository so they are audited.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Company, error)
	UpdateProfile(ctx context.Context, company *models.Company) error
	List(ctx context.Context, status models.ModerationStatus, limit, offset int) ([]models.Company, int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository returns a gorm-backed CompanyRepository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Preload("User").First(&company, id).Error; err != nil {
		return nil, notFoundOr(err, "Company", id)
	}
	return &company, nil
}

func (r *companyRepository) GetByUserID(ctx context.Context, userID uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&company).Error; err != nil {
		return nil, notFoundMessageOr(err, "Company profile not found")
	}
	return &company, nil
}

// UpdateProfile writes the editable profile columns only.
func (r *companyRepository) UpdateProfile(ctx context.Context, company *models.Company) error {
	err := r.db.WithContext(ctx).Model(company).Select(
		"business_name", "legal_name", "industry", "size", "website", "description",
		"address", "city", "region", "phone", "logo_url",
	).Updates(company).Error
	return internal(err)
}

func (r *companyRepository) List(ctx context.Context, status models.ModerationStatus, limit, offset int) ([]models.Company, int64, error) {
	limit, offset = clampPage(limit, offset)

	q := r.db.WithContext(ctx).Model(&models.Company{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var companies []models.Company
	if err := q.Preload("User").Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&companies).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return companies, total, nil
}
