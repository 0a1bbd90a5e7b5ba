package repository

import (
	"context"

	"empleos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository persists system settings.
type SettingRepository interface {
	List(ctx context.Context) ([]models.SystemSetting, error)
	Get(ctx context.Context, key string) (*models.SystemSetting, error)
	UpdateMany(ctx context.Context, values map[string]models.JSON, adminID uint, audit *models.AuditLog) ([]models.SystemSetting, error)
	SeedDefaults(ctx context.Context) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository returns a gorm-backed SettingRepository.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) List(ctx context.Context) ([]models.SystemSetting, error) {
	settings := []models.SystemSetting{}
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return settings, nil
}

func (r *settingRepository) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, notFoundMessageOr(err, "Setting "+key+" not found")
	}
	return &setting, nil
}

// UpdateMany upserts values and appends audit in one transaction.
func (r *settingRepository) UpdateMany(ctx context.Context, values map[string]models.JSON, adminID uint, audit *models.AuditLog) ([]models.SystemSetting, error) {
	var updated []models.SystemSetting
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			setting := models.SystemSetting{Key: key, Value: value, UpdatedBy: &adminID}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
			}).Create(&setting).Error
			if err != nil {
				return err
			}
		}
		if audit != nil {
			if err := appendAudit(tx, audit); err != nil {
				return err
			}
		}
		return tx.Order("key ASC").Find(&updated).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return updated, nil
}

// SeedDefaults inserts missing default settings without touching existing ones.
func (r *settingRepository) SeedDefaults(ctx context.Context) error {
	defaults := models.DefaultSettings()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&defaults).Error
	return internal(err)
}
