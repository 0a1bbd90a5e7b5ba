package repository

import (
	"context"

	"empleos/internal/models"
	"empleos/internal/observability"

	"gorm.io/gorm"
)

// AuditLogRepository appends and reads audit entries. It deliberately has
// no update or delete method.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository returns a gorm-backed AuditLogRepository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return internal(appendAudit(r.db.WithContext(ctx), entry))
}

// appendAudit writes entry on db, which may be a transaction.
func appendAudit(db *gorm.DB, entry *models.AuditLog) error {
	if err := db.Omit("Admin").Create(entry).Error; err != nil {
		return err
	}
	observability.AuditWrites.WithLabelValues(entry.ActionType).Inc()
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int64, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.ActionType != "" {
		q = q.Where("action_type = ?", filter.ActionType)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != 0 {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.AdminID != 0 {
		q = q.Where("admin_id = ?", filter.AdminID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var entries []models.AuditLog
	err := q.Preload("Admin").Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return entries, total, nil
}
