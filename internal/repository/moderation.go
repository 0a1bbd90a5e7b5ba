package repository

import (
	"context"
	"fmt"

	"empleos/internal/models"
	"empleos/internal/moderation"
	"empleos/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyFunc mutates a locked entity and returns the audit entry to append.
// Returning an error aborts the transaction with no writes.
type ApplyFunc func(entity models.Moderatable) (*models.AuditLog, error)

// ApplyUserFunc is ApplyFunc for user accounts.
type ApplyUserFunc func(user *models.User) (*models.AuditLog, error)

// ModerationRepository performs audited state transitions. Each call runs
// load, check, save and the audit insert in one transaction, holding a row
// lock on the entity.
type ModerationRepository interface {
	Transition(ctx context.Context, entity moderation.Entity, id uint, apply ApplyFunc) (models.Moderatable, error)
	TransitionUser(ctx context.Context, id uint, apply ApplyUserFunc) (*models.User, error)
}

type moderationRepository struct {
	db *gorm.DB
}

// NewModerationRepository returns a gorm-backed ModerationRepository.
func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func newModeratable(entity moderation.Entity) (models.Moderatable, error) {
	switch entity {
	case moderation.Company:
		return &models.Company{}, nil
	case moderation.Job:
		return &models.Job{}, nil
	case moderation.OMIL:
		return &models.OMILOrganization{}, nil
	}
	return nil, fmt.Errorf("entity %q is not moderated", entity)
}

func (r *moderationRepository) Transition(ctx context.Context, entity moderation.Entity, id uint, apply ApplyFunc) (models.Moderatable, error) {
	target, err := newModeratable(entity)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	err = observability.Traced(ctx, "moderation", "transition", func(ctx context.Context) error {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := lockForUpdate(tx).First(target, id).Error; err != nil {
				return notFoundOr(err, entity.Label(), id)
			}
			entry, err := apply(target)
			if err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).Save(target).Error; err != nil {
				return err
			}
			if entry == nil {
				return nil
			}
			return appendAudit(tx, entry)
		})
		return internal(err)
	}, attribute.String("entity", string(entity)), attribute.Int64("entity.id", int64(id)))
	if err != nil {
		return nil, err
	}
	return target, nil
}

func (r *moderationRepository) TransitionUser(ctx context.Context, id uint, apply ApplyUserFunc) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&user, id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		entry, err := apply(&user)
		if err != nil {
			return err
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		return appendAudit(tx, entry)
	})
	if err != nil {
		return nil, internal(err)
	}
	return &user, nil
}
