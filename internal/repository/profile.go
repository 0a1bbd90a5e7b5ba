package repository

import (
	"context"

	"empleos/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository stores the job seeker profile row.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.JobSeekerProfile, error)
	Save(ctx context.Context, profile *models.JobSeekerProfile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a gorm-backed ProfileRepository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.JobSeekerProfile, error) {
	var profile models.JobSeekerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "Profile", userID)
	}
	return &profile, nil
}

func (r *profileRepository) Save(ctx context.Context, profile *models.JobSeekerProfile) error {
	return internal(r.db.WithContext(ctx).Save(profile).Error)
}

// OwnedItem constrains P to a pointer to E implementing models.OwnedItem.
type OwnedItem[E any] interface {
	*E
	models.OwnedItem
}

// ItemRepository is CRUD over one kind of CV entry, always scoped to the
// owning user. Rows owned by someone else are reported as not found.
type ItemRepository[E any, P OwnedItem[E]] interface {
	List(ctx context.Context, userID uint) ([]E, error)
	Create(ctx context.Context, userID uint, item P) error
	Update(ctx context.Context, userID uint, item P) error
	Delete(ctx context.Context, userID, id uint) error
}

type itemRepository[E any, P OwnedItem[E]] struct {
	db       *gorm.DB
	resource string
}

// NewItemRepository returns an ItemRepository for E; resource names it in errors.
func NewItemRepository[E any, P OwnedItem[E]](db *gorm.DB, resource string) ItemRepository[E, P] {
	return &itemRepository[E, P]{db: db, resource: resource}
}

func (r *itemRepository[E, P]) List(ctx context.Context, userID uint) ([]E, error) {
	items := []E{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository[E, P]) Create(ctx context.Context, userID uint, item P) error {
	item.SetOwnerID(userID)
	return internal(r.db.WithContext(ctx).Create(item).Error)
}

func (r *itemRepository[E, P]) Update(ctx context.Context, userID uint, item P) error {
	var existing E
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", item.ItemID(), userID).First(&existing).Error
	if err != nil {
		return notFoundOr(err, r.resource, item.ItemID())
	}
	item.SetOwnerID(userID)
	return internal(r.db.WithContext(ctx).Omit("created_at").Save(item).Error)
}

func (r *itemRepository[E, P]) Delete(ctx context.Context, userID, id uint) error {
	var zero E
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&zero)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(r.resource, id)
	}
	return nil
}
