package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"empleos/internal/models"
	"empleos/internal/observability"

	"gorm.io/gorm"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	UserType      models.UserType
	AccountStatus models.AccountStatus
	Search        string
	Limit         int
	Offset        int
}

// UserRepository defines persistence operations for users and the
// account records created with them at registration.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CreateJobSeeker(ctx context.Context, user *models.User, profile *models.JobSeekerProfile) error
	CreateCompanyAccount(ctx context.Context, user *models.User, company *models.Company) error
	CreateOMILAccount(ctx context.Context, user *models.User, org *models.OMILOrganization) error
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return r.mapCreateError(ctx, err)
	}
	r.log.LogWrite(ctx, "create", map[string]any{"user_id": user.ID, "user_type": user.UserType})
	return nil
}

func (r *userRepository) CreateJobSeeker(ctx context.Context, user *models.User, profile *models.JobSeekerProfile) error {
	return r.createWith(ctx, user, func(tx *gorm.DB) error {
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (r *userRepository) CreateCompanyAccount(ctx context.Context, user *models.User, company *models.Company) error {
	return r.createWith(ctx, user, func(tx *gorm.DB) error {
		company.UserID = user.ID
		return tx.Omit("User").Create(company).Error
	})
}

func (r *userRepository) CreateOMILAccount(ctx context.Context, user *models.User, org *models.OMILOrganization) error {
	return r.createWith(ctx, user, func(tx *gorm.DB) error {
		org.UserID = user.ID
		return tx.Omit("User").Create(org).Error
	})
}

func (r *userRepository) createWith(ctx context.Context, user *models.User, child func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return child(tx)
	})
	if err != nil {
		return r.mapCreateError(ctx, err)
	}
	r.log.LogWrite(ctx, "create", map[string]any{"user_id": user.ID, "user_type": user.UserType})
	return nil
}

func (r *userRepository) mapCreateError(ctx context.Context, err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		if strings.Contains(constraint, "rut") {
			return models.NewConflictError("RUT already registered")
		}
		return models.NewConflictError("Email already registered")
	}
	r.log.LogError(ctx, err, "create")
	return models.NewInternalError(err)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return internal(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.UserType != "" {
		q = q.Where("user_type = ?", filter.UserType)
	}
	if filter.AccountStatus != "" {
		q = q.Where("account_status = ?", filter.AccountStatus)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(email) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var users []models.User
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}
