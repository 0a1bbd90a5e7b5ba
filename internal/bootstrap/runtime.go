package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"empleos/internal/cache"
	"empleos/internal/config"
	"empleos/internal/database"
	"empleos/internal/models"
	"empleos/internal/repository"
	"empleos/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedSettings bool
}

// InitRuntime connects to DB and Redis, seeds default settings and ensures
// the development admin when configured.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedSettings {
		if err := repository.NewSettingRepository(db).SeedDefaults(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to seed default settings: %w", err)
		}
	}

	if err := ensureDevAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return db, r, nil
}

func ensureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@empleos.local"
	}
	password := cfg.DevAdminPassword
	if password == "" {
		return fmt.Errorf("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("DEV_ADMIN_PASSWORD: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			now := time.Now().UTC()
			admin = models.User{
				Email:           email,
				Password:        string(hashedPassword),
				UserType:        models.UserTypeAdmin,
				AccountStatus:   models.AccountActive,
				EmailVerifiedAt: &now,
			}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		case admin.UserType != models.UserTypeAdmin:
			return fmt.Errorf("%s already belongs to a %s account", email, admin.UserType)
		default:
			// Keep the configured password authoritative in development.
			return tx.Model(&admin).Updates(map[string]any{
				"password":       string(hashedPassword),
				"account_status": models.AccountActive,
			}).Error
		}
	})
	if err != nil {
		return err
	}

	log.Printf("development admin bootstrap ensured (%s)", email)
	return nil
}
