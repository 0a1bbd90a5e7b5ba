package repository

import (
	"context"
	"errors"
	"time"

	"empleos/internal/models"

	"gorm.io/gorm"
)

// TokenRepository persists hashed single-use tokens for e-mail
// verification and password reset.
type TokenRepository interface {
	Create(ctx context.Context, token *models.UserToken) error
	Consume(ctx context.Context, hash string, tokenType models.TokenType, now time.Time) (*models.UserToken, error)
	DeleteUnused(ctx context.Context, userID uint, tokenType models.TokenType) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository returns a gorm-backed TokenRepository.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.UserToken) error {
	return internal(r.db.WithContext(ctx).Create(token).Error)
}

// Consume marks the token used and returns it. Unknown, expired or
// already-used tokens yield a validation error.
func (r *tokenRepository) Consume(ctx context.Context, hash string, tokenType models.TokenType, now time.Time) (*models.UserToken, error) {
	var token models.UserToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("token_hash = ? AND token_type = ?", hash, tokenType).First(&token).Error; err != nil {
			return err
		}
		if !token.Usable(now) {
			return errTokenUnusable
		}
		res := tx.Model(&models.UserToken{}).
			Where("id = ? AND used_at IS NULL", token.ID).
			Update("used_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errTokenUnusable
		}
		token.UsedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errTokenUnusable) {
			return nil, models.NewValidationError("Invalid or expired token")
		}
		return nil, models.NewInternalError(err)
	}
	return &token, nil
}

var errTokenUnusable = errors.New("token unusable")

func (r *tokenRepository) DeleteUnused(ctx context.Context, userID uint, tokenType models.TokenType) error {
	return internal(r.db.WithContext(ctx).
		Where("user_id = ? AND token_type = ? AND used_at IS NULL", userID, tokenType).
		Delete(&models.UserToken{}).Error)
}
