package models

import "time"

// TokenType distinguishes single-use e-mail tokens.
type TokenType string

const (
	TokenVerifyEmail   TokenType = "verify_email"
	TokenPasswordReset TokenType = "password_reset"
)

// UserToken is a single-use token delivered by e-mail. Only the SHA-256 hash
// of the token is stored.
type UserToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	TokenType TokenType  `gorm:"type:varchar(30);not null" json:"token_type"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usable reports whether the token is unused and unexpired at now.
func (t *UserToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
