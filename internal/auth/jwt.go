// Package auth issues and verifies API tokens and hashes credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"empleos/internal/models"
	"empleos/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	Issuer   = "empleos-api"
	Audience = "empleos-client"

	// ImpersonationTTL bounds tokens minted by an admin for another user.
	ImpersonationTTL = time.Hour

	blacklistPrefix = "blacklist:"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims is the JWT payload. Subject holds the user id as a decimal string.
type Claims struct {
	UserType       models.UserType `json:"typ"`
	ImpersonatorID uint            `json:"imp,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// TokenManager signs HS256 tokens and tracks revocations in Redis. A nil
// Redis client disables revocation.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	now    func() time.Time
}

// NewTokenManager returns a manager for secret; ttl is the lifetime of
// login tokens.
func NewTokenManager(secret string, ttl time.Duration, rdb *redis.Client) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, redis: rdb, now: time.Now}
}

// TTL is the lifetime of login tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a login token for user.
func (m *TokenManager) Issue(user *models.User) (string, *Claims, error) {
	return m.sign(user, 0, m.ttl)
}

// IssueImpersonation signs a short-lived token for target carrying the
// admin's id in the imp claim.
func (m *TokenManager) IssueImpersonation(target *models.User, adminID uint) (string, *Claims, error) {
	return m.sign(target, adminID, ImpersonationTTL)
}

func (m *TokenManager) sign(user *models.User, impersonator uint, ttl time.Duration) (string, *Claims, error) {
	if len(m.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}
	now := m.now()
	claims := &Claims{
		UserType:       user.UserType,
		ImpersonatorID: impersonator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies signature, issuer, audience and time claims, then checks
// the revocation list.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	revoked, err := m.IsRevoked(ctx, claims.ID)
	if err != nil {
		// Revocation lookups fail open like the rate limiter.
		observability.LogAsyncError(ctx, "auth.revocation_lookup", err, nil)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke blacklists the token id until the token would have expired.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.redis == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(m.now()); remaining > 0 {
			ttl = remaining
		}
	}
	return m.redis.Set(ctx, blacklistPrefix+claims.ID, "1", ttl).Err()
}

// IsRevoked reports whether jti was blacklisted.
func (m *TokenManager) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.redis == nil || jti == "" {
		return false, nil
	}
	n, err := m.redis.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
