package repository

import (
	"context"
	"testing"
	"time"

	"empleos/internal/models"
	"empleos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository_Consume(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.UserTypeJobSeeker, "ana@example.cl")
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &models.UserToken{
		UserID: user.ID, TokenHash: "live", TokenType: models.TokenPasswordReset, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &models.UserToken{
		UserID: user.ID, TokenHash: "stale", TokenType: models.TokenPasswordReset, ExpiresAt: now.Add(-time.Minute),
	}))

	token, err := repo.Consume(ctx, "live", models.TokenPasswordReset, now)
	require.NoError(t, err)
	assert.Equal(t, user.ID, token.UserID)
	assert.NotNil(t, token.UsedAt)

	tests := []struct {
		name      string
		hash      string
		tokenType models.TokenType
	}{
		{"already used", "live", models.TokenPasswordReset},
		{"expired", "stale", models.TokenPasswordReset},
		{"wrong type", "stale", models.TokenVerifyEmail},
		{"unknown", "nope", models.TokenPasswordReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Consume(ctx, tt.hash, tt.tokenType, now)
			assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
		})
	}
}

func TestTokenRepository_DeleteUnused(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.UserTypeJobSeeker, "ana@example.cl")
	expires := time.Now().UTC().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, &models.UserToken{UserID: user.ID, TokenHash: "a", TokenType: models.TokenVerifyEmail, ExpiresAt: expires}))
	require.NoError(t, repo.Create(ctx, &models.UserToken{UserID: user.ID, TokenHash: "b", TokenType: models.TokenPasswordReset, ExpiresAt: expires}))

	require.NoError(t, repo.DeleteUnused(ctx, user.ID, models.TokenVerifyEmail))

	var remaining []models.UserToken
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, models.TokenPasswordReset, remaining[0].TokenType)
}
