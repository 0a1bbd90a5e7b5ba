package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"empleos/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{"Valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"Lowercase Scheme", "bearer abc", "abc", true},
		{"Missing Header", "", "", false},
		{"Wrong Scheme", "Basic dXNlcjpwYXNz", "", false},
		{"Empty Token", "Bearer   ", "", false},
		{"No Separator", "Bearerabc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				token, ok := BearerToken(c)
				assert.Equal(t, tt.wantOK, ok)
				assert.Equal(t, tt.wantToken, token)
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		})
	}
}

func TestSetActor(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		SetActor(c, Actor{UserID: 7, UserType: models.UserTypeAdmin, ImpersonatorID: 1})

		actor, ok := ActorFrom(c)
		require.True(t, ok)
		assert.True(t, actor.IsAdmin())
		assert.Equal(t, uint(7), c.Locals("userID"))

		fromCtx, ok := ActorFromContext(c.UserContext())
		require.True(t, ok)
		assert.Equal(t, actor, fromCtx)
		assert.Equal(t, uint(7), c.UserContext().Value(UserIDKey))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)
}
