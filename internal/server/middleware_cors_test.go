package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"empleos/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontendOrigin = "http://localhost:3000"

func newCORSApp() *fiber.App {
	srv := &Server{config: &config.Config{AllowedOrigins: frontendOrigin}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.All("/export", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="reporte.xlsx"`)
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func corsRequest(t *testing.T, app *fiber.App, method, origin string, preflight bool) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/export", nil)
	req.Header.Set("Origin", origin)
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", "authorization")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCORS(t *testing.T) {
	app := newCORSApp()

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantExposed bool
	}{
		{"frontend origin", http.MethodGet, frontendOrigin, false, fiber.StatusOK, frontendOrigin, true},
		{"foreign origin", http.MethodGet, "https://evil.example", false, fiber.StatusOK, "", false},
		{"preflight", http.MethodOptions, frontendOrigin, true, fiber.StatusNoContent, frontendOrigin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := corsRequest(t, app, tt.method, tt.origin, tt.preflight)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
			if tt.wantExposed {
				assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "Content-Disposition")
			}
		})
	}
}

func TestCORS_SurvivesGlobalRateLimit(t *testing.T) {
	app := newCORSApp()

	for i := 0; i < 100; i++ {
		resp := corsRequest(t, app, http.MethodGet, frontendOrigin, false)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	limited := corsRequest(t, app, http.MethodGet, frontendOrigin, false)
	assert.Equal(t, fiber.StatusTooManyRequests, limited.StatusCode)
	assert.Equal(t, frontendOrigin, limited.Header.Get("Access-Control-Allow-Origin"))

	// Preflights are never limited.
	preflight := corsRequest(t, app, http.MethodOptions, frontendOrigin, true)
	assert.Equal(t, fiber.StatusNoContent, preflight.StatusCode)
	assert.Contains(t, preflight.Header.Get("Access-Control-Allow-Methods"), http.MethodGet)
}
