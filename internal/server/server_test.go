package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"empleos/internal/config"
	"empleos/internal/mailer"
	"empleos/internal/models"
	"empleos/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "server-test-secret-at-least-32-chars"

type testServer struct {
	s    *Server
	app  *fiber.App
	db   *gorm.DB
	mail *mailer.LogMailer
	mr   *miniredis.Miniredis
}

// newTestServer builds the full route table over an in-memory database.
// withRedis installs miniredis; tests using it must not run in parallel.
func newTestServer(t *testing.T, withRedis bool) *testServer {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:      testSecret,
		JWTTTLHours:    1,
		Env:            "test",
		AllowedOrigins: "http://localhost:3000",
		FrontendURL:    "http://localhost:3000",
	}
	db := testutil.NewDB(t)

	var (
		mr  *miniredis.Miniredis
		rdb *redis.Client
	)
	if withRedis {
		mr, rdb = testutil.NewRedis(t)
	}

	mail := &mailer.LogMailer{}
	s, err := NewServerWithMailer(cfg, db, rdb, mail)
	require.NoError(t, err)

	return &testServer{s: s, app: s.App(), db: db, mail: mail, mr: mr}
}

// tokenFor signs a session token for user.
func (ts *testServer) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := ts.s.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

// userToken creates an active user of userType and returns it with a token.
func (ts *testServer) userToken(t *testing.T, userType models.UserType, email string) (*models.User, string) {
	t.Helper()
	user := testutil.CreateUser(t, ts.db, userType, email)
	return user, ts.tokenFor(t, user)
}

// do sends a request and decodes a JSON response body into a map when
// there is one.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

// seekerToken creates an active job seeker with a profile.
func (ts *testServer) seekerToken(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user, token := ts.userToken(t, models.UserTypeJobSeeker, email)
	require.NoError(t, ts.db.Create(&models.JobSeekerProfile{
		UserID:    user.ID,
		FirstName: "Ana",
		LastName:  "Pérez",
	}).Error)
	return user, token
}

// companyToken creates a company in status and returns its owner's token.
func (ts *testServer) companyToken(t *testing.T, status models.ModerationStatus) (*models.Company, string) {
	t.Helper()
	company := testutil.CreateCompany(t, ts.db, status)
	return company, ts.tokenFor(t, company.User)
}
