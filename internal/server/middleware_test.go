package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"empleos/internal/auth"
	"empleos/internal/middleware"
	"empleos/internal/models"
	"empleos/internal/repository"
	"empleos/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateJobSeeker(ctx context.Context, user *models.User, profile *models.JobSeekerProfile) error {
	return m.Called(ctx, user, profile).Error(0)
}

func (m *MockUserRepository) CreateCompanyAccount(ctx context.Context, user *models.User, company *models.Company) error {
	return m.Called(ctx, user, company).Error(0)
}

func (m *MockUserRepository) CreateOMILAccount(ctx context.Context, user *models.User, org *models.OMILOrganization) error {
	return m.Called(ctx, user, org).Error(0)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func TestServer_AuthRequired(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, uint(123)).Return(&models.User{
		ID:            123,
		UserType:      models.UserTypeJobSeeker,
		AccountStatus: models.AccountActive,
	}, nil)
	repo.On("GetByID", mock.Anything, uint(124)).Return(&models.User{
		ID:            124,
		UserType:      models.UserTypeCompany,
		AccountStatus: models.AccountSuspended,
	}, nil)
	repo.On("GetByID", mock.Anything, uint(125)).Return(nil, models.NewNotFoundError("User", 125))

	s := &Server{
		userRepo: repo,
		tokens:   auth.NewTokenManager(testSecret, time.Hour, nil),
	}
	app := fiber.New()

	app.Get("/api/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		actor, _ := middleware.ActorFrom(c)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID": c.Locals("userID"),
			"admin":  actor.IsAdmin(),
		})
	})

	generateToken := func(userID uint, typ models.UserType, issuer, audience string, exp time.Duration) string {
		claims := jwt.MapClaims{
			"sub": strconv.FormatUint(uint64(userID), 10),
			"typ": string(typ),
			"iss": issuer,
			"aud": audience,
			"exp": time.Now().Add(exp).Unix(),
			"jti": "test-jti-valid-length",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		str, _ := token.SignedString([]byte(testSecret))
		return str
	}

	tests := []struct {
		name           string
		authHeader     string
		tokenParam     string
		expectedStatus int
	}{
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + generateToken(123, models.UserTypeJobSeeker, auth.Issuer, auth.Audience, time.Hour),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid Token via Query Param",
			tokenParam:     generateToken(123, models.UserTypeJobSeeker, auth.Issuer, auth.Audience, time.Hour),
			expectedStatus: http.StatusOK,
		},
		{
			// The stored role wins, so a forged admin claim grants nothing.
			name:           "Role Claim Ignored",
			authHeader:     "Bearer " + generateToken(123, models.UserTypeAdmin, auth.Issuer, auth.Audience, time.Hour),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + generateToken(123, models.UserTypeJobSeeker, auth.Issuer, auth.Audience, -time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Issuer",
			authHeader:     "Bearer " + generateToken(123, models.UserTypeJobSeeker, "wrong-issuer", auth.Audience, time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Audience",
			authHeader:     "Bearer " + generateToken(123, models.UserTypeJobSeeker, auth.Issuer, "wrong-audience", time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Suspended Account",
			authHeader:     "Bearer " + generateToken(124, models.UserTypeCompany, auth.Issuer, auth.Audience, time.Hour),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Deleted Account",
			authHeader:     "Bearer " + generateToken(125, models.UserTypeJobSeeker, auth.Issuer, auth.Audience, time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Header and Param",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Bearer Format",
			authHeader:     "BearerTokenOnly",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Invalid Subject Type (Mocked Manually)",
			authHeader: "Bearer " + func() string {
				claims := jwt.MapClaims{"sub": 123, "iss": auth.Issuer, "aud": auth.Audience, "exp": time.Now().Add(time.Hour).Unix()}
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
				str, _ := token.SignedString([]byte(testSecret))
				return str
			}(),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/api/protected"
			if tt.tokenParam != "" {
				path += "?token=" + tt.tokenParam
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(123), body["userID"])
				assert.Equal(t, false, body["admin"])
			}
		})
	}
}

func TestRoleRequired(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name     string
		actor    models.UserType
		allowed  []models.UserType
		status   int
		errorMsg string
	}{
		{"admin passes", models.UserTypeAdmin, []models.UserType{models.UserTypeAdmin}, http.StatusOK, ""},
		{"seeker blocked from admin", models.UserTypeJobSeeker, []models.UserType{models.UserTypeAdmin}, http.StatusForbidden, "Admin access required"},
		{"company blocked from seeker", models.UserTypeCompany, []models.UserType{models.UserTypeJobSeeker}, http.StatusForbidden, "Only job seekers can perform this action"},
		{"any of several", models.UserTypeOMIL, []models.UserType{models.UserTypeCompany, models.UserTypeOMIL}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				middleware.SetActor(c, middleware.Actor{UserID: 1, UserType: tt.actor})
				return c.Next()
			})
			app.Get("/x", s.RoleRequired(tt.allowed...), func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"ok": true})
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.errorMsg != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.errorMsg, body["error"])
				assert.Equal(t, models.CodeForbidden, body["code"])
			}
		})
	}
}

func TestMaintenanceGuard(t *testing.T) {
	ts := newTestServer(t, false)
	_, seekerToken := ts.seekerToken(t, "postulante@example.cl")
	_, adminToken := ts.userToken(t, models.UserTypeAdmin, "admin@example.cl")

	resp, body := ts.do(t, http.MethodPut, "/api/admin/settings", adminToken, fiber.Map{
		"settings": fiber.Map{models.SettingMaintenanceMode: true},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	// Reads still pass.
	resp, _ = ts.do(t, http.MethodGet, "/api/me/profile", seekerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, http.MethodPut, "/api/me/profile", seekerToken, fiber.Map{"first_name": "Ana"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "MAINTENANCE", body["code"])

	resp, _ = ts.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "nueva@example.cl", "password": "Secreto123", "first_name": "Nueva", "last_name": "Cuenta",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// The admin role check still answers first for non-admins.
	company := testutil.CreateCompany(t, ts.db, models.StatusPendingApproval)
	for _, path := range []string{
		fmt.Sprintf("/api/admin/companies/%d/approve", company.ID),
		fmt.Sprintf("/api/admin/users/%d/status", company.UserID),
	} {
		resp, body = ts.do(t, http.MethodPatch, path, seekerToken, fiber.Map{"status": "suspended"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
		assert.NotEqual(t, "MAINTENANCE", body["code"], path)
	}

	// Admins keep writing so they can switch it back off.
	resp, _ = ts.do(t, http.MethodPut, "/api/admin/settings", adminToken, fiber.Map{
		"settings": fiber.Map{models.SettingMaintenanceMode: false},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPut, "/api/me/profile", seekerToken, fiber.Map{"first_name": "Ana"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
