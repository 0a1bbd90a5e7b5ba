package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"empleos/internal/auth"
	"empleos/internal/mailer"
	"empleos/internal/models"
	"empleos/internal/repository"
	"empleos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "service-test-secret-at-least-32-chars"

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

var tokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_-]+)`)

// linkToken extracts the opaque token from the last mail sent to to.
func linkToken(t *testing.T, m *mailer.LogMailer, to string) string {
	t.Helper()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if len(m.Sent[i].To) == 1 && m.Sent[i].To[0] == to {
			match := tokenPattern.FindStringSubmatch(m.Sent[i].HTML)
			require.Len(t, match, 2, "no token link in %q", m.Sent[i].HTML)
			return match[1]
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return ""
}

type authFixture struct {
	db   *gorm.DB
	svc  *AuthService
	mail *mailer.LogMailer
	jwt  *auth.TokenManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.NewDB(t)
	mail := &mailer.LogMailer{}
	jwt := auth.NewTokenManager(testSecret, time.Hour, nil)
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewTokenRepository(db),
		NewSettingsService(repository.NewSettingRepository(db)),
		jwt,
		mail,
		"http://localhost:3000/",
	)
	return &authFixture{db: db, svc: svc, mail: mail, jwt: jwt}
}

func setSetting(t *testing.T, db *gorm.DB, key string, value any) {
	t.Helper()
	require.NoError(t, db.Create(&models.SystemSetting{Key: key, Value: models.MustJSON(value)}).Error)
}
