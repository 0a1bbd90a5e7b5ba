package service

import (
	"context"
	"testing"
	"time"

	"empleos/internal/auth"
	"empleos/internal/featureflags"
	"empleos/internal/mailer"
	"empleos/internal/models"
	"empleos/internal/repository"
	"empleos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type adminFixture struct {
	db    *gorm.DB
	svc   *AdminService
	jwt   *auth.TokenManager
	mail  *mailer.LogMailer
	admin *models.User
}

func newAdminFixture(t *testing.T, flags string) *adminFixture {
	t.Helper()
	db := testutil.NewDB(t)
	jwt := auth.NewTokenManager(testSecret, time.Hour*24, nil)
	mail := &mailer.LogMailer{}
	svc := NewAdminService(AdminDeps{
		Users:      repository.NewUserRepository(db),
		Companies:  repository.NewCompanyRepository(db),
		OMILs:      repository.NewOMILRepository(db),
		Profiles:   repository.NewProfileRepository(db),
		Moderation: repository.NewModerationRepository(db),
		Audit:      repository.NewAuditLogRepository(db),
		JWT:        jwt,
		Mailer:     mail,
		Flags:      featureflags.NewManager(flags),
	})
	admin := testutil.CreateUser(t, db, models.UserTypeAdmin, "admin@empleos.cl")
	return &adminFixture{db: db, svc: svc, jwt: jwt, mail: mail, admin: admin}
}

func TestAdminService_SetUserStatus(t *testing.T) {
	t.Parallel()
	f := newAdminFixture(t, "")
	seeker := testutil.CreateUser(t, f.db, models.UserTypeJobSeeker, "seeker@example.cl")
	ctx := context.Background()

	user, err := f.svc.SetUserStatus(ctx, f.admin.ID, seeker.ID, models.AccountSuspended, "Spam reiterado", "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, models.AccountSuspended, user.AccountStatus)
	assert.Equal(t, "Spam reiterado", user.SuspensionReason)
	assert.NotNil(t, user.SuspendedAt)

	_, err = f.svc.SetUserStatus(ctx, f.admin.ID, seeker.ID, models.AccountSuspended, "", "")
	assertCode(t, err, models.CodeInvalidTransition)

	user, err = f.svc.SetUserStatus(ctx, f.admin.ID, seeker.ID, models.AccountActive, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.AccountActive, user.AccountStatus)
	assert.Empty(t, user.SuspensionReason)
	assert.Nil(t, user.SuspendedAt)

	page, err := f.svc.ListAuditLogs(ctx, models.AuditFilter{EntityType: models.EntityUser})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	assert.Equal(t, "activate_user", page.Data[0].ActionType)
	assert.Equal(t, "suspend_user", page.Data[1].ActionType)
	require.NotNil(t, page.Data[0].Admin)
	assert.Equal(t, f.admin.Email, page.Data[0].Admin.Email)

	require.Len(t, f.mail.Sent, 2)
	assert.Equal(t, mailer.TemplateAccountStatus, f.mail.Sent[0].Template)
}

func TestAdminService_SetUserStatusRefusals(t *testing.T) {
	t.Parallel()
	f := newAdminFixture(t, "")
	other := testutil.CreateUser(t, f.db, models.UserTypeAdmin, "otro-admin@empleos.cl")
	closed := testutil.CreateUser(t, f.db, models.UserTypeJobSeeker, "closed@example.cl")
	require.NoError(t, f.db.Model(closed).Update("account_status", models.AccountClosed).Error)
	ctx := context.Background()

	tests := []struct {
		name   string
		target uint
		status models.AccountStatus
		code   string
	}{
		{"self", f.admin.ID, models.AccountSuspended, models.CodeForbidden},
		{"other admin", other.ID, models.AccountSuspended, models.CodeForbidden},
		{"closed is terminal", closed.ID, models.AccountActive, models.CodeInvalidTransition},
		{"unsupported status", closed.ID, models.AccountClosed, models.CodeValidation},
		{"missing user", 9999, models.AccountSuspended, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SetUserStatus(ctx, f.admin.ID, tt.target, tt.status, "", "")
			assertCode(t, err, tt.code)
		})
	}

	page, err := f.svc.ListAuditLogs(ctx, models.AuditFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestAdminService_Impersonate(t *testing.T) {
	t.Parallel()
	f := newAdminFixture(t, "")
	seeker := testutil.CreateUser(t, f.db, models.UserTypeJobSeeker, "target@example.cl")
	ctx := context.Background()

	res, err := f.svc.Impersonate(ctx, f.admin.ID, seeker.ID, "")
	require.NoError(t, err)
	assert.Equal(t, seeker.ID, res.User.ID)
	assert.WithinDuration(t, time.Now().Add(auth.ImpersonationTTL), res.ExpiresAt, time.Minute)

	claims, err := f.jwt.Parse(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, claims.ImpersonatorID)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, seeker.ID, id)

	page, err := f.svc.ListAuditLogs(ctx, models.AuditFilter{ActionType: "impersonate_user"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, seeker.ID, page.Data[0].EntityID)

	_, err = f.svc.Impersonate(ctx, f.admin.ID, f.admin.ID, "")
	assertCode(t, err, models.CodeForbidden)
	other := testutil.CreateUser(t, f.db, models.UserTypeAdmin, "otro@empleos.cl")
	_, err = f.svc.Impersonate(ctx, f.admin.ID, other.ID, "")
	assertCode(t, err, models.CodeForbidden)
}

func TestAdminService_ImpersonationFlagOff(t *testing.T) {
	t.Parallel()
	f := newAdminFixture(t, "admin_impersonation=off")
	seeker := testutil.CreateUser(t, f.db, models.UserTypeJobSeeker, "target@example.cl")

	_, err := f.svc.Impersonate(context.Background(), f.admin.ID, seeker.ID, "")
	assertCode(t, err, models.CodeForbidden)
}

func TestAdminService_GetUserAndList(t *testing.T) {
	t.Parallel()
	f := newAdminFixture(t, "")
	company := testutil.CreateCompany(t, f.db, models.StatusPendingApproval)
	ctx := context.Background()

	detail, err := f.svc.GetUser(ctx, company.UserID)
	require.NoError(t, err)
	require.NotNil(t, detail.Company)
	assert.Equal(t, company.ID, detail.Company.ID)
	assert.Nil(t, detail.Profile)

	_, err = f.svc.GetUser(ctx, 9999)
	assertCode(t, err, models.CodeNotFound)

	page, err := f.svc.ListUsers(ctx, repository.UserFilter{UserType: models.UserTypeCompany})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = f.svc.ListUsers(ctx, repository.UserFilter{UserType: "robot"})
	assertCode(t, err, models.CodeValidation)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = f.svc.ListAuditLogs(ctx, models.AuditFilter{From: &from, To: &to})
	assertCode(t, err, models.CodeValidation)
}
