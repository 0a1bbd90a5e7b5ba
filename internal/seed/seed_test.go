package seed

import (
	"context"
	"testing"
	"unicode/utf8"

	"empleos/internal/models"
	"empleos/internal/testutil"
	"empleos/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadPreset_BuiltIn(t *testing.T) {
	opts, err := LoadPreset("reports")
	require.NoError(t, err)
	assert.Equal(t, 40, opts.Companies)
	assert.Equal(t, 365, opts.MaxDays)
	assert.True(t, opts.SkipBcrypt)

	_, err = LoadPreset("does-not-exist")
	assert.Error(t, err)
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, opts Options)
	}{
		{
			name: "omitted keys keep defaults",
			yaml: "companies: 2\n",
			check: func(t *testing.T, opts Options) {
				assert.Equal(t, 2, opts.Companies)
				assert.Equal(t, DefaultOptions().Seekers, opts.Seekers)
			},
		},
		{name: "unknown key", yaml: "posts: 10\n", wantErr: true},
		{name: "negative count", yaml: "seekers: -1\n", wantErr: true},
		{name: "wrong type", yaml: "companies: many\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parsePreset([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func smallOptions() Options {
	return Options{
		Companies:             5,
		JobsPerCompany:        7,
		Seekers:               4,
		OMILs:                 2,
		ApplicationsPerSeeker: 2,
		SavedPerSeeker:        1,
		MaxDays:               30,
		Seed:                  42,
		SkipBcrypt:            true,
	}
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	sum, err := NewSeeder(db, smallOptions()).Run(ctx)
	require.NoError(t, err)

	// Companies cycle active, active, active, pending, rejected; each active
	// company gets one job in every status of the cycle.
	assert.Equal(t, 5, sum.Companies)
	assert.Equal(t, 21, sum.Jobs)
	assert.Equal(t, 2, sum.OMILs)
	assert.Equal(t, 4, sum.Seekers)
	assert.Equal(t, 8, sum.Applications)
	assert.Equal(t, 4, sum.SavedJobs)
	assert.Equal(t, 21, sum.AuditLogs)

	count := func(model any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, sum.Jobs, count(&models.Job{}))
	assert.EqualValues(t, sum.Applications, count(&models.Application{}))
	assert.EqualValues(t, sum.SavedJobs, count(&models.SavedJob{}))
	assert.EqualValues(t, sum.AuditLogs, count(&models.AuditLog{}))
	assert.EqualValues(t, len(models.DefaultSettings()), count(&models.SystemSetting{}))

	var companies []models.Company
	require.NoError(t, db.Find(&companies).Error)
	for _, c := range companies {
		assert.NoError(t, validation.ValidateRUT(c.RUT), c.RUT)
		switch c.Status {
		case models.StatusActive:
			assert.NotNil(t, c.ApprovedAt)
			assert.NotNil(t, c.ApprovedBy)
			assert.Nil(t, c.RejectionReason)
		case models.StatusRejected:
			require.NotNil(t, c.RejectionReason)
			assert.GreaterOrEqual(t, utf8.RuneCountInString(*c.RejectionReason), 10)
			assert.Nil(t, c.ApprovedAt)
		case models.StatusPendingApproval:
			assert.Nil(t, c.ReviewedAt)
		}
	}

	var seeker models.User
	require.NoError(t, db.Where("user_type = ?", models.UserTypeJobSeeker).First(&seeker).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(seeker.Password), []byte(DemoPassword)))
	assert.Equal(t, models.AccountActive, seeker.AccountStatus)

	// Applications only target active jobs.
	var stray int64
	require.NoError(t, db.Model(&models.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.status <> ?", models.StatusActive).
		Count(&stray).Error)
	assert.Zero(t, stray)
}

func TestSeeder_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewDB(t)
	opts := smallOptions()
	opts.DryRun = true

	sum, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Companies)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestSeeder_ClearAllKeepsSettings(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	s := NewSeeder(db, smallOptions())

	_, err := s.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(ctx))

	var users, logs, settings int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&logs).Error)
	require.NoError(t, db.Model(&models.SystemSetting{}).Count(&settings).Error)
	assert.Zero(t, users)
	assert.Zero(t, logs)
	assert.EqualValues(t, len(models.DefaultSettings()), settings)
}

func TestFactory_RUTsAreValidAndUnique(t *testing.T) {
	f, err := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true}, 7)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		rut := f.RUT(76_000_000, 76_000_400)
		require.NoError(t, validation.ValidateRUT(rut))
		require.False(t, seen[rut], "duplicate %s", rut)
		seen[rut] = true
	}
}
