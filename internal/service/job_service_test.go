package service

import (
	"context"
	"testing"
	"time"

	"empleos/internal/cache"
	"empleos/internal/models"
	"empleos/internal/repository"
	"empleos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newJobService(db *gorm.DB) *JobService {
	return NewJobService(
		repository.NewJobRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewModerationRepository(db),
		NewSettingsService(repository.NewSettingRepository(db)),
	)
}

func validJobInput() JobInput {
	return JobInput{Title: "Desarrollador backend", Description: "Servicios en Go", Region: "Metropolitana"}
}

func TestJobInput_Normalize(t *testing.T) {
	t.Parallel()
	now := time.Now()
	past := now.Add(-time.Hour)
	low, high := int64(500000), int64(900000)

	in := validJobInput()
	require.NoError(t, in.normalize(now))
	assert.Equal(t, models.JobTypeFullTime, in.JobType)
	assert.Equal(t, models.WorkModeOnsite, in.WorkMode)
	assert.Equal(t, 1, in.Vacancies)

	tests := []struct {
		name   string
		mutate func(*JobInput)
	}{
		{"missing title", func(in *JobInput) { in.Title = " " }},
		{"bad job type", func(in *JobInput) { in.JobType = "freelance" }},
		{"bad work mode", func(in *JobInput) { in.WorkMode = "moon" }},
		{"inverted salary", func(in *JobInput) { in.SalaryMin, in.SalaryMax = &high, &low }},
		{"negative vacancies", func(in *JobInput) { in.Vacancies = -1 }},
		{"past deadline", func(in *JobInput) { in.Deadline = &past }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := validJobInput()
			tt.mutate(&in)
			assertCode(t, in.normalize(now), models.CodeValidation)
		})
	}
}

func TestJobService_CompanyLifecycle(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	svc := newJobService(db)
	company := testutil.CreateCompany(t, db, models.StatusActive)
	ctx := context.Background()

	job, err := svc.Create(ctx, company.UserID, validJobInput())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, job.Status)

	job, err = svc.Submit(ctx, company.UserID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, job.Status)
	require.NotNil(t, job.SubmittedAt)

	_, err = svc.Submit(ctx, company.UserID, job.ID)
	assertCode(t, err, models.CodeInvalidTransition)
	_, err = svc.Update(ctx, company.UserID, job.ID, validJobInput())
	assertCode(t, err, models.CodeInvalidTransition)
	assertCode(t, svc.Delete(ctx, company.UserID, job.ID), models.CodeInvalidTransition)
	_, err = svc.Close(ctx, company.UserID, job.ID)
	assertCode(t, err, models.CodeInvalidTransition)

	require.NoError(t, db.Model(&models.Job{}).Where("id = ?", job.ID).Update("status", models.StatusActive).Error)
	job, err = svc.Close(ctx, company.UserID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, job.Status)
	require.NotNil(t, job.ClosedAt)
}

func TestJobService_UpdateRejectedReturnsToDraft(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	svc := newJobService(db)
	company := testutil.CreateCompany(t, db, models.StatusActive)
	job := testutil.CreateJob(t, db, company, models.StatusRejected)
	reason := "Descripción discriminatoria"
	require.NoError(t, db.Model(&models.Job{}).Where("id = ?", job.ID).Update("rejection_reason", reason).Error)

	in := validJobInput()
	in.Title = "Título corregido"
	updated, err := svc.Update(context.Background(), company.UserID, job.ID, in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, updated.Status)
	assert.Nil(t, updated.RejectionReason)

	var stored models.Job
	require.NoError(t, db.First(&stored, job.ID).Error)
	assert.Equal(t, "Título corregido", stored.Title)
	assert.Nil(t, stored.RejectionReason)
}

func TestJobService_Ownership(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	svc := newJobService(db)
	owner := testutil.CreateCompany(t, db, models.StatusActive)
	other := testutil.CreateCompany(t, db, models.StatusActive)
	job := testutil.CreateJob(t, db, owner, models.StatusDraft)
	ctx := context.Background()

	_, err := svc.GetForCompany(ctx, other.UserID, job.ID)
	assertCode(t, err, models.CodeNotFound)
	_, err = svc.Update(ctx, other.UserID, job.ID, validJobInput())
	assertCode(t, err, models.CodeNotFound)
	_, err = svc.Submit(ctx, other.UserID, job.ID)
	assertCode(t, err, models.CodeNotFound)
	assertCode(t, svc.Delete(ctx, other.UserID, job.ID), models.CodeNotFound)

	require.NoError(t, svc.Delete(ctx, owner.UserID, job.ID))
	_, err = svc.GetForCompany(ctx, owner.UserID, job.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestJobService_SubmitRequiresActiveCompany(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	svc := newJobService(db)
	company := testutil.CreateCompany(t, db, models.StatusPendingApproval)
	ctx := context.Background()

	job, err := svc.Create(ctx, company.UserID, validJobInput())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, company.UserID, job.ID)
	assertCode(t, err, models.CodeForbidden)

	rejected := testutil.CreateCompany(t, db, models.StatusRejected)
	_, err = svc.Create(ctx, rejected.UserID, validJobInput())
	assertCode(t, err, models.CodeForbidden)
}

func TestJobService_PublicListing(t *testing.T) {
	db := testutil.NewDB(t)
	mr, _ := testutil.NewRedis(t)
	svc := newJobService(db)
	company := testutil.CreateCompany(t, db, models.StatusActive)
	active := testutil.CreateJob(t, db, company, models.StatusActive)
	testutil.CreateJob(t, db, company, models.StatusPendingApproval)
	draft := testutil.CreateJob(t, db, company, models.StatusDraft)
	ctx := context.Background()

	page, err := svc.ListPublic(ctx, models.JobFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, active.ID, page.Data[0].ID)
	require.NotNil(t, page.Data[0].Company)
	assert.Equal(t, company.BusinessName, page.Data[0].Company.BusinessName)

	view, err := svc.GetPublic(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.Title, view.Title)
	assert.True(t, mr.Exists(cache.JobKey(active.ID)))

	_, err = svc.GetPublic(ctx, draft.ID)
	assertCode(t, err, models.CodeNotFound)

	// Served from cache until invalidated.
	require.NoError(t, db.Model(&models.Job{}).Where("id = ?", draft.ID).Update("status", models.StatusActive).Error)
	page, err = svc.ListPublic(ctx, models.JobFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	cache.InvalidatePublicJobs(ctx)
	page, err = svc.ListPublic(ctx, models.JobFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	_, err = svc.Close(ctx, company.UserID, active.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.JobKey(active.ID)))
	_, err = svc.GetPublic(ctx, active.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestJobService_PublicPageSizeFromSettings(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	svc := newJobService(db)
	company := testutil.CreateCompany(t, db, models.StatusActive)
	for i := 0; i < 3; i++ {
		testutil.CreateJob(t, db, company, models.StatusActive)
	}
	setSetting(t, db, models.SettingJobsPerPage, 2)

	page, err := svc.ListPublic(context.Background(), models.JobFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 3, page.Total)
}
