package repository

import (
	"context"
	"testing"

	"empleos/internal/models"
	"empleos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRepository_List(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	company := testutil.CreateCompany(t, db, models.StatusActive)
	other := testutil.CreateCompany(t, db, models.StatusActive)

	remote := testutil.CreateJob(t, db, company, models.StatusActive)
	require.NoError(t, db.Model(remote).Updates(map[string]interface{}{
		"title": "Desarrollador Go 100% remoto", "work_mode": models.WorkModeRemote, "region": "Valparaíso",
		"description": "Integraciones para el área Comercial",
	}).Error)
	testutil.CreateJob(t, db, company, models.StatusActive)
	sales := testutil.CreateJob(t, db, other, models.StatusActive)
	require.NoError(t, db.Model(sales).Update("description", "Soporte comercial en terreno").Error)
	testutil.CreateJob(t, db, company, models.StatusDraft)
	testutil.CreateJob(t, db, company, models.StatusPendingApproval)

	tests := []struct {
		name   string
		filter models.JobFilter
		total  int64
	}{
		{"active only", models.JobFilter{Status: models.StatusActive}, 3},
		{"company", models.JobFilter{Status: models.StatusActive, CompanyID: other.ID}, 1},
		{"work mode", models.JobFilter{Status: models.StatusActive, WorkMode: models.WorkModeRemote}, 1},
		{"region", models.JobFilter{Status: models.StatusActive, Region: "Valparaíso"}, 1},
		{"search is case insensitive", models.JobFilter{Status: models.StatusActive, Search: "desarrollador"}, 1},
		{"percent is literal", models.JobFilter{Status: models.StatusActive, Search: "100%"}, 1},
		{"search description", models.JobFilter{Status: models.StatusActive, Search: "comercial"}, 2},
		{"every status", models.JobFilter{CompanyID: company.ID}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Len(t, jobs, int(tt.total))
		})
	}

	jobs, total, err := repo.List(ctx, models.JobFilter{Status: models.StatusActive, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, jobs, 1)
	assert.NotNil(t, jobs[0].Company)
}

func TestJobRepository_GetActive(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, models.StatusActive)

	active := testutil.CreateJob(t, db, company, models.StatusActive)
	draft := testutil.CreateJob(t, db, company, models.StatusDraft)

	job, err := repo.GetActive(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, company.ID, job.Company.ID)

	_, err = repo.GetActive(ctx, draft.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = repo.GetForCompany(ctx, company.ID+100, active.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestJobRepository_DeleteDraftOnly(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, models.StatusActive)

	draft := testutil.CreateJob(t, db, company, models.StatusDraft)
	active := testutil.CreateJob(t, db, company, models.StatusActive)

	require.NoError(t, repo.Delete(ctx, draft))
	err := repo.Delete(ctx, active)
	assert.True(t, models.IsCode(err, models.CodeInvalidTransition))

	counts, err := repo.CountByStatusForCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, map[models.ModerationStatus]int64{models.StatusActive: 1}, counts)
}
