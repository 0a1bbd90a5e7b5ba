package moderation

import (
	"strings"
	"testing"

	"empleos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanApprove(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		entity  Entity
		status  models.ModerationStatus
		wantErr string
	}{
		{"pending company", Company, models.StatusPendingApproval, ""},
		{"active company", Company, models.StatusActive, "Company is not pending approval"},
		{"rejected job", Job, models.StatusRejected, "Job is not pending approval"},
		{"draft job", Job, models.StatusDraft, "Job is not pending approval"},
		{"active omil", OMIL, models.StatusActive, "OMIL organization is not pending approval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanApprove(tt.entity, tt.status)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not pending approval")
			assert.Equal(t, tt.wantErr, err.Error())
			assert.True(t, models.IsCode(err, models.CodeInvalidTransition))
		})
	}
}

func TestCanReject(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		status   models.ModerationStatus
		reason   string
		wantCode string
		want     string
	}{
		{"valid reason", models.StatusPendingApproval, "Documentación incompleta", "", "Documentación incompleta"},
		{"trimmed to exactly ten", models.StatusPendingApproval, "  0123456789  ", "", "0123456789"},
		{"five characters", models.StatusPendingApproval, "short", models.CodeValidation, ""},
		{"whitespace padded short", models.StatusPendingApproval, "   abc      ", models.CodeValidation, ""},
		{"multibyte counted as runes", models.StatusPendingApproval, "ñññññññññ", models.CodeValidation, ""},
		{"not pending wins over short reason", models.StatusActive, "x", models.CodeInvalidTransition, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanReject(Company, tt.status, tt.reason)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			assert.True(t, models.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestJobTransitions(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CanSubmitJob(models.StatusDraft))
	assert.NoError(t, CanSubmitJob(models.StatusRejected))
	assert.Error(t, CanSubmitJob(models.StatusPendingApproval))
	assert.Error(t, CanSubmitJob(models.StatusActive))
	assert.Error(t, CanSubmitJob(models.StatusClosed))

	assert.NoError(t, CanCloseJob(models.StatusActive))
	for _, s := range []models.ModerationStatus{models.StatusDraft, models.StatusPendingApproval, models.StatusRejected, models.StatusClosed} {
		assert.Error(t, CanCloseJob(s), string(s))
	}

	assert.NoError(t, CanEditJob(models.StatusDraft))
	assert.NoError(t, CanEditJob(models.StatusRejected))
	assert.Error(t, CanEditJob(models.StatusActive))

	assert.NoError(t, CanDeleteJob(models.StatusDraft))
	assert.Error(t, CanDeleteJob(models.StatusActive))
}

func TestNextUserStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		current models.AccountStatus
		verb    Verb
		want    models.AccountStatus
		wantErr bool
	}{
		{models.AccountActive, Suspend, models.AccountSuspended, false},
		{models.AccountPendingVerification, Suspend, models.AccountSuspended, false},
		{models.AccountSuspended, Suspend, "", true},
		{models.AccountSuspended, Activate, models.AccountActive, false},
		{models.AccountPendingVerification, Activate, models.AccountActive, false},
		{models.AccountActive, Activate, "", true},
		{models.AccountClosed, Activate, "", true},
		{models.AccountClosed, Suspend, "", true},
		{models.AccountActive, Approve, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.current)+"_"+string(tt.verb), func(t *testing.T) {
			got, err := NextUserStatus(tt.current, tt.verb)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "approve_company", ActionType(Approve, Company))
	assert.Equal(t, "reject_job", ActionType(Reject, Job))
	assert.Equal(t, "reject_omil", ActionType(Reject, OMIL))
	assert.Equal(t, "suspend_user", ActionType(Suspend, User))
	assert.True(t, strings.HasPrefix(ActionType(Impersonate, User), "impersonate_"))
}
