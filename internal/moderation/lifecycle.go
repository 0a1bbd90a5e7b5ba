// Package moderation holds the status lifecycle rules for companies, OMIL
// organizations, job postings and user accounts. It performs no I/O: callers
// load the entity, ask whether a transition is allowed, then persist.
package moderation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"empleos/internal/models"
)

// MinRejectionReasonLength is the minimum number of characters, after
// trimming, that a rejection reason must contain.
const MinRejectionReasonLength = 10

// Entity names a moderated resource kind.
type Entity string

const (
	Company Entity = "company"
	Job     Entity = "job"
	OMIL    Entity = "omil"
	User    Entity = "user"
)

// Label is the human-readable name used in error messages.
func (e Entity) Label() string {
	switch e {
	case Company:
		return "Company"
	case Job:
		return "Job"
	case OMIL:
		return "OMIL organization"
	case User:
		return "User"
	}
	return string(e)
}

// Verb is an admin decision recorded in the audit log.
type Verb string

const (
	Approve     Verb = "approve"
	Reject      Verb = "reject"
	Suspend     Verb = "suspend"
	Activate    Verb = "activate"
	Impersonate Verb = "impersonate"
)

// ActionType builds the audit action name, e.g. approve_company.
func ActionType(verb Verb, entity Entity) string {
	return string(verb) + "_" + string(entity)
}

// ActionUpdateSettings is the audit action for settings changes.
const ActionUpdateSettings = "update_settings"

// CanApprove checks that an entity in status may be approved.
func CanApprove(entity Entity, status models.ModerationStatus) error {
	if status != models.StatusPendingApproval {
		return notPending(entity)
	}
	return nil
}

// CanReject checks the pending precondition first, then the reason.
// It returns the trimmed reason to persist.
func CanReject(entity Entity, status models.ModerationStatus, reason string) (string, error) {
	if status != models.StatusPendingApproval {
		return "", notPending(entity)
	}
	return ValidateRejectionReason(reason)
}

// ValidateRejectionReason trims reason and enforces the minimum length.
func ValidateRejectionReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if utf8.RuneCountInString(trimmed) < MinRejectionReasonLength {
		return "", models.NewValidationError(
			fmt.Sprintf("Rejection reason must be at least %d characters", MinRejectionReasonLength))
	}
	return trimmed, nil
}

// CanSubmitJob checks that a job may move to pending_approval. Rejected jobs
// may be resubmitted after editing.
func CanSubmitJob(status models.ModerationStatus) error {
	switch status {
	case models.StatusDraft, models.StatusRejected:
		return nil
	case models.StatusPendingApproval:
		return models.NewInvalidTransitionError("Job is already pending approval")
	}
	return models.NewInvalidTransitionError(fmt.Sprintf("Job cannot be submitted from status %s", status))
}

// CanCloseJob checks that a job may be closed.
func CanCloseJob(status models.ModerationStatus) error {
	if status != models.StatusActive {
		return models.NewInvalidTransitionError("Only active jobs can be closed")
	}
	return nil
}

// CanEditJob checks that a company may edit a job's content.
func CanEditJob(status models.ModerationStatus) error {
	switch status {
	case models.StatusDraft, models.StatusRejected:
		return nil
	}
	return models.NewInvalidTransitionError(fmt.Sprintf("Job cannot be edited while %s", status))
}

// CanDeleteJob checks that a job may be deleted. Only drafts are removable.
func CanDeleteJob(status models.ModerationStatus) error {
	if status != models.StatusDraft {
		return models.NewInvalidTransitionError("Only draft jobs can be deleted")
	}
	return nil
}

// NextUserStatus resolves an admin suspend/activate on an account.
// closed is terminal.
func NextUserStatus(current models.AccountStatus, verb Verb) (models.AccountStatus, error) {
	if current == models.AccountClosed {
		return "", models.NewInvalidTransitionError("Closed accounts cannot change status")
	}
	switch verb {
	case Suspend:
		if current == models.AccountSuspended {
			return "", models.NewInvalidTransitionError("User is already suspended")
		}
		return models.AccountSuspended, nil
	case Activate:
		if current == models.AccountActive {
			return "", models.NewInvalidTransitionError("User is already active")
		}
		return models.AccountActive, nil
	}
	return "", models.NewValidationError(fmt.Sprintf("unsupported user action %q", verb))
}

// VerbForAccountStatus maps a requested target status to the admin verb.
func VerbForAccountStatus(target models.AccountStatus) (Verb, error) {
	switch target {
	case models.AccountSuspended:
		return Suspend, nil
	case models.AccountActive:
		return Activate, nil
	}
	return "", models.NewValidationError("status must be active or suspended")
}

func notPending(entity Entity) error {
	return models.NewInvalidTransitionError(entity.Label() + " is not pending approval")
}
