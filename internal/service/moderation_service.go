package service

import (
	"context"
	"fmt"
	"time"

	"empleos/internal/cache"
	"empleos/internal/featureflags"
	"empleos/internal/mailer"
	"empleos/internal/models"
	"empleos/internal/moderation"
	"empleos/internal/notifications"
	"empleos/internal/observability"
	"empleos/internal/repository"
)

// ModerationService approves and rejects companies, jobs and OMIL
// organizations and serves the admin review queues.
type ModerationService struct {
	repo      repository.ModerationRepository
	companies repository.CompanyRepository
	jobs      repository.JobRepository
	omils     repository.OMILRepository
	users     repository.UserRepository
	notifier  *notifications.Notifier
	mail      mailer.Mailer
	flags     *featureflags.Manager
	now       func() time.Time
}

// ModerationDeps groups the collaborators of ModerationService.
type ModerationDeps struct {
	Repo      repository.ModerationRepository
	Companies repository.CompanyRepository
	Jobs      repository.JobRepository
	OMILs     repository.OMILRepository
	Users     repository.UserRepository
	Notifier  *notifications.Notifier
	Mailer    mailer.Mailer
	Flags     *featureflags.Manager
}

// NewModerationService returns a ModerationService.
func NewModerationService(deps ModerationDeps) *ModerationService {
	return &ModerationService{
		repo:      deps.Repo,
		companies: deps.Companies,
		jobs:      deps.Jobs,
		omils:     deps.OMILs,
		users:     deps.Users,
		notifier:  deps.Notifier,
		mail:      deps.Mailer,
		flags:     deps.Flags,
		now:       time.Now,
	}
}

func moderatedEntity(entity moderation.Entity) error {
	switch entity {
	case moderation.Company, moderation.Job, moderation.OMIL:
		return nil
	}
	return models.NewValidationError(fmt.Sprintf("%s cannot be moderated", entity))
}

// Approve moves a pending entity to active. notes are kept on OMIL
// organizations and recorded in the audit entry.
func (s *ModerationService) Approve(ctx context.Context, adminID uint, entity moderation.Entity, id uint, notes, ip string) (models.Moderatable, error) {
	if err := moderatedEntity(entity); err != nil {
		return nil, err
	}
	result, err := s.repo.Transition(ctx, entity, id, func(m models.Moderatable) (*models.AuditLog, error) {
		previous := m.CurrentStatus()
		if err := moderation.CanApprove(entity, previous); err != nil {
			return nil, err
		}
		m.SetStatus(models.StatusActive)
		m.ReviewRecord().MarkApproved(adminID, s.now().UTC())
		if org, ok := m.(*models.OMILOrganization); ok && notes != "" {
			org.ApprovalNotes = notes
		}
		return &models.AuditLog{
			AdminID:    adminID,
			ActionType: moderation.ActionType(moderation.Approve, entity),
			EntityType: string(entity),
			EntityID:   id,
			Details:    models.MustJSON(map[string]any{"previous_status": previous, "notes": notes}),
			IPAddress:  ip,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterDecision(ctx, entity, result, moderation.Approve, notes)
	return result, nil
}

// Reject moves a pending entity to rejected with a reason of at least
// moderation.MinRejectionReasonLength characters.
func (s *ModerationService) Reject(ctx context.Context, adminID uint, entity moderation.Entity, id uint, reason, ip string) (models.Moderatable, error) {
	if err := moderatedEntity(entity); err != nil {
		return nil, err
	}
	var trimmed string
	result, err := s.repo.Transition(ctx, entity, id, func(m models.Moderatable) (*models.AuditLog, error) {
		previous := m.CurrentStatus()
		var err error
		trimmed, err = moderation.CanReject(entity, previous, reason)
		if err != nil {
			return nil, err
		}
		m.SetStatus(models.StatusRejected)
		m.ReviewRecord().MarkRejected(adminID, trimmed, s.now().UTC())
		return &models.AuditLog{
			AdminID:    adminID,
			ActionType: moderation.ActionType(moderation.Reject, entity),
			EntityType: string(entity),
			EntityID:   id,
			Details:    models.MustJSON(map[string]any{"previous_status": previous, "reason": trimmed}),
			IPAddress:  ip,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterDecision(ctx, entity, result, moderation.Reject, trimmed)
	return result, nil
}

// afterDecision runs the post-commit side effects. None of them can undo
// the decision.
func (s *ModerationService) afterDecision(ctx context.Context, entity moderation.Entity, m models.Moderatable, verb moderation.Verb, text string) {
	observability.RecordTransition(string(entity), string(verb))
	cache.InvalidateDashboard(ctx)

	var (
		ownerID uint
		name    string
		label   string
	)
	switch v := m.(type) {
	case *models.Company:
		ownerID, name, label = v.UserID, v.BusinessName, "empresa"
		cache.InvalidatePublicJobs(ctx)
	case *models.OMILOrganization:
		ownerID, name, label = v.UserID, v.Name, "OMIL"
	case *models.Job:
		cache.InvalidateJob(ctx, v.ID)
		name, label = v.Title, "oferta"
		company, err := s.companies.GetByID(ctx, v.CompanyID)
		if err != nil {
			observability.LogAsyncError(ctx, "moderation.owner_lookup", err, map[string]any{"job_id": v.ID})
			return
		}
		ownerID = company.UserID
	}

	ev := notifications.Event{
		Type:       notifications.EventModerationDecision,
		EntityType: string(entity),
		EntityID:   m.PrimaryID(),
		Status:     string(m.CurrentStatus()),
		Message:    text,
	}
	notifyUser(ctx, s.notifier, ownerID, ev)

	if !s.flags.Enabled(featureflags.ModerationEmails, ownerID) {
		return
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		observability.LogAsyncError(ctx, "moderation.owner_lookup", err, map[string]any{"user_id": ownerID})
		return
	}
	data := mailer.Data{Entity: label, Name: name}
	template := mailer.TemplateModerationApproved
	if verb == moderation.Reject {
		template = mailer.TemplateModerationRejected
		data.Reason = text
	} else {
		data.Notes = text
	}
	deliverMail(ctx, s.mail, template, owner.Email, data)
}

// queueStatus maps the status query parameter: empty means the pending
// queue, "all" disables the filter.
func queueStatus(raw string) (models.ModerationStatus, error) {
	switch raw {
	case "":
		return models.StatusPendingApproval, nil
	case "all":
		return "", nil
	}
	status := models.ModerationStatus(raw)
	switch status {
	case models.StatusDraft, models.StatusPendingApproval, models.StatusActive,
		models.StatusRejected, models.StatusClosed, models.StatusSuspended:
		return status, nil
	}
	return "", models.NewValidationError(fmt.Sprintf("invalid status %q", raw))
}

// ListCompanies returns the company queue for status.
func (s *ModerationService) ListCompanies(ctx context.Context, status string, limit, offset int) (models.Page[models.Company], error) {
	st, err := queueStatus(status)
	if err != nil {
		return models.Page[models.Company]{}, err
	}
	rows, total, err := s.companies.List(ctx, st, limit, offset)
	if err != nil {
		return models.Page[models.Company]{}, err
	}
	return models.NewPage(rows, total), nil
}

// ListOMILs returns the OMIL queue for status.
func (s *ModerationService) ListOMILs(ctx context.Context, status string, limit, offset int) (models.Page[models.OMILOrganization], error) {
	st, err := queueStatus(status)
	if err != nil {
		return models.Page[models.OMILOrganization]{}, err
	}
	rows, total, err := s.omils.List(ctx, st, limit, offset)
	if err != nil {
		return models.Page[models.OMILOrganization]{}, err
	}
	return models.NewPage(rows, total), nil
}

// ListJobs returns the job queue for status with company summaries.
func (s *ModerationService) ListJobs(ctx context.Context, status string, limit, offset int) (models.Page[models.JobView], error) {
	st, err := queueStatus(status)
	if err != nil {
		return models.Page[models.JobView]{}, err
	}
	rows, total, err := s.jobs.List(ctx, models.JobFilter{Status: st, Limit: limit, Offset: offset})
	if err != nil {
		return models.Page[models.JobView]{}, err
	}
	views := make([]models.JobView, len(rows))
	for i, job := range rows {
		views[i] = job.View()
	}
	return models.NewPage(views, total), nil
}
