package service

import (
	"context"
	"fmt"
	"time"

	"empleos/internal/models"
	"empleos/internal/notifications"
	"empleos/internal/repository"
)

const maxCoverLetterLength = 5000

// ApplicationView is an application with the job's company summary.
type ApplicationView struct {
	models.Application
	Job *models.JobView `json:"job,omitempty"`
}

// ApplicationService handles job applications for seekers and companies.
type ApplicationService struct {
	apps      repository.ApplicationRepository
	jobs      repository.JobRepository
	companies repository.CompanyRepository
	settings  *SettingsService
	notifier  *notifications.Notifier
	now       func() time.Time
}

// NewApplicationService returns an ApplicationService. notifier may be nil.
func NewApplicationService(
	apps repository.ApplicationRepository,
	jobs repository.JobRepository,
	companies repository.CompanyRepository,
	settings *SettingsService,
	notifier *notifications.Notifier,
) *ApplicationService {
	return &ApplicationService{
		apps:      apps,
		jobs:      jobs,
		companies: companies,
		settings:  settings,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Apply records seekerID's application to an active job.
func (s *ApplicationService) Apply(ctx context.Context, seekerID, jobID uint, coverLetter string) (*models.Application, error) {
	if len([]rune(coverLetter)) > maxCoverLetterLength {
		return nil, models.NewValidationError(fmt.Sprintf("cover_letter must be at most %d characters", maxCoverLetterLength))
	}
	job, err := s.jobs.GetActive(ctx, jobID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if job.Deadline != nil && job.Deadline.Before(now) {
		return nil, models.NewValidationError("Job is no longer accepting applications")
	}

	if limit := s.settings.Int(ctx, models.SettingMaxApplicationsPerDay, 20); limit > 0 {
		n, err := s.apps.CountSince(ctx, seekerID, now.Add(-24*time.Hour))
		if err != nil {
			return nil, err
		}
		if n >= int64(limit) {
			return nil, models.NewValidationError("Daily application limit reached")
		}
	}

	app := &models.Application{
		JobID:       job.ID,
		JobSeekerID: seekerID,
		Status:      models.ApplicationPending,
		CoverLetter: coverLetter,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	if job.Company != nil {
		notifyUser(ctx, s.notifier, job.Company.UserID, notifications.Event{
			Type:       notifications.EventNewApplication,
			EntityType: models.EntityJob,
			EntityID:   job.ID,
			Status:     string(models.ApplicationPending),
			Message:    "Nueva postulación a " + job.Title,
		})
	}
	return app, nil
}

// ListMine lists the applications of seekerID, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, seekerID uint, limit, offset int) (models.Page[ApplicationView], error) {
	apps, total, err := s.apps.ListBySeeker(ctx, seekerID, limit, offset)
	if err != nil {
		return models.Page[ApplicationView]{}, err
	}
	views := make([]ApplicationView, len(apps))
	for i, app := range apps {
		views[i] = ApplicationView{Application: app}
		if app.Job != nil {
			jv := app.Job.View()
			views[i].Job = &jv
		}
	}
	return models.NewPage(views, total), nil
}

// ListApplicants lists applications to jobs of the company owned by userID.
func (s *ApplicationService) ListApplicants(ctx context.Context, userID uint, filter models.ApplicantFilter) (models.Page[models.Application], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return models.Page[models.Application]{}, models.NewValidationError(fmt.Sprintf("invalid status %q", filter.Status))
	}
	company, err := s.companies.GetByUserID(ctx, userID)
	if err != nil {
		return models.Page[models.Application]{}, err
	}
	filter.CompanyID = company.ID
	apps, total, err := s.apps.ListForCompany(ctx, filter)
	if err != nil {
		return models.Page[models.Application]{}, err
	}
	return models.NewPage(apps, total), nil
}

// UpdateStatus moves an applicant through the hiring pipeline and notifies
// the job seeker.
func (s *ApplicationService) UpdateStatus(ctx context.Context, userID, appID uint, status models.ApplicationStatus, notes *string) (*models.Application, error) {
	if !status.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}
	company, err := s.companies.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	app, err := s.apps.GetForCompany(ctx, company.ID, appID)
	if err != nil {
		return nil, err
	}
	if err := s.apps.UpdateStatus(ctx, app.ID, status, notes); err != nil {
		return nil, err
	}
	app.Status = status
	if notes != nil {
		app.CompanyNotes = *notes
	}

	title := ""
	if app.Job != nil {
		title = app.Job.Title
	}
	notifyUser(ctx, s.notifier, app.JobSeekerID, notifications.Event{
		Type:       notifications.EventApplicationStatus,
		EntityType: models.EntityJob,
		EntityID:   app.JobID,
		Status:     string(status),
		Message:    fmt.Sprintf("Tu postulación a %s cambió a %s", title, status),
	})
	return app, nil
}
