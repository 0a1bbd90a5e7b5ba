package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"empleos/internal/cache"
	"empleos/internal/models"
	"empleos/internal/moderation"
	"empleos/internal/repository"
)

// JobService serves the public job board and the company job workflow.
type JobService struct {
	jobs       repository.JobRepository
	companies  repository.CompanyRepository
	moderation repository.ModerationRepository
	settings   *SettingsService
	now        func() time.Time
}

// NewJobService returns a JobService.
func NewJobService(
	jobs repository.JobRepository,
	companies repository.CompanyRepository,
	moderationRepo repository.ModerationRepository,
	settings *SettingsService,
) *JobService {
	return &JobService{
		jobs:       jobs,
		companies:  companies,
		moderation: moderationRepo,
		settings:   settings,
		now:        time.Now,
	}
}

// JobInput is the company-editable content of a posting.
type JobInput struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Requirements string          `json:"requirements"`
	Benefits     string          `json:"benefits"`
	Location     string          `json:"location"`
	Region       string          `json:"region"`
	JobType      models.JobType  `json:"job_type"`
	WorkMode     models.WorkMode `json:"work_mode"`
	SalaryMin    *int64          `json:"salary_min"`
	SalaryMax    *int64          `json:"salary_max"`
	Vacancies    int             `json:"vacancies"`
	Deadline     *time.Time      `json:"deadline"`
	Inclusive    string          `json:"inclusive"`
}

func (in *JobInput) normalize(now time.Time) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		return models.NewValidationError("title and description are required")
	}
	if len([]rune(in.Title)) > 200 {
		return models.NewValidationError("title must be at most 200 characters")
	}
	if in.JobType == "" {
		in.JobType = models.JobTypeFullTime
	}
	if !in.JobType.Valid() {
		return models.NewValidationError(fmt.Sprintf("invalid job_type %q", in.JobType))
	}
	if in.WorkMode == "" {
		in.WorkMode = models.WorkModeOnsite
	}
	if !in.WorkMode.Valid() {
		return models.NewValidationError(fmt.Sprintf("invalid work_mode %q", in.WorkMode))
	}
	if (in.SalaryMin != nil && *in.SalaryMin < 0) || (in.SalaryMax != nil && *in.SalaryMax < 0) {
		return models.NewValidationError("salary must not be negative")
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return models.NewValidationError("salary_min must not exceed salary_max")
	}
	if in.Vacancies == 0 {
		in.Vacancies = 1
	}
	if in.Vacancies < 0 {
		return models.NewValidationError("vacancies must be positive")
	}
	if in.Deadline != nil && in.Deadline.Before(now) {
		return models.NewValidationError("deadline must be in the future")
	}
	return nil
}

func (in *JobInput) apply(job *models.Job) {
	job.Title = in.Title
	job.Description = in.Description
	job.Requirements = in.Requirements
	job.Benefits = in.Benefits
	job.Location = in.Location
	job.Region = in.Region
	job.JobType = in.JobType
	job.WorkMode = in.WorkMode
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax
	job.Vacancies = in.Vacancies
	job.Deadline = in.Deadline
	job.Inclusive = in.Inclusive
}

// ListPublic lists active jobs. A zero limit uses the jobs_per_page setting.
func (s *JobService) ListPublic(ctx context.Context, filter models.JobFilter) (models.Page[models.JobView], error) {
	filter.Status = models.StatusActive
	if filter.Limit <= 0 {
		filter.Limit = s.settings.Int(ctx, models.SettingJobsPerPage, 20)
	}
	query := fmt.Sprintf("q=%s|r=%s|t=%s|m=%s|c=%d|l=%d|o=%d",
		strings.ToLower(strings.TrimSpace(filter.Search)), filter.Region, filter.JobType, filter.WorkMode,
		filter.CompanyID, filter.Limit, filter.Offset)

	var page models.Page[models.JobView]
	err := cache.Aside(ctx, cache.PublicJobsKey(ctx, query), &page, cache.ListTTL, func() error {
		jobs, total, err := s.jobs.List(ctx, filter)
		if err != nil {
			return err
		}
		views := make([]models.JobView, len(jobs))
		for i, job := range jobs {
			views[i] = job.View()
		}
		page = models.NewPage(views, total)
		return nil
	})
	return page, err
}

// GetPublic returns an active job. Other statuses are reported as not found.
func (s *JobService) GetPublic(ctx context.Context, id uint) (*models.JobView, error) {
	var view models.JobView
	err := cache.Aside(ctx, cache.JobKey(id), &view, cache.JobTTL, func() error {
		job, err := s.jobs.GetActive(ctx, id)
		if err != nil {
			return err
		}
		view = job.View()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *JobService) companyOf(ctx context.Context, userID uint) (*models.Company, error) {
	return s.companies.GetByUserID(ctx, userID)
}

// ListForCompany lists the jobs of the company owned by userID, any status.
func (s *JobService) ListForCompany(ctx context.Context, userID uint, status models.ModerationStatus, limit, offset int) (models.Page[models.Job], error) {
	company, err := s.companyOf(ctx, userID)
	if err != nil {
		return models.Page[models.Job]{}, err
	}
	jobs, total, err := s.jobs.List(ctx, models.JobFilter{CompanyID: company.ID, Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return models.Page[models.Job]{}, err
	}
	return models.NewPage(jobs, total), nil
}

// GetForCompany returns a job of the company owned by userID.
func (s *JobService) GetForCompany(ctx context.Context, userID, id uint) (*models.Job, error) {
	company, err := s.companyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.jobs.GetForCompany(ctx, company.ID, id)
}

// Create stores a new draft for the company owned by userID.
func (s *JobService) Create(ctx context.Context, userID uint, in JobInput) (*models.Job, error) {
	company, err := s.companyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if company.Status == models.StatusRejected || company.Status == models.StatusSuspended {
		return nil, models.NewForbiddenError("Company cannot publish jobs")
	}
	if err := in.normalize(s.now()); err != nil {
		return nil, err
	}
	job := &models.Job{CompanyID: company.ID, Status: models.StatusDraft}
	in.apply(job)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Update edits a draft or rejected job. A rejected job returns to draft
// and loses its rejection reason.
func (s *JobService) Update(ctx context.Context, userID, id uint, in JobInput) (*models.Job, error) {
	company, err := s.companyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(s.now()); err != nil {
		return nil, err
	}
	job, err := s.transitionOwned(ctx, company.ID, id, func(job *models.Job) error {
		if err := moderation.CanEditJob(job.Status); err != nil {
			return err
		}
		in.apply(job)
		if job.Status == models.StatusRejected {
			job.Status = models.StatusDraft
			job.RejectionReason = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a draft job.
func (s *JobService) Delete(ctx context.Context, userID, id uint) error {
	job, err := s.GetForCompany(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := moderation.CanDeleteJob(job.Status); err != nil {
		return err
	}
	return s.jobs.Delete(ctx, job)
}

// Submit sends a draft or rejected job to moderation. The company itself
// must already be approved.
func (s *JobService) Submit(ctx context.Context, userID, id uint) (*models.Job, error) {
	company, err := s.companyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if company.Status != models.StatusActive {
		return nil, models.NewForbiddenError("Company must be approved before submitting jobs")
	}
	job, err := s.transitionOwned(ctx, company.ID, id, func(job *models.Job) error {
		if err := moderation.CanSubmitJob(job.Status); err != nil {
			return err
		}
		now := s.now().UTC()
		job.Status = models.StatusPendingApproval
		job.SubmittedAt = &now
		job.RejectionReason = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateDashboard(ctx)
	return job, nil
}

// Close ends an active posting.
func (s *JobService) Close(ctx context.Context, userID, id uint) (*models.Job, error) {
	company, err := s.companyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	job, err := s.transitionOwned(ctx, company.ID, id, func(job *models.Job) error {
		if err := moderation.CanCloseJob(job.Status); err != nil {
			return err
		}
		now := s.now().UTC()
		job.Status = models.StatusClosed
		job.ClosedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateJob(ctx, job.ID)
	cache.InvalidateDashboard(ctx)
	return job, nil
}

// transitionOwned runs fn on the locked job, hiding jobs of other
// companies behind not-found.
func (s *JobService) transitionOwned(ctx context.Context, companyID, id uint, fn func(*models.Job) error) (*models.Job, error) {
	entity, err := s.moderation.Transition(ctx, moderation.Job, id, func(m models.Moderatable) (*models.AuditLog, error) {
		job := m.(*models.Job)
		if job.CompanyID != companyID {
			return nil, models.NewNotFoundError("Job", id)
		}
		return nil, fn(job)
	})
	if err != nil {
		return nil, err
	}
	return entity.(*models.Job), nil
}
