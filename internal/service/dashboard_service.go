package service

import (
	"context"
	"time"

	"empleos/internal/cache"
	"empleos/internal/models"
	"empleos/internal/repository"
)

// DashboardService aggregates the admin and company dashboards.
type DashboardService struct {
	stats     repository.StatsRepository
	companies repository.CompanyRepository
	jobs      repository.JobRepository
	apps      repository.ApplicationRepository
	now       func() time.Time
}

// NewDashboardService returns a DashboardService.
func NewDashboardService(
	stats repository.StatsRepository,
	companies repository.CompanyRepository,
	jobs repository.JobRepository,
	apps repository.ApplicationRepository,
) *DashboardService {
	return &DashboardService{stats: stats, companies: companies, jobs: jobs, apps: apps, now: time.Now}
}

// AdminStats is the back-office overview.
type AdminStats struct {
	TotalUsers         int64            `json:"total_users"`
	UsersByType        map[string]int64 `json:"users_by_type"`
	PendingCompanies   int64            `json:"pending_companies"`
	PendingJobs        int64            `json:"pending_jobs"`
	PendingOMILs       int64            `json:"pending_omils"`
	ActiveJobs         int64            `json:"active_jobs"`
	TotalApplications  int64            `json:"total_applications"`
	RecentApplications int64            `json:"applications_last_30_days"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

// AdminStats returns the overview, cached for cache.DashboardTTL.
func (s *DashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	err := cache.Aside(ctx, cache.DashboardStatsKey, &stats, cache.DashboardTTL, func() error {
		return s.loadAdminStats(ctx, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *DashboardService) loadAdminStats(ctx context.Context, out *AdminStats) error {
	byType, err := s.stats.CountBy(ctx, &models.User{}, "user_type")
	if err != nil {
		return err
	}
	out.UsersByType = byType
	out.TotalUsers = sum(byType)

	counts := []struct {
		dst   *int64
		model any
		cond  repository.Condition
	}{
		{&out.PendingCompanies, &models.Company{}, repository.Condition{Column: "status", Value: models.StatusPendingApproval}},
		{&out.PendingJobs, &models.Job{}, repository.Condition{Column: "status", Value: models.StatusPendingApproval}},
		{&out.PendingOMILs, &models.OMILOrganization{}, repository.Condition{Column: "status", Value: models.StatusPendingApproval}},
		{&out.ActiveJobs, &models.Job{}, repository.Condition{Column: "status", Value: models.StatusActive}},
	}
	for _, c := range counts {
		if *c.dst, err = s.stats.Count(ctx, c.model, c.cond); err != nil {
			return err
		}
	}

	if out.TotalApplications, err = s.stats.Count(ctx, &models.Application{}); err != nil {
		return err
	}
	since := s.now().UTC().AddDate(0, 0, -30)
	if out.RecentApplications, err = s.stats.CountSince(ctx, &models.Application{}, since); err != nil {
		return err
	}
	out.GeneratedAt = s.now().UTC()
	return nil
}

// CompanyDashboard is the overview of one company's postings.
type CompanyDashboard struct {
	CompanyStatus        models.ModerationStatus            `json:"company_status"`
	JobsByStatus         map[models.ModerationStatus]int64  `json:"jobs_by_status"`
	TotalApplications    int64                              `json:"total_applications"`
	ApplicationsByStatus map[models.ApplicationStatus]int64 `json:"applications_by_status"`
	RecentApplications   []models.Application               `json:"recent_applications"`
}

const recentApplicationsLimit = 5

// CompanyDashboard returns the overview of the company owned by userID.
func (s *DashboardService) CompanyDashboard(ctx context.Context, userID uint) (*CompanyDashboard, error) {
	company, err := s.companies.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.CountByStatusForCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.apps.CountByStatusForCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.apps.ListForCompany(ctx, models.ApplicantFilter{CompanyID: company.ID, Limit: recentApplicationsLimit})
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.Application{}
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &CompanyDashboard{
		CompanyStatus:        company.Status,
		JobsByStatus:         jobs,
		TotalApplications:    total,
		ApplicationsByStatus: byStatus,
		RecentApplications:   recent,
	}, nil
}
