package service

import (
	"context"
	"fmt"
	"time"

	"empleos/internal/export"
	"empleos/internal/models"
	"empleos/internal/observability"
	"empleos/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	dateLayout          = "2006-01-02"
	defaultReportWindow = 30
)

// ReportService builds the admin trend reports.
type ReportService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

// NewReportService returns a ReportService.
func NewReportService(stats repository.StatsRepository) *ReportService {
	return &ReportService{stats: stats, now: time.Now}
}

// ReportQuery is the raw query string of a report request.
type ReportQuery struct {
	GroupBy  string
	FromDate string
	ToDate   string
}

// window is a parsed report range. to is exclusive: the day after ToDate.
type window struct {
	groupBy  models.GroupBy
	from, to time.Time
}

func (s *ReportService) parse(q ReportQuery) (window, error) {
	w := window{groupBy: models.GroupBy(q.GroupBy)}
	if w.groupBy == "" {
		w.groupBy = models.GroupByDay
	}
	if !w.groupBy.Valid() {
		return w, models.NewValidationError(fmt.Sprintf("group_by must be day, week or month, got %q", q.GroupBy))
	}

	today := truncateDay(s.now().UTC())
	toDay := today
	if q.ToDate != "" {
		d, err := time.Parse(dateLayout, q.ToDate)
		if err != nil {
			return w, models.NewValidationError("to_date must be a date in YYYY-MM-DD format")
		}
		toDay = d
	}
	fromDay := toDay.AddDate(0, 0, -(defaultReportWindow - 1))
	if q.FromDate != "" {
		d, err := time.Parse(dateLayout, q.FromDate)
		if err != nil {
			return w, models.NewValidationError("from_date must be a date in YYYY-MM-DD format")
		}
		fromDay = d
	}
	if fromDay.After(toDay) {
		return w, models.NewValidationError("from_date must not be after to_date")
	}
	if limit := w.groupBy.MaxBuckets(); w.groupBy.Buckets(fromDay, toDay) > limit {
		return w, models.NewValidationError(fmt.Sprintf("window spans more than %d %ss", limit, w.groupBy))
	}

	w.from = fromDay
	w.to = toDay.AddDate(0, 0, 1)
	return w, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// buildTrend lays counts over contiguous buckets covering w, including
// empty ones.
func buildTrend(counts map[time.Time]int64, w window) []models.TrendPoint {
	last := w.groupBy.Truncate(w.to.AddDate(0, 0, -1))
	trend := []models.TrendPoint{}
	for b := w.groupBy.Truncate(w.from); !b.After(last); b = w.groupBy.Next(b) {
		trend = append(trend, models.TrendPoint{Period: b.Format(dateLayout), Count: counts[b]})
	}
	return trend
}

// Build runs the aggregation for reportType over q.
func (s *ReportService) Build(ctx context.Context, reportType models.ReportType, q ReportQuery) (*models.Report, error) {
	if !reportType.Valid() {
		return nil, models.NewNotFoundMessage(fmt.Sprintf("Unknown report %q", reportType))
	}
	w, err := s.parse(q)
	if err != nil {
		return nil, err
	}

	model, summarize := s.source(reportType)
	counts, err := s.stats.CreatedPerBucket(ctx, model, w.groupBy, w.from, w.to)
	if err != nil {
		return nil, err
	}
	summary, err := summarize(ctx)
	if err != nil {
		return nil, err
	}
	var created int64
	for _, n := range counts {
		created += n
	}
	summary["new_"+string(reportType)] = created

	return &models.Report{
		Type:     reportType,
		GroupBy:  w.groupBy,
		FromDate: w.from.Format(dateLayout),
		ToDate:   w.to.AddDate(0, 0, -1).Format(dateLayout),
		Trend:    buildTrend(counts, w),
		Summary:  summary,
	}, nil
}

// Export builds the report and encodes it as an xlsx workbook.
func (s *ReportService) Export(ctx context.Context, reportType models.ReportType, q ReportQuery) ([]byte, string, error) {
	var (
		data     []byte
		filename string
	)
	err := observability.Traced(ctx, "reports", "export", func(ctx context.Context) error {
		report, err := s.Build(ctx, reportType, q)
		if err != nil {
			return err
		}
		if data, err = export.XLSX(report); err != nil {
			return models.NewInternalError(err)
		}
		filename = export.Filename(report)
		return nil
	}, attribute.String("report.type", string(reportType)))
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}

type summarizer func(ctx context.Context) (map[string]any, error)

func (s *ReportService) source(reportType models.ReportType) (any, summarizer) {
	switch reportType {
	case models.ReportUsers:
		return &models.User{}, s.usersSummary
	case models.ReportCompanies:
		return &models.Company{}, s.moderatedSummary(&models.Company{}, "companies",
			models.StatusPendingApproval, models.StatusActive, models.StatusRejected)
	case models.ReportJobs:
		return &models.Job{}, s.moderatedSummary(&models.Job{}, "jobs",
			models.StatusActive, models.StatusPendingApproval, models.StatusClosed, models.StatusDraft, models.StatusRejected)
	default:
		return &models.Application{}, s.applicationsSummary
	}
}

func (s *ReportService) usersSummary(ctx context.Context) (map[string]any, error) {
	byType, err := s.stats.CountBy(ctx, &models.User{}, "user_type")
	if err != nil {
		return nil, err
	}
	byStatus, err := s.stats.CountBy(ctx, &models.User{}, "account_status")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_users": sum(byType),
		"by_type":     byType,
		"by_status":   byStatus,
	}, nil
}

// moderatedSummary reports total_<noun> and <status>_<noun> for each
// status, e.g. pending_companies.
func (s *ReportService) moderatedSummary(model any, noun string, statuses ...models.ModerationStatus) summarizer {
	return func(ctx context.Context) (map[string]any, error) {
		counts, err := s.stats.CountBy(ctx, model, "status")
		if err != nil {
			return nil, err
		}
		summary := map[string]any{"total_" + noun: sum(counts)}
		for _, st := range statuses {
			summary[statusKey(st)+"_"+noun] = counts[string(st)]
		}
		return summary, nil
	}
}

func statusKey(status models.ModerationStatus) string {
	if status == models.StatusPendingApproval {
		return "pending"
	}
	return string(status)
}

func (s *ReportService) applicationsSummary(ctx context.Context) (map[string]any, error) {
	counts, err := s.stats.CountBy(ctx, &models.Application{}, "status")
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]int64, len(models.ApplicationStatuses))
	for _, st := range models.ApplicationStatuses {
		byStatus[string(st)] = counts[string(st)]
	}
	return map[string]any{
		"total_applications": sum(counts),
		"by_status":          byStatus,
	}, nil
}

func sum(counts map[string]int64) int64 {
	var n int64
	for _, c := range counts {
		n += c
	}
	return n
}
