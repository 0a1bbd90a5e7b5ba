package models

import "time"

// ReportType names an aggregate report.
type ReportType string

const (
	ReportUsers        ReportType = "users"
	ReportCompanies    ReportType = "companies"
	ReportJobs         ReportType = "jobs"
	ReportApplications ReportType = "applications"
)

// Valid reports whether t is a known report.
func (t ReportType) Valid() bool {
	switch t {
	case ReportUsers, ReportCompanies, ReportJobs, ReportApplications:
		return true
	}
	return false
}

// GroupBy is the trend bucket size.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// Valid reports whether g is a known bucket size.
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth:
		return true
	}
	return false
}

// MaxBuckets caps the number of trend points one report may span.
func (g GroupBy) MaxBuckets() int {
	switch g {
	case GroupByWeek:
		return 260
	case GroupByMonth:
		return 120
	}
	return 366
}

// Truncate returns the UTC start of the bucket containing t. Weeks start
// on Monday.
func (g GroupBy) Truncate(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case GroupByWeek:
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	case GroupByMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return day
}

// Next returns the start of the bucket after the one starting at t.
func (g GroupBy) Next(t time.Time) time.Time {
	switch g {
	case GroupByWeek:
		return t.AddDate(0, 0, 7)
	case GroupByMonth:
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

// Buckets counts the buckets touched by the days first..last inclusive.
func (g GroupBy) Buckets(first, last time.Time) int {
	a, b := g.Truncate(first), g.Truncate(last)
	switch g {
	case GroupByWeek:
		return int(b.Sub(a).Hours()/24)/7 + 1
	case GroupByMonth:
		return (b.Year()-a.Year())*12 + int(b.Month()-a.Month()) + 1
	}
	return int(b.Sub(a).Hours()/24) + 1
}

// TrendPoint is one bucket of a report trend. Period is the bucket start
// as YYYY-MM-DD.
type TrendPoint struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}

// Report is an aggregate over one entity type within a date window.
// Summary values are counts or maps of counts.
type Report struct {
	Type     ReportType     `json:"type"`
	GroupBy  GroupBy        `json:"group_by"`
	FromDate string         `json:"from_date"`
	ToDate   string         `json:"to_date"`
	Trend    []TrendPoint   `json:"trend"`
	Summary  map[string]any `json:"summary"`
}
