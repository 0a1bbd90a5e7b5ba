package repository

import (
	"context"
	"time"

	"empleos/internal/models"

	"gorm.io/gorm"
)

// Condition is one equality filter applied by StatsRepository.
type Condition struct {
	Column string
	Value  interface{}
}

// StatsRepository runs the aggregate queries behind reports and dashboards.
// model selects the table, e.g. &models.Job{}.
type StatsRepository interface {
	Count(ctx context.Context, model interface{}, conds ...Condition) (int64, error)
	CountSince(ctx context.Context, model interface{}, since time.Time) (int64, error)
	CountBy(ctx context.Context, model interface{}, column string) (map[string]int64, error)
	CreatedPerBucket(ctx context.Context, model interface{}, groupBy models.GroupBy, from, to time.Time) (map[time.Time]int64, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a gorm-backed StatsRepository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Count(ctx context.Context, model interface{}, conds ...Condition) (int64, error) {
	q := r.db.WithContext(ctx).Model(model)
	for _, c := range conds {
		q = q.Where(map[string]interface{}{c.Column: c.Value})
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *statsRepository) CountSince(ctx context.Context, model interface{}, since time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("created_at >= ?", since).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// CountBy groups rows by column. column must be a trusted identifier.
func (r *statsRepository) CountBy(ctx context.Context, model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Value string
		Count int64
	}
	err := r.db.WithContext(ctx).Model(model).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Count
	}
	return counts, nil
}

// CreatedPerBucket counts rows created in [from, to) per bucket start.
// Postgres groups with date_trunc; other dialects bucket the creation
// times in Go.
func (r *statsRepository) CreatedPerBucket(ctx context.Context, model interface{}, groupBy models.GroupBy, from, to time.Time) (map[time.Time]int64, error) {
	if !groupBy.Valid() {
		return nil, models.NewValidationError("unknown bucket size " + string(groupBy))
	}
	q := r.db.WithContext(ctx).Model(model).Where("created_at >= ? AND created_at < ?", from, to)
	counts := make(map[time.Time]int64)

	if r.db.Dialector.Name() == "postgres" {
		var rows []struct {
			Bucket time.Time
			Count  int64
		}
		// groupBy is one of the validated unit names.
		err := q.Select("date_trunc('" + string(groupBy) + "', created_at AT TIME ZONE 'UTC') AS bucket, COUNT(*) AS count").
			Group("bucket").
			Scan(&rows).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, row := range rows {
			counts[groupBy.Truncate(row.Bucket)] += row.Count
		}
		return counts, nil
	}

	var times []time.Time
	if err := q.Pluck("created_at", &times).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, t := range times {
		counts[groupBy.Truncate(t)]++
	}
	return counts, nil
}
