package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	JobKeyPrefix         = "job:%d"
	PublicJobsVersionKey = "jobs:public:version"
	PublicJobsKeyPrefix  = "jobs:public:v%d:%s"
	DashboardStatsKey    = "admin:dashboard:stats"
	SettingsKey          = "settings:all"
)

const (
	JobTTL        = 5 * time.Minute
	ListTTL       = 2 * time.Minute
	DashboardTTL  = 1 * time.Minute
	SettingsTTL   = 10 * time.Minute
	versionKeyTTL = 24 * time.Hour
)

// JobKey is the cache key of a single public job view.
func JobKey(jobID uint) string {
	return fmt.Sprintf(JobKeyPrefix, jobID)
}

// PublicJobsKey builds a list key under the current listing version so a
// single version bump invalidates every cached page.
func PublicJobsKey(ctx context.Context, query string) string {
	var version int64
	if client != nil {
		if v, err := client.Get(ctx, PublicJobsVersionKey).Int64(); err == nil {
			version = v
		}
	}
	return fmt.Sprintf(PublicJobsKeyPrefix, version, query)
}

// InvalidateJob drops the cached job and every cached public listing.
func InvalidateJob(ctx context.Context, jobID uint) {
	Invalidate(ctx, JobKey(jobID))
	InvalidatePublicJobs(ctx)
}

// InvalidatePublicJobs bumps the listing version.
func InvalidatePublicJobs(ctx context.Context) {
	if client == nil {
		return
	}
	pipe := client.TxPipeline()
	pipe.Incr(ctx, PublicJobsVersionKey)
	pipe.Expire(ctx, PublicJobsVersionKey, versionKeyTTL)
	_, _ = pipe.Exec(ctx)
}

// InvalidateDashboard drops cached admin statistics.
func InvalidateDashboard(ctx context.Context) {
	Invalidate(ctx, DashboardStatsKey)
}

// InvalidateSettings drops cached system settings.
func InvalidateSettings(ctx context.Context) {
	Invalidate(ctx, SettingsKey)
}

func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
