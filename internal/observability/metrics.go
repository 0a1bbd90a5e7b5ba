package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "empleos_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ModerationTransitions counts successful moderation decisions.
	ModerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "empleos_moderation_transitions_total",
		Help: "Moderation transitions by entity and action",
	}, []string{"entity", "action"})

	// AuditWrites counts audit log rows written, by action type.
	AuditWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "empleos_audit_writes_total",
		Help: "Audit log entries written by action type",
	}, []string{"action_type"})

	// ReportExports counts generated report exports by format.
	ReportExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "empleos_report_exports_total",
		Help: "Report exports generated by format",
	}, []string{"format"})

	// EmailsSent counts outbound e-mails by template and result.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "empleos_emails_sent_total",
		Help: "Outbound e-mails by template and result",
	}, []string{"template", "result"})

	// CacheLookups counts cache-aside lookups by key family and outcome.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "empleos_cache_lookups_total",
		Help: "Cache lookups by key family and outcome",
	}, []string{"family", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordTransition increments the moderation transition counter.
func RecordTransition(entity, action string) {
	ModerationTransitions.WithLabelValues(entity, action).Inc()
}

var (
	// WebSocketConnections is the gauge of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "empleos_websocket_connections",
		Help: "Number of open notification WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "empleos_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
