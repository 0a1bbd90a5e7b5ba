// Package observability provides logging, metrics, and tracing helpers
// shared by the repository and service layers.
package observability

import (
	"context"
	"log/slog"
)

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	table string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

func (l *RepoLogger) attrs(operation string, fields map[string]any) []any {
	attrs := []any{
		slog.String("table", l.table),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// LogWrite logs a successful create, update or delete at debug level.
func (l *RepoLogger) LogWrite(ctx context.Context, operation string, fields map[string]any) {
	slog.Default().DebugContext(ctx, "repository "+operation, l.attrs(operation, fields)...)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	attrs := append(l.attrs(operation, nil), slog.String("error", err.Error()))
	slog.Default().ErrorContext(ctx, "repository error", attrs...)
}

// LogAsyncError logs a failure in a fire-and-forget side effect, such as an
// e-mail or a realtime notification, that must not fail the caller.
func LogAsyncError(ctx context.Context, operation string, err error, fields map[string]any) {
	attrs := []any{slog.String("operation", operation), slog.String("error", err.Error())}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	slog.Default().WarnContext(ctx, "async operation failed", attrs...)
}
