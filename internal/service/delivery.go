package service

import (
	"context"
	"log/slog"

	"empleos/internal/mailer"
	"empleos/internal/notifications"
	"empleos/internal/observability"
)

// deliverMail renders and sends a best-effort e-mail. Failures are logged
// and never reach the caller.
func deliverMail(ctx context.Context, m mailer.Mailer, template, to string, data mailer.Data) {
	if m == nil || to == "" {
		return
	}
	msg, err := mailer.Render(template, to, data)
	if err == nil {
		err = m.Send(ctx, msg)
	}
	if err != nil {
		observability.LogAsyncError(ctx, "mail."+template, err, nil)
		return
	}
	slog.DebugContext(ctx, "mail queued", slog.String("template", template))
}

// notifyUser publishes ev to userID, logging failures.
func notifyUser(ctx context.Context, n *notifications.Notifier, userID uint, ev notifications.Event) {
	if err := n.Notify(ctx, userID, ev); err != nil {
		observability.LogAsyncError(ctx, "notify."+ev.Type, err, map[string]any{"user_id": userID})
	}
}
