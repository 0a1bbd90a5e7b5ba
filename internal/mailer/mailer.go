// Package mailer sends transactional e-mail over SMTP, or logs it when SMTP
// is not configured.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"

	"empleos/internal/config"
	"empleos/internal/observability"

	mail "github.com/go-mail/mail/v2"
)

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound e-mail. Template labels the metric.
type Message struct {
	To       []string
	Subject  string
	HTML     string
	Template string
}

// New returns an SMTP mailer when SMTP_HOST is set and a logging mailer
// otherwise.
func New(cfg *config.Config) Mailer {
	if cfg == nil || cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer sends through an SMTP relay with mandatory STARTTLS.
type SMTPMailer struct {
	from string
	send func(m ...*mail.Message) error
}

// NewSMTPMailer builds a dialer from cfg.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	d := mail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.SMTPHost,
		InsecureSkipVerify: cfg.SMTPSkipTLSVerify, //nolint:gosec // dev relays only
	}

	from := cfg.SMTPFrom
	if from == "" {
		from = "Empleos Inclusivos <no-reply@empleosinclusivos.cl>"
	}
	return &SMTPMailer{from: from, send: d.DialAndSend}
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	err := s.send(m)
	record(msg.Template, err)
	if err != nil {
		return fmt.Errorf("send %s mail: %w", msg.Template, err)
	}
	slog.Default().InfoContext(ctx, "email sent", slog.String("template", msg.Template), slog.Int("recipients", len(msg.To)))
	return nil
}

// LogMailer writes messages to the log instead of sending them. Sent keeps
// the messages for inspection in tests and local development.
type LogMailer struct {
	mu   sync.Mutex
	Sent []Message
}

func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	l.mu.Lock()
	l.Sent = append(l.Sent, msg)
	l.mu.Unlock()
	record(msg.Template, nil)
	slog.Default().InfoContext(ctx, "email (not sent, SMTP disabled)",
		slog.String("template", msg.Template),
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

func record(template string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.EmailsSent.WithLabelValues(template, result).Inc()
}
