// Package mailer is the outbound email side channel for confirmation codes.
// Delivery is best effort: callers fire it from a goroutine and log failures
// instead of surfacing them.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"reviewhub/internal/config"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends plaintext mail through a single SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth: auth,
		from: cfg.EmailFrom,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer is used in development when no SMTP host is configured: the
// message lands in the log instead of a mailbox.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(to, subject, body string) error {
	m.Logger.Info("email delivery skipped (no SMTP host configured)",
		"to", to, "subject", subject, "body", body)
	return nil
}

// New picks the SMTP mailer when a host is configured, the log mailer
// otherwise.
func New(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{Logger: logger}
	}
	return NewSMTPMailer(cfg)
}
