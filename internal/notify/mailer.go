// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package notify implements best-effort transactional email delivery.

Email is deliberately decoupled from the request that triggers it: the
triggering transaction enqueues a row into a persistent outbox, and a
background dispatcher delivers queued messages with its own retry policy.
This makes the "issuance succeeds even when the mail provider is down"
trade-off explicit and testable instead of an inline fire-and-forget call.

Architecture:

  - Mailer: The delivery boundary (SMTP in production, log-only in dev).
  - Outbox: Persistent queue of pending messages.
  - Dispatcher: Background worker polling the outbox with backoff and
    bounded attempts.
*/
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer is the transactional email delivery boundary.
type Mailer interface {
	// Send delivers a single plain-text message.
	Send(ctx context.Context, recipient, subject, body string) error
}

// # SMTP Backend

// SMTPMailer delivers mail through a standard SMTP relay with PLAIN auth.
type SMTPMailer struct {
	addr     string
	from     string
	username string
	password string
	host     string
}

// NewSMTPMailer constructs an [SMTPMailer].
//
// # Parameters
//   - host, port: The SMTP relay endpoint.
//   - username, password: PLAIN auth credentials (password typically comes
//     from the secrets provider, not the environment).
//   - from: The envelope and header From address.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		addr:     fmt.Sprintf("%s:%d", host, port),
		from:     from,
		username: username,
		password: password,
		host:     host,
	}
}

// Send implements [Mailer].
func (mailer *SMTPMailer) Send(_ context.Context, recipient, subject, body string) error {
	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		mailer.from, recipient, subject, body,
	)

	var auth smtp.Auth
	if mailer.username != "" {
		auth = smtp.PlainAuth("", mailer.username, mailer.password, mailer.host)
	}

	if err := smtp.SendMail(mailer.addr, auth, mailer.from, []string{recipient}, []byte(message)); err != nil {
		return fmt.Errorf("notify: smtp send failed: %w", err)
	}

	return nil
}

// # Development Backend

// LogMailer writes messages to the structured log instead of delivering them.
// This is the default backend when no SMTP host is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send implements [Mailer].
func (mailer *LogMailer) Send(ctx context.Context, recipient, subject, body string) error {
	mailer.logger.InfoContext(ctx, "mail_logged_instead_of_sent",
		slog.String("recipient", recipient),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)),
	)
	return nil
}
