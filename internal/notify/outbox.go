// Copyright (c) 2026 Handraise. All rights reserved.

package notify

import (
	"context"
	"time"
)

// # Delivery States

// Status tracks a message through the outbox.
type Status string

const (
	// StatusPending means the message awaits delivery (or a retry).
	StatusPending Status = "pending"

	// StatusSent means the mailer accepted the message.
	StatusSent Status = "sent"

	// StatusFailed means delivery was abandoned after MaxAttempts.
	StatusFailed Status = "failed"
)

// # Dispatch Tuning

const (
	// MaxAttempts bounds delivery retries before a message is abandoned.
	MaxAttempts = 5

	// BaseBackoff is the delay before the first retry; subsequent retries
	// double it (1m, 2m, 4m, 8m).
	BaseBackoff = 1 * time.Minute
)

// # Domain Entities

// Email is a single queued outbox message.
type Email struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`

	// Body is the plain-text message. For OTP mail it contains the code, so
	// rows are purged shortly after sending by the dispatcher's cleanup pass.
	Body string `json:"-"`

	Status        Status     `json:"status"`
	Attempts      int        `json:"attempts"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	CreatedAt     time.Time  `json:"created_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}

// Backoff returns the delay before attempt n (1-indexed) is retried.
func Backoff(attempt int) time.Duration {
	delay := BaseBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// # Outbox Data Access

// OutboxStore defines the persistence contract for queued messages.
type OutboxStore interface {

	/*
		Enqueue persists a new pending message.

		Parameters:
		  - context: context.Context
		  - email: *Email

		Returns:
		  - error: Persistence failures
	*/
	Enqueue(context context.Context, email *Email) error

	/*
		ClaimDue returns up to limit pending messages whose next_attempt_at
		has passed, locking them against concurrent dispatchers.

		Parameters:
		  - context: context.Context
		  - now: time.Time
		  - limit: int

		Returns:
		  - []*Email: Claimed batch (possibly empty)
		  - error: Retrieval failures
	*/
	ClaimDue(context context.Context, now time.Time, limit int) ([]*Email, error)

	/*
		MarkSent stamps a message delivered.

		Parameters:
		  - context: context.Context
		  - emailID: string
		  - sentAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	MarkSent(context context.Context, emailID string, sentAt time.Time) error

	/*
		MarkRetry re-queues a message after a delivery failure, or abandons it
		once attempts reach MaxAttempts.

		Parameters:
		  - context: context.Context
		  - emailID: string
		  - attempts: int
		  - nextAttemptAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	MarkRetry(context context.Context, emailID string, attempts int, nextAttemptAt time.Time) error

	/*
		MarkFailed abandons a message permanently.

		Parameters:
		  - context: context.Context
		  - emailID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkFailed(context context.Context, emailID string) error

	/*
		PurgeSent removes delivered rows older than the cutoff. Sent OTP mail
		contains live-looking codes, so it must not linger.

		Parameters:
		  - context: context.Context
		  - olderThan: time.Time

		Returns:
		  - error: Cleanup failures
	*/
	PurgeSent(context context.Context, olderThan time.Time) error
}
