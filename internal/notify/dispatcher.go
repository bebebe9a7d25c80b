// Copyright (c) 2026 Handraise. All rights reserved.

package notify

import (
	"context"
	"log/slog"
	"time"
)

// # Dispatcher Tuning

const (
	// PollInterval is how often the dispatcher checks the outbox for due
	// messages when no work was found on the previous pass.
	PollInterval = 10 * time.Second

	// ClaimBatchSize caps how many messages a single pass delivers.
	ClaimBatchSize = 25

	// SentRetention is how long delivered rows survive before the cleanup
	// pass removes them.
	SentRetention = 1 * time.Hour
)

// Sweeper removes rows another subsystem no longer needs. The dispatcher runs
// every registered sweeper during its cleanup phase, so expired OTP codes and
// sessions are reaped on the same cadence as delivered outbox rows.
type Sweeper func(ctx context.Context) error

// Dispatcher is the background worker draining the outbox.
type Dispatcher struct {
	store    OutboxStore
	mailer   Mailer
	logger   *slog.Logger
	sweepers []Sweeper
}

// NewDispatcher constructs a [Dispatcher].
func NewDispatcher(store OutboxStore, mailer Mailer, logger *slog.Logger, sweepers ...Sweeper) *Dispatcher {
	return &Dispatcher{
		store:    store,
		mailer:   mailer,
		logger:   logger,
		sweepers: sweepers,
	}
}

/*
Run polls the outbox until the context is cancelled.

Description: Each tick claims a batch of due messages, attempts delivery,
and records the outcome per message. Delivery failures push the message's
next attempt out with exponential backoff until MaxAttempts, after which
the message is abandoned. A cleanup pass purges old sent rows so OTP codes
do not linger in the database, then runs the registered sweepers.

Parameters:
  - ctx: context.Context controlling the worker's lifetime

Returns: nothing; Run only exits when ctx is done.
*/
func (dispatcher *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	dispatcher.logger.Info("outbox_dispatcher_started",
		slog.Duration("poll_interval", PollInterval),
		slog.Int("batch_size", ClaimBatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			dispatcher.logger.Info("outbox_dispatcher_stopped")
			return
		case <-ticker.C:
			dispatcher.pass(ctx)
		}
	}
}

// pass delivers one claimed batch and runs cleanup.
func (dispatcher *Dispatcher) pass(ctx context.Context) {
	now := time.Now()

	batch, err := dispatcher.store.ClaimDue(ctx, now, ClaimBatchSize)
	if err != nil {
		dispatcher.logger.Error("outbox_claim_failed", slog.Any("error", err))
		return
	}

	for _, email := range batch {
		dispatcher.deliver(ctx, email)
	}

	if err := dispatcher.store.PurgeSent(ctx, now.Add(-SentRetention)); err != nil {
		dispatcher.logger.Warn("outbox_purge_failed", slog.Any("error", err))
	}

	// One sweeper failing must not starve the others.
	for _, sweep := range dispatcher.sweepers {
		if err := sweep(ctx); err != nil {
			dispatcher.logger.Warn("cleanup_sweep_failed", slog.Any("error", err))
		}
	}
}

// deliver attempts one message and records the outcome.
func (dispatcher *Dispatcher) deliver(ctx context.Context, email *Email) {
	err := dispatcher.mailer.Send(ctx, email.Recipient, email.Subject, email.Body)
	if err == nil {
		if markErr := dispatcher.store.MarkSent(ctx, email.ID, time.Now()); markErr != nil {
			dispatcher.logger.Error("outbox_mark_sent_failed",
				slog.String("email_id", email.ID),
				slog.Any("error", markErr),
			)
		}
		return
	}

	attempts := email.Attempts + 1

	if attempts >= MaxAttempts {
		dispatcher.logger.Error("outbox_delivery_abandoned",
			slog.String("email_id", email.ID),
			slog.String("recipient", email.Recipient),
			slog.Int("attempts", attempts),
			slog.Any("error", err),
		)
		if markErr := dispatcher.store.MarkFailed(ctx, email.ID); markErr != nil {
			dispatcher.logger.Error("outbox_mark_failed_failed",
				slog.String("email_id", email.ID),
				slog.Any("error", markErr),
			)
		}
		return
	}

	nextAttemptAt := time.Now().Add(Backoff(attempts))
	dispatcher.logger.Warn("outbox_delivery_retry_scheduled",
		slog.String("email_id", email.ID),
		slog.Int("attempts", attempts),
		slog.Time("next_attempt_at", nextAttemptAt),
		slog.Any("error", err),
	)

	if markErr := dispatcher.store.MarkRetry(ctx, email.ID, attempts, nextAttemptAt); markErr != nil {
		dispatcher.logger.Error("outbox_mark_retry_failed",
			slog.String("email_id", email.ID),
			slog.Any("error", markErr),
		)
	}
}
