// Copyright (c) 2026 Handraise. All rights reserved.

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOutboxStore implements OutboxStore using pgx.
type PostgresOutboxStore struct {
	pool *pgxpool.Pool
}

// NewPostgresOutboxStore creates a new PostgreSQL implementation of OutboxStore.
func NewPostgresOutboxStore(pool *pgxpool.Pool) *PostgresOutboxStore {
	return &PostgresOutboxStore{pool: pool}
}

/*
Enqueue persists a new pending message into the notify.outbox table.

Parameters:
  - context: context.Context
  - email: *Email

Returns:
  - error: Persistence failures
*/
func (store *PostgresOutboxStore) Enqueue(context context.Context, email *Email) error {
	const query = `
		INSERT INTO notify.outbox (
			id, recipient, subject, body, status, attempts, next_attempt_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if email.CreatedAt.IsZero() {
		email.CreatedAt = now
	}
	if email.NextAttemptAt.IsZero() {
		email.NextAttemptAt = now
	}
	if email.Status == "" {
		email.Status = StatusPending
	}

	_, err := store.pool.Exec(context, query,
		email.ID,
		email.Recipient,
		email.Subject,
		email.Body,
		email.Status,
		email.Attempts,
		email.NextAttemptAt,
		email.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_outbox_store_enqueue_failed: %w", err)
	}

	return nil
}

/*
ClaimDue returns a batch of due pending messages.

Description: Uses FOR UPDATE SKIP LOCKED so horizontally replicated server
instances never double-deliver a message. The claim pushes next_attempt_at
forward as a lease; a dispatcher crash just makes the message due again.

Parameters:
  - context: context.Context
  - now: time.Time
  - limit: int

Returns:
  - []*Email: Claimed batch
  - error: Retrieval failures
*/
func (store *PostgresOutboxStore) ClaimDue(context context.Context, now time.Time, limit int) ([]*Email, error) {
	const query = `
		UPDATE notify.outbox
		SET next_attempt_at = $1
		WHERE id IN (
			SELECT id FROM notify.outbox
			WHERE status = 'pending' AND next_attempt_at <= $2
			ORDER BY next_attempt_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, recipient, subject, body, status, attempts, next_attempt_at, created_at, sent_at`

	lease := now.Add(BaseBackoff)
	rows, err := store.pool.Query(context, query, lease, now, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_outbox_store_claim_failed: %w", err)
	}
	defer rows.Close()

	var batch []*Email
	for rows.Next() {
		email := &Email{}
		if err := rows.Scan(
			&email.ID,
			&email.Recipient,
			&email.Subject,
			&email.Body,
			&email.Status,
			&email.Attempts,
			&email.NextAttemptAt,
			&email.CreatedAt,
			&email.SentAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_outbox_store_scan_failed: %w", err)
		}
		batch = append(batch, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_outbox_store_rows_failed: %w", err)
	}

	return batch, nil
}

/*
MarkSent stamps a message delivered.

Parameters:
  - context: context.Context
  - emailID: string
  - sentAt: time.Time

Returns:
  - error: Execution errors
*/
func (store *PostgresOutboxStore) MarkSent(context context.Context, emailID string, sentAt time.Time) error {
	const query = "UPDATE notify.outbox SET status = 'sent', sent_at = $2 WHERE id = $1"
	_, err := store.pool.Exec(context, query, emailID, sentAt)
	if err != nil {
		return fmt.Errorf("postgres_outbox_store_mark_sent_failed: %w", err)
	}
	return nil
}

/*
MarkRetry re-queues a message after a failed attempt.

Parameters:
  - context: context.Context
  - emailID: string
  - attempts: int
  - nextAttemptAt: time.Time

Returns:
  - error: Execution errors
*/
func (store *PostgresOutboxStore) MarkRetry(context context.Context, emailID string, attempts int, nextAttemptAt time.Time) error {
	const query = "UPDATE notify.outbox SET attempts = $2, next_attempt_at = $3 WHERE id = $1"
	_, err := store.pool.Exec(context, query, emailID, attempts, nextAttemptAt)
	if err != nil {
		return fmt.Errorf("postgres_outbox_store_mark_retry_failed: %w", err)
	}
	return nil
}

/*
MarkFailed abandons a message permanently.

Parameters:
  - context: context.Context
  - emailID: string

Returns:
  - error: Execution errors
*/
func (store *PostgresOutboxStore) MarkFailed(context context.Context, emailID string) error {
	const query = "UPDATE notify.outbox SET status = 'failed' WHERE id = $1"
	_, err := store.pool.Exec(context, query, emailID)
	if err != nil {
		return fmt.Errorf("postgres_outbox_store_mark_failed_failed: %w", err)
	}
	return nil
}

/*
PurgeSent removes delivered rows older than the cutoff.

Parameters:
  - context: context.Context
  - olderThan: time.Time

Returns:
  - error: Cleanup failures
*/
func (store *PostgresOutboxStore) PurgeSent(context context.Context, olderThan time.Time) error {
	const query = "DELETE FROM notify.outbox WHERE status = 'sent' AND sent_at <= $1"
	_, err := store.pool.Exec(context, query, olderThan)
	if err != nil {
		return fmt.Errorf("postgres_outbox_store_purge_failed: %w", err)
	}
	return nil
}
