// Copyright (c) 2026 Handraise. All rights reserved.

package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handraise/handraise/internal/platform/apperr"
)

// PostgresStore implements the Store interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the code Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
CreateSuperseding persists a new code row and retires prior outstanding codes.

Description: Runs inside a single transaction so a crash can never leave two
verifiable codes for one identifier.

Parameters:
  - context: context.Context
  - code: *Code

Returns:
  - error: Transaction or persistence failures
*/
func (store *PostgresStore) CreateSuperseding(context context.Context, code *Code) error {
	const supersedeQuery = `
		UPDATE users.otp_code
		SET consumed_at = $2
		WHERE identifier = $1 AND consumed_at IS NULL`

	const insertQuery = `
		INSERT INTO users.otp_code (id, identifier, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}

	transaction, err := store.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_otp_store_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	// Retire every outstanding code before the new one becomes visible.
	if _, err := transaction.Exec(context, supersedeQuery, code.Identifier, code.CreatedAt); err != nil {
		return fmt.Errorf("postgres_otp_store_supersede_failed: %w", err)
	}

	if _, err := transaction.Exec(context, insertQuery,
		code.ID,
		code.Identifier,
		code.CodeHash,
		code.ExpiresAt,
		code.CreatedAt,
	); err != nil {
		return fmt.Errorf("postgres_otp_store_insert_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_otp_store_commit_failed: %w", err)
	}

	return nil
}

/*
FindActive returns the newest unconsumed code row for the identifier.

Description: Expired rows are still returned; the service compares timestamps
at read time so that "expired" and "wrong" are indistinguishable to clients.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *Code: Hydrated row
  - error: apperr.NotFound or execution errors
*/
func (store *PostgresStore) FindActive(context context.Context, identifier string) (*Code, error) {
	const query = `
		SELECT id, identifier, code_hash, expires_at, consumed_at, created_at
		FROM users.otp_code
		WHERE identifier = $1 AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	code := &Code{}
	err := store.pool.QueryRow(context, query, identifier).Scan(
		&code.ID,
		&code.Identifier,
		&code.CodeHash,
		&code.ExpiresAt,
		&code.ConsumedAt,
		&code.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("OTP code")
		}
		return nil, fmt.Errorf("postgres_otp_store_find_active_failed: %w", err)
	}

	return code, nil
}

/*
MarkConsumed stamps a code row as used.

Parameters:
  - context: context.Context
  - codeID: string
  - consumedAt: time.Time

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) MarkConsumed(context context.Context, codeID string, consumedAt time.Time) error {
	const query = "UPDATE users.otp_code SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL"

	tag, err := store.pool.Exec(context, query, codeID, consumedAt)
	if err != nil {
		return fmt.Errorf("postgres_otp_store_mark_consumed_failed: %w", err)
	}

	// A concurrent verify may have won the race; the loser must not succeed.
	if tag.RowsAffected() == 0 {
		return apperr.ValidationError(GenericInvalidMessage)
	}

	return nil
}

/*
DeleteExpired removes long-dead code rows.

Parameters:
  - context: context.Context
  - olderThan: time.Time

Returns:
  - error: Cleanup failures
*/
func (store *PostgresStore) DeleteExpired(context context.Context, olderThan time.Time) error {
	const query = "DELETE FROM users.otp_code WHERE expires_at <= $1"
	_, err := store.pool.Exec(context, query, olderThan)
	if err != nil {
		return fmt.Errorf("postgres_otp_store_delete_expired_failed: %w", err)
	}
	return nil
}
