// Copyright (c) 2026 Handraise. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/sec"
)

// PostgresStore implements the Store interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the session Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Create persists a new session record into the users.session table.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (store *PostgresStore) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, subject_id, subject_kind, token_hash, expires_at, created_at, last_accessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.LastAccessedAt.IsZero() {
		session.LastAccessedAt = session.CreatedAt
	}

	_, err := store.pool.Exec(context, query,
		session.ID,
		session.SubjectID,
		session.SubjectKind,
		session.TokenHash,
		session.ExpiresAt,
		session.CreatedAt,
		session.LastAccessedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_store_create_failed: %w", err)
	}

	return nil
}

/*
FindByTokenHash retrieves a session by its unique token hash.

Description: Expired rows are returned too; the manager evaluates expiry by
timestamp comparison and deletes dead rows on sight.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.NotFound or execution errors
*/
func (store *PostgresStore) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	const query = `
		SELECT id, subject_id, subject_kind, token_hash, expires_at, created_at, last_accessed_at
		FROM users.session
		WHERE token_hash = $1`

	session := &Session{}
	err := store.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.SubjectID,
		&session.SubjectKind,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.LastAccessedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_session_store_find_failed: %w", err)
	}

	return session, nil
}

/*
Delete removes a single session row.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - error: Deletion failures
*/
func (store *PostgresStore) Delete(context context.Context, sessionID string) error {
	const query = "DELETE FROM users.session WHERE id = $1"
	_, err := store.pool.Exec(context, query, sessionID)
	if err != nil {
		return fmt.Errorf("postgres_session_store_delete_failed: %w", err)
	}
	return nil
}

/*
DeleteBySubject removes every session of one subject of the given kind.

Description: Moderator-wide revocation and user bans funnel through here;
sessions of other subjects are untouched.

Parameters:
  - context: context.Context
  - kind: sec.SubjectKind
  - subjectID: string

Returns:
  - error: Batch deletion failures
*/
func (store *PostgresStore) DeleteBySubject(context context.Context, kind sec.SubjectKind, subjectID string) error {
	const query = "DELETE FROM users.session WHERE subject_kind = $1 AND subject_id = $2"
	_, err := store.pool.Exec(context, query, kind, subjectID)
	if err != nil {
		return fmt.Errorf("postgres_session_store_delete_by_subject_failed: %w", err)
	}
	return nil
}

/*
TouchLastAccessed refreshes the last_accessed_at stamp.

Parameters:
  - context: context.Context
  - sessionID: string
  - accessedAt: time.Time

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) TouchLastAccessed(context context.Context, sessionID string, accessedAt time.Time) error {
	const query = "UPDATE users.session SET last_accessed_at = $2 WHERE id = $1"
	_, err := store.pool.Exec(context, query, sessionID, accessedAt)
	if err != nil {
		return fmt.Errorf("postgres_session_store_touch_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all sessions that have passed their expiration.

Description: Cleanup task to reclaim storage from stale sessions.

Parameters:
  - context: context.Context

Returns:
  - error: Cleanup failures
*/
func (store *PostgresStore) DeleteExpired(context context.Context) error {
	const query = "DELETE FROM users.session WHERE expires_at <= NOW()"
	_, err := store.pool.Exec(context, query)
	if err != nil {
		return fmt.Errorf("postgres_session_store_delete_expired_failed: %w", err)
	}
	return nil
}
