// Copyright (c) 2026 Handraise. All rights reserved.

package session

import (
	"context"
	"time"

	"github.com/handraise/handraise/internal/platform/sec"
)

// # Session Data Access

// Store defines the persistence contract for session rows.
type Store interface {

	/*
		Create persists a new session for an authenticated subject.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the session matching the given token hash,
		including expired rows — expiry is the manager's concern.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Delete removes a single session row.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, sessionID string) error

	/*
		DeleteBySubject removes every session belonging to one subject of a
		given kind. Used for moderator-wide revocation and user bans.

		Parameters:
		  - context: context.Context
		  - kind: sec.SubjectKind
		  - subjectID: string

		Returns:
		  - error: Batch deletion failures
	*/
	DeleteBySubject(context context.Context, kind sec.SubjectKind, subjectID string) error

	/*
		TouchLastAccessed refreshes the session's last_accessed_at stamp.
		Best-effort: losing an update has no correctness impact.

		Parameters:
		  - context: context.Context
		  - sessionID: string
		  - accessedAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	TouchLastAccessed(context context.Context, sessionID string, accessedAt time.Time) error

	/*
		DeleteExpired physically removes sessions whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Cleanup failures
	*/
	DeleteExpired(context context.Context) error
}
