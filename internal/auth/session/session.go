// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package session implements server-side session records for authenticated
subjects.

A session binds an opaque, unguessable token to a subject (end-user or
moderator) with a fixed 30-day expiry. Tokens are persisted as SHA-256
hashes; the raw token exists only in the client's cookie or header.

Lifecycle:

	Created → Valid (repeatable) → {Expired | Revoked | SubjectInvalidated} → Deleted

All terminal transitions converge on row deletion; there is no suspended
intermediate state. Expiry is evaluated by timestamp comparison at read time —
no background sweep exists, and none is needed for correctness.
*/
package session

import (
	"time"

	"github.com/handraise/handraise/internal/platform/sec"
)

// # Session Constraints

const (
	// TTL is the fixed session lifetime: expiresAt = createdAt + TTL.
	// Long-lived (30 days) to provide a good user experience.
	TTL = 30 * 24 * time.Hour
)

// # Domain Entities

// Session represents an active authenticated session row.
type Session struct {
	ID string `json:"id"`

	// SubjectID identifies the owning subject. For user sessions this is the
	// user ID; for moderator sessions it is the moderator ID.
	SubjectID string `json:"subject_id"`

	// SubjectKind discriminates which resolver validates the subject.
	SubjectKind sec.SubjectKind `json:"subject_kind"`

	// TokenHash is the SHA-256 digest of the opaque token. Omitted for security.
	TokenHash string `json:"-"`

	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// Expired reports whether the session's validity window has closed at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
