// Copyright (c) 2026 Handraise. All rights reserved.

// Package sec provides security primitives for the authentication core.
//
// # Architecture
//
// This package isolates security-sensitive code (OTP code generation and
// hashing, opaque session tokens) from the domain logic. It is injected into
// the Application layer by the auth services and never touches storage itself.
package sec

// # Subject Kinds

// SubjectKind discriminates the authenticated principal behind a session.
type SubjectKind string

const (
	// SubjectUser is an end-user (volunteer or organization owner).
	SubjectUser SubjectKind = "user"

	// SubjectModerator is a privileged subject tied to an underlying user record.
	SubjectModerator SubjectKind = "moderator"
)

// Valid reports whether the kind is one of the known subject kinds.
func (k SubjectKind) Valid() bool {
	return k == SubjectUser || k == SubjectModerator
}

// # Principal

// Principal is the resolved identity attached to the request context after
// successful session validation.
//
// # Why a resolved snapshot?
//
// Session validation already re-reads the subject row on every request to
// enforce lazy revocation (ban/delete/deactivate). The middleware therefore
// carries the fresh subject state downstream instead of making handlers
// query it again.
type Principal struct {
	// SessionID identifies the session row that authorized this request.
	SessionID string

	// Kind tells whether this principal is an end-user or a moderator session.
	Kind SubjectKind

	// UserID is always set: for moderator sessions it is the underlying user.
	UserID string

	// ModeratorID is set only when Kind is [SubjectModerator].
	ModeratorID string

	// Email is the subject's normalized email address.
	Email string

	// DisplayName is the subject's public display name.
	DisplayName string
}

// IsModerator reports whether the principal was authenticated through the
// moderator session flow.
func (p *Principal) IsModerator() bool {
	return p != nil && p.Kind == SubjectModerator
}
