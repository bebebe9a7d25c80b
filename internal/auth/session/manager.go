// Copyright (c) 2026 Handraise. All rights reserved.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/sec"
	"github.com/handraise/handraise/pkg/uuid"
)

// # Contracts & Types

// SubjectResolver re-validates a subject's standing on every request.
//
// # Contract
//
// ResolveSubject returns a populated principal while the subject remains in
// good standing (user not banned/deleted; moderator active with a healthy
// underlying user). Any error means the subject is no longer valid and the
// presenting session must die — resolvers should return [apperr.Unauthorized]
// or [apperr.Forbidden] for standing failures.
type SubjectResolver interface {
	ResolveSubject(ctx context.Context, subjectID string) (*sec.Principal, error)
}

// Manager owns session issuance, validation, and revocation for every
// subject kind. Both transport modes (cookie and bearer/header) funnel into
// the same store lookup here.
//
// # Concurrency
//
// Register must complete during startup wiring; after that the Manager is
// safe for concurrent use (the resolver map is read-only).
type Manager struct {
	store     Store
	resolvers map[sec.SubjectKind]SubjectResolver
	logger    *slog.Logger
}

// NewManager constructs a session [Manager] with its storage dependency.
func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		resolvers: make(map[sec.SubjectKind]SubjectResolver),
		logger:    logger,
	}
}

// Register installs the resolver for one subject kind. Called once per kind
// during startup wiring, before the server accepts traffic.
func (manager *Manager) Register(kind sec.SubjectKind, resolver SubjectResolver) {
	manager.resolvers[kind] = resolver
}

// # Issuance

/*
Issue creates a session for an authenticated subject and returns the raw token.

Description: Generates an unguessable opaque token, persists its hash with a
fixed 30-day expiry, and hands the raw token back exactly once for cookie or
header propagation. No per-subject session limit is enforced; a subject may
hold unlimited concurrent sessions.

Parameters:
  - context: context.Context
  - kind: sec.SubjectKind
  - subjectID: string

Returns:
  - string: The raw opaque token
  - *Session: The persisted session row
  - error: Token generation or storage failures
*/
func (manager *Manager) Issue(context context.Context, kind sec.SubjectKind, subjectID string) (string, *Session, error) {
	token, err := sec.GenerateSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("session_manager_token_generation_failed: %w", err)
	}

	now := time.Now()
	session := &Session{
		ID:             uuid.New(),
		SubjectID:      subjectID,
		SubjectKind:    kind,
		TokenHash:      sec.HashToken(token),
		ExpiresAt:      now.Add(TTL),
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	if err := manager.store.Create(context, session); err != nil {
		return "", nil, fmt.Errorf("session_manager_create_failed: %w", err)
	}

	return token, session, nil
}

// # Validation

/*
VerifySession resolves a raw token to a live principal.

Description: Looks up the session by token hash, enforces expiry by timestamp
comparison, then re-validates the owning subject through its registered
resolver. A subject that turned invalid since issuance (banned, deleted,
deactivated) causes the session row to be deleted as a side effect — lazy
revocation, no background sweep. On success the last_accessed_at stamp is
refreshed best-effort.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *sec.Principal: The resolved subject, with session metadata attached
  - error: apperr.Unauthorized for every validation failure
*/
func (manager *Manager) VerifySession(context context.Context, token string) (*sec.Principal, error) {
	record, err := manager.store.FindByTokenHash(context, sec.HashToken(token))
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	// Expiry is evaluated at read time; the dead row is reaped on sight.
	if record.Expired(time.Now()) {
		if deleteErr := manager.store.Delete(context, record.ID); deleteErr != nil {
			manager.logger.Warn("session_expired_delete_failed",
				slog.String("session_id", record.ID),
				slog.Any("error", deleteErr),
			)
		}
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	resolver, ok := manager.resolvers[record.SubjectKind]
	if !ok {
		return nil, apperr.Internal(fmt.Errorf("session_manager_no_resolver_for_kind: %s", record.SubjectKind))
	}

	principal, err := resolver.ResolveSubject(context, record.SubjectID)
	if err != nil {
		// Subject invalidated between issuance and now: revoke lazily.
		if deleteErr := manager.store.Delete(context, record.ID); deleteErr != nil {
			manager.logger.Warn("session_invalidated_delete_failed",
				slog.String("session_id", record.ID),
				slog.Any("error", deleteErr),
			)
		}
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	// Best-effort access stamp; a lost update has no correctness impact.
	if err := manager.store.TouchLastAccessed(context, record.ID, time.Now()); err != nil {
		manager.logger.Warn("session_touch_failed",
			slog.String("session_id", record.ID),
			slog.Any("error", err),
		)
	}

	principal.SessionID = record.ID
	principal.Kind = record.SubjectKind
	return principal, nil
}

// # Revocation

/*
Logout deletes the session behind the presented token.

Description: Idempotent — an already-deleted or unknown token is treated as a
successful logout. Only the presented token is affected; the subject's other
sessions keep working.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (manager *Manager) Logout(context context.Context, token string) error {
	record, err := manager.store.FindByTokenHash(context, sec.HashToken(token))
	if err != nil {
		return nil
	}

	if err := manager.store.Delete(context, record.ID); err != nil {
		return fmt.Errorf("session_manager_logout_failed: %w", err)
	}

	return nil
}

/*
DeleteModeratorSessions removes every session belonging to one moderator.

Description: Moderator-wide revocation, used when the moderator account is
deactivated or its underlying user is banned or deleted. Sessions of other
moderators and all user-kind sessions are untouched.

Parameters:
  - context: context.Context
  - moderatorID: string

Returns:
  - error: Batch deletion failures
*/
func (manager *Manager) DeleteModeratorSessions(context context.Context, moderatorID string) error {
	if err := manager.store.DeleteBySubject(context, sec.SubjectModerator, moderatorID); err != nil {
		return fmt.Errorf("session_manager_delete_moderator_sessions_failed: %w", err)
	}
	return nil
}

/*
DeleteUserSessions removes every user-kind session belonging to one user.

Description: Used when a user is banned or soft-deleted.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch deletion failures
*/
func (manager *Manager) DeleteUserSessions(context context.Context, userID string) error {
	if err := manager.store.DeleteBySubject(context, sec.SubjectUser, userID); err != nil {
		return fmt.Errorf("session_manager_delete_user_sessions_failed: %w", err)
	}
	return nil
}
