// Copyright (c) 2026 Handraise. All rights reserved.

package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handraise/handraise/internal/auth/session"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/sec"
)

// fakeSessionStore keeps session rows in memory, keyed by token hash.
type fakeSessionStore struct {
	sessions map[string]*session.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*session.Session{}}
}

func (store *fakeSessionStore) Create(_ context.Context, record *session.Session) error {
	store.sessions[record.TokenHash] = record
	return nil
}

func (store *fakeSessionStore) FindByTokenHash(_ context.Context, tokenHash string) (*session.Session, error) {
	record, ok := store.sessions[tokenHash]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	return record, nil
}

func (store *fakeSessionStore) Delete(_ context.Context, sessionID string) error {
	for hash, record := range store.sessions {
		if record.ID == sessionID {
			delete(store.sessions, hash)
		}
	}
	return nil
}

func (store *fakeSessionStore) DeleteBySubject(_ context.Context, kind sec.SubjectKind, subjectID string) error {
	for hash, record := range store.sessions {
		if record.SubjectKind == kind && record.SubjectID == subjectID {
			delete(store.sessions, hash)
		}
	}
	return nil
}

func (store *fakeSessionStore) TouchLastAccessed(_ context.Context, sessionID string, accessedAt time.Time) error {
	for _, record := range store.sessions {
		if record.ID == sessionID {
			record.LastAccessedAt = accessedAt
		}
	}
	return nil
}

func (store *fakeSessionStore) DeleteExpired(_ context.Context) error {
	now := time.Now()
	for hash, record := range store.sessions {
		if record.Expired(now) {
			delete(store.sessions, hash)
		}
	}
	return nil
}

// fakeResolver approves every subject unless its ID is in the denied set.
type fakeResolver struct {
	kind   sec.SubjectKind
	denied map[string]bool
}

func (resolver *fakeResolver) ResolveSubject(_ context.Context, subjectID string) (*sec.Principal, error) {
	if resolver.denied[subjectID] {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}
	return &sec.Principal{
		Kind:   resolver.kind,
		UserID: subjectID,
	}, nil
}

func newTestManager() (*session.Manager, *fakeSessionStore, *fakeResolver, *fakeResolver) {
	store := newFakeSessionStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := session.NewManager(store, logger)

	users := &fakeResolver{kind: sec.SubjectUser, denied: map[string]bool{}}
	moderators := &fakeResolver{kind: sec.SubjectModerator, denied: map[string]bool{}}
	manager.Register(sec.SubjectUser, users)
	manager.Register(sec.SubjectModerator, moderators)

	return manager, store, users, moderators
}

/*
TestManager_IssueAndVerify checks the round trip of issuance and validation.
*/
func TestManager_IssueAndVerify(t *testing.T) {
	manager, store, _, _ := newTestManager()
	ctx := context.Background()

	token, record, err := manager.Issue(ctx, sec.SubjectUser, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Only the hash is at rest.
	assert.NotContains(t, store.sessions, token)
	assert.Contains(t, store.sessions, sec.HashToken(token))
	assert.WithinDuration(t, time.Now().Add(session.TTL), record.ExpiresAt, 2*time.Second)

	principal, err := manager.VerifySession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, sec.SubjectUser, principal.Kind)
	assert.Equal(t, record.ID, principal.SessionID)
}

/*
TestManager_VerifySession_UnknownToken checks rejection of a token with no row.
*/
func TestManager_VerifySession_UnknownToken(t *testing.T) {
	manager, _, _, _ := newTestManager()

	_, err := manager.VerifySession(context.Background(), "no-such-token")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
}

/*
TestManager_VerifySession_Expired checks that an expired session is rejected
and its row reaped on sight.
*/
func TestManager_VerifySession_Expired(t *testing.T) {
	manager, store, _, _ := newTestManager()
	ctx := context.Background()

	token, _, err := manager.Issue(ctx, sec.SubjectUser, "user-1")
	require.NoError(t, err)

	store.sessions[sec.HashToken(token)].ExpiresAt = time.Now().Add(-time.Hour)

	_, err = manager.VerifySession(ctx, token)
	require.Error(t, err)
	assert.Empty(t, store.sessions, "expired row should be deleted on sight")
}

/*
TestManager_VerifySession_SubjectInvalidated checks lazy revocation: a subject
that turns invalid after issuance loses the session row at the next request.
*/
func TestManager_VerifySession_SubjectInvalidated(t *testing.T) {
	manager, store, users, _ := newTestManager()
	ctx := context.Background()

	token, _, err := manager.Issue(ctx, sec.SubjectUser, "user-1")
	require.NoError(t, err)

	users.denied["user-1"] = true

	_, err = manager.VerifySession(ctx, token)
	require.Error(t, err)
	assert.Empty(t, store.sessions, "invalidated subject's row should be deleted")

	// Standing restored, but the session is already gone.
	users.denied["user-1"] = false
	_, err = manager.VerifySession(ctx, token)
	assert.Error(t, err)
}

/*
TestManager_Logout checks single-session revocation and idempotency.
*/
func TestManager_Logout(t *testing.T) {
	manager, _, _, _ := newTestManager()
	ctx := context.Background()

	token, _, err := manager.Issue(ctx, sec.SubjectUser, "user-1")
	require.NoError(t, err)
	other, _, err := manager.Issue(ctx, sec.SubjectUser, "user-1")
	require.NoError(t, err)

	require.NoError(t, manager.Logout(ctx, token))

	_, err = manager.VerifySession(ctx, token)
	assert.Error(t, err)

	// The subject's other session keeps working.
	_, err = manager.VerifySession(ctx, other)
	assert.NoError(t, err)

	// Logging out an already-dead token is a no-op.
	assert.NoError(t, manager.Logout(ctx, token))
}

/*
TestManager_DeleteSubjectSessions checks that batch revocation is scoped to
one subject of one kind.
*/
func TestManager_DeleteSubjectSessions(t *testing.T) {
	manager, _, _, _ := newTestManager()
	ctx := context.Background()

	userToken, _, err := manager.Issue(ctx, sec.SubjectUser, "user-1")
	require.NoError(t, err)
	otherUserToken, _, err := manager.Issue(ctx, sec.SubjectUser, "user-2")
	require.NoError(t, err)
	moderatorToken, _, err := manager.Issue(ctx, sec.SubjectModerator, "mod-1")
	require.NoError(t, err)

	require.NoError(t, manager.DeleteUserSessions(ctx, "user-1"))

	_, err = manager.VerifySession(ctx, userToken)
	assert.Error(t, err)
	_, err = manager.VerifySession(ctx, otherUserToken)
	assert.NoError(t, err)
	_, err = manager.VerifySession(ctx, moderatorToken)
	assert.NoError(t, err)

	require.NoError(t, manager.DeleteModeratorSessions(ctx, "mod-1"))
	_, err = manager.VerifySession(ctx, moderatorToken)
	assert.Error(t, err)
}
