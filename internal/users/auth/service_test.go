// Copyright (c) 2026 Handraise. All rights reserved.

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handraise/handraise/internal/auth/otp"
	"github.com/handraise/handraise/internal/auth/session"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/sec"
	"github.com/handraise/handraise/internal/users/account"
	"github.com/handraise/handraise/internal/users/auth"
	"github.com/handraise/handraise/pkg/pagination"
)

// # Test Doubles

// fakeAccounts keeps user records in memory.
type fakeAccounts struct {
	users map[string]*account.User
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{users: map[string]*account.User{}}
}

func (repo *fakeAccounts) FindByID(_ context.Context, id string) (*account.User, error) {
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (repo *fakeAccounts) FindByEmail(_ context.Context, email string) (*account.User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeAccounts) Create(_ context.Context, user *account.User) error {
	repo.users[user.ID] = user
	return nil
}

func (repo *fakeAccounts) Update(_ context.Context, user *account.User) error {
	repo.users[user.ID] = user
	return nil
}

func (repo *fakeAccounts) MarkEmailVerified(_ context.Context, id string) error {
	if user, ok := repo.users[id]; ok {
		user.EmailVerified = true
	}
	return nil
}

func (repo *fakeAccounts) SetBanned(_ context.Context, id string, banned bool) error {
	if user, ok := repo.users[id]; ok {
		user.IsBanned = banned
	}
	return nil
}

func (repo *fakeAccounts) SoftDelete(_ context.Context, id string) error {
	if user, ok := repo.users[id]; ok {
		now := time.Now()
		user.DeletedAt = &now
	}
	return nil
}

func (repo *fakeAccounts) List(_ context.Context, _ pagination.Params) ([]*account.User, int, error) {
	users := make([]*account.User, 0, len(repo.users))
	for _, user := range repo.users {
		users = append(users, user)
	}
	return users, len(users), nil
}

// fakeCodes scripts the passcode flow: Issue hands out a fixed code and
// Consume burns it exactly once.
type fakeCodes struct {
	issued map[string]string
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{issued: map[string]string{}}
}

func (codes *fakeCodes) Issue(_ context.Context, identifier string) (string, error) {
	codes.issued[identifier] = "123456"
	return "123456", nil
}

func (codes *fakeCodes) Consume(_ context.Context, identifier, submitted string) error {
	code, ok := codes.issued[identifier]
	if !ok || code != submitted {
		return apperr.ValidationError(otp.GenericInvalidMessage)
	}
	delete(codes.issued, identifier)
	return nil
}

// fakeSessions records issued sessions and logged-out tokens.
type fakeSessions struct {
	issued    []string
	loggedOut []string
	logoutErr error
}

func (sessions *fakeSessions) Issue(_ context.Context, _ sec.SubjectKind, subjectID string) (string, *session.Session, error) {
	sessions.issued = append(sessions.issued, subjectID)
	return "raw-token", &session.Session{
		ID:        "session-1",
		SubjectID: subjectID,
		ExpiresAt: time.Now().Add(session.TTL),
	}, nil
}

func (sessions *fakeSessions) Logout(_ context.Context, token string) error {
	sessions.loggedOut = append(sessions.loggedOut, token)
	return sessions.logoutErr
}

// fakeOrgGate flags specific users as blacklisted-organization owners.
type fakeOrgGate struct {
	blacklistedOwners map[string]bool
}

func (gate *fakeOrgGate) OwnsBlacklistedOrganization(_ context.Context, userID string) (bool, error) {
	return gate.blacklistedOwners[userID], nil
}

// fakeMailer records enqueued codes.
type fakeMailer struct {
	enqueued []string
	fail     bool
}

func (mailer *fakeMailer) EnqueueOtp(_ context.Context, recipient, code string, _ time.Duration) error {
	if mailer.fail {
		return assert.AnError
	}
	mailer.enqueued = append(mailer.enqueued, recipient)
	return nil
}

type testEnv struct {
	service  *auth.Service
	accounts *fakeAccounts
	codes    *fakeCodes
	sessions *fakeSessions
	gate     *fakeOrgGate
	mailer   *fakeMailer
}

func newTestEnv() *testEnv {
	env := &testEnv{
		accounts: newFakeAccounts(),
		codes:    newFakeCodes(),
		sessions: &fakeSessions{},
		gate:     &fakeOrgGate{blacklistedOwners: map[string]bool{}},
		mailer:   &fakeMailer{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = auth.NewService(env.codes, env.accounts, env.sessions, env.gate, env.mailer, logger)
	return env
}

func (env *testEnv) seedUser(id, email string) *account.User {
	user := &account.User{
		ID:            id,
		Email:         email,
		DisplayName:   "Seeded User",
		EmailVerified: true,
	}
	env.accounts.users[id] = user
	return user
}

// # Send

/*
TestService_SendOtp checks issuance and mail enqueue for unknown and known
addresses.
*/
func TestService_SendOtp(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Unknown email: no account check blocks the send.
	require.NoError(t, env.service.SendOtp(ctx, "New@Example.com"))
	assert.Equal(t, []string{"new@example.com"}, env.mailer.enqueued)

	// Known active account works the same way.
	env.seedUser("user-1", "active@example.com")
	require.NoError(t, env.service.SendOtp(ctx, "active@example.com"))
}

/*
TestService_SendOtp_InactiveAccount checks that banned and deleted accounts
are refused before a code is issued.
*/
func TestService_SendOtp_InactiveAccount(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(user *account.User)
	}{
		{"banned", func(user *account.User) { user.IsBanned = true }},
		{"soft_deleted", func(user *account.User) {
			now := time.Now()
			user.DeletedAt = &now
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			user := env.seedUser("user-1", "blocked@example.com")
			tt.mutate(user)

			err := env.service.SendOtp(context.Background(), "blocked@example.com")
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "FORBIDDEN", ae.Code)
			assert.Empty(t, env.mailer.enqueued)
		})
	}
}

/*
TestService_SendOtp_MailFailureIsBestEffort checks that a queue failure does
not surface to the caller.
*/
func TestService_SendOtp_MailFailureIsBestEffort(t *testing.T) {
	env := newTestEnv()
	env.mailer.fail = true

	assert.NoError(t, env.service.SendOtp(context.Background(), "new@example.com"))
}

// # Verify

/*
TestService_VerifyOtp_CreatesAccount checks first-sign-in materialization.
*/
func TestService_VerifyOtp_CreatesAccount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.service.SendOtp(ctx, "jordan.lee@example.com"))

	result, err := env.service.VerifyOtp(ctx, "Jordan.Lee@Example.com", "123456")
	require.NoError(t, err)

	assert.Equal(t, "raw-token", result.Token)
	assert.Equal(t, "jordan.lee@example.com", result.User.Email)
	assert.Equal(t, "jordan.lee", result.User.DisplayName)
	assert.True(t, result.User.EmailVerified)
	assert.Equal(t, []string{result.User.ID}, env.sessions.issued)
}

/*
TestService_VerifyOtp_ExistingAccount checks sign-in and verified stamping for
a known account.
*/
func TestService_VerifyOtp_ExistingAccount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user := env.seedUser("user-1", "returning@example.com")
	user.EmailVerified = false

	require.NoError(t, env.service.SendOtp(ctx, "returning@example.com"))

	result, err := env.service.VerifyOtp(ctx, "returning@example.com", "123456")
	require.NoError(t, err)

	assert.Equal(t, "user-1", result.User.ID)
	assert.True(t, result.User.EmailVerified)
	assert.True(t, env.accounts.users["user-1"].EmailVerified)
}

/*
TestService_VerifyOtp_WrongCode checks that a wrong code never yields a session
and surfaces only the generic message.
*/
func TestService_VerifyOtp_WrongCode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.service.SendOtp(ctx, "new@example.com"))

	_, err := env.service.VerifyOtp(ctx, "new@example.com", "654321")
	require.Error(t, err)
	assert.Equal(t, otp.GenericInvalidMessage, err.Error())
	assert.Empty(t, env.sessions.issued)
}

/*
TestService_VerifyOtp_StandingGates checks refusal of banned accounts and
blacklisted-organization owners at verification time.
*/
func TestService_VerifyOtp_StandingGates(t *testing.T) {
	t.Run("banned_after_send", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		user := env.seedUser("user-1", "volunteer@example.com")

		require.NoError(t, env.service.SendOtp(ctx, "volunteer@example.com"))
		user.IsBanned = true

		_, err := env.service.VerifyOtp(ctx, "volunteer@example.com", "123456")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.Empty(t, env.sessions.issued)
	})

	t.Run("blacklisted_organization_owner", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		env.seedUser("user-1", "owner@example.com")
		env.gate.blacklistedOwners["user-1"] = true

		require.NoError(t, env.service.SendOtp(ctx, "owner@example.com"))

		_, err := env.service.VerifyOtp(ctx, "owner@example.com", "123456")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("pending_organization_owner_can_sign_in", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		env.seedUser("user-1", "owner@example.com")

		require.NoError(t, env.service.SendOtp(ctx, "owner@example.com"))

		_, err := env.service.VerifyOtp(ctx, "owner@example.com", "123456")
		assert.NoError(t, err)
	})
}

// # Subject Resolution

/*
TestService_ResolveSubject checks the lazy-revocation standing checks.
*/
func TestService_ResolveSubject(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(env *testEnv, user *account.User)
		valid  bool
	}{
		{"healthy", func(*testEnv, *account.User) {}, true},
		{"banned", func(_ *testEnv, user *account.User) { user.IsBanned = true }, false},
		{"soft_deleted", func(_ *testEnv, user *account.User) {
			now := time.Now()
			user.DeletedAt = &now
		}, false},
		{"blacklisted_org_owner", func(env *testEnv, user *account.User) {
			env.gate.blacklistedOwners[user.ID] = true
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			user := env.seedUser("user-1", "volunteer@example.com")
			tt.mutate(env, user)

			principal, err := env.service.ResolveSubject(context.Background(), "user-1")

			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, sec.SubjectUser, principal.Kind)
				assert.Equal(t, "user-1", principal.UserID)
				assert.Equal(t, "volunteer@example.com", principal.Email)
			} else {
				require.Error(t, err)
				assert.Equal(t, "Invalid or expired session", apperr.As(err).Message)
			}
		})
	}
}

/*
TestService_ResolveSubject_UnknownUser checks that a vanished account row
invalidates the session.
*/
func TestService_ResolveSubject_UnknownUser(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.ResolveSubject(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}
