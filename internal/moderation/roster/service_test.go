// Copyright (c) 2026 Handraise. All rights reserved.

package roster_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handraise/handraise/internal/moderation/roster"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/users/account"
	"github.com/handraise/handraise/pkg/pagination"
)

// # Test Doubles

type fakeStore struct {
	moderators map[string]*roster.Moderator
}

func (store *fakeStore) FindByID(_ context.Context, id string) (*roster.Moderator, error) {
	moderator, ok := store.moderators[id]
	if !ok {
		return nil, apperr.NotFound("Moderator")
	}
	return moderator, nil
}

func (store *fakeStore) FindByUserID(_ context.Context, userID string) (*roster.Moderator, error) {
	for _, moderator := range store.moderators {
		if moderator.UserID == userID {
			return moderator, nil
		}
	}
	return nil, apperr.NotFound("Moderator")
}

func (store *fakeStore) Create(_ context.Context, moderator *roster.Moderator) error {
	for _, existing := range store.moderators {
		if existing.UserID == moderator.UserID {
			return apperr.Conflict("This user is already a moderator")
		}
	}
	store.moderators[moderator.ID] = moderator
	return nil
}

func (store *fakeStore) SetActive(_ context.Context, id string, active bool) error {
	if moderator, ok := store.moderators[id]; ok {
		moderator.IsActive = active
	}
	return nil
}

func (store *fakeStore) List(_ context.Context, _ pagination.Params) ([]*roster.Moderator, int, error) {
	moderators := make([]*roster.Moderator, 0, len(store.moderators))
	for _, moderator := range store.moderators {
		moderators = append(moderators, moderator)
	}
	return moderators, len(moderators), nil
}

type fakeAccounts struct {
	users map[string]*account.User
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
	return nil, 0, nil
}

type fakeRevoker struct {
	revoked []string
}

func (revoker *fakeRevoker) DeleteModeratorSessions(_ context.Context, moderatorID string) error {
	revoker.revoked = append(revoker.revoked, moderatorID)
	return nil
}

type testEnv struct {
	service  *roster.Service
	store    *fakeStore
	accounts *fakeAccounts
	revoker  *fakeRevoker
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    &fakeStore{moderators: map[string]*roster.Moderator{}},
		accounts: &fakeAccounts{users: map[string]*account.User{}},
		revoker:  &fakeRevoker{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = roster.NewService(env.store, env.accounts, env.revoker, logger)
	return env
}

func (env *testEnv) seedUser(id, email string) *account.User {
	user := &account.User{
		ID:            id,
		Email:         email,
		DisplayName:   "Mod Candidate",
		EmailVerified: true,
	}
	env.accounts.users[id] = user
	return user
}

// # Grants

/*
TestService_CreateModerator checks the grant path and its join artifacts.
*/
func TestService_CreateModerator(t *testing.T) {
	env := newTestEnv()
	env.seedUser("user-1", "mod@example.com")

	moderator, err := env.service.CreateModerator(context.Background(), "mod@example.com")
	require.NoError(t, err)

	assert.Equal(t, "user-1", moderator.UserID)
	assert.True(t, moderator.IsActive)
	assert.Equal(t, "mod@example.com", moderator.Email)
	assert.Equal(t, "Mod Candidate", moderator.DisplayName)
}

/*
TestService_CreateModerator_Preconditions checks the target-user gates.
*/
func TestService_CreateModerator_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		seed     func(env *testEnv)
		wantCode string
	}{
		{
			"unknown_email",
			func(*testEnv) {},
			"NOT_FOUND",
		},
		{
			"banned_user",
			func(env *testEnv) {
				user := env.seedUser("user-1", "mod@example.com")
				user.IsBanned = true
			},
			"FORBIDDEN",
		},
		{
			"unverified_email",
			func(env *testEnv) {
				user := env.seedUser("user-1", "mod@example.com")
				user.EmailVerified = false
			},
			"VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			tt.seed(env)

			_, err := env.service.CreateModerator(context.Background(), "mod@example.com")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.As(err).Code)
		})
	}
}

/*
TestService_CreateModerator_Duplicate checks the one-grant-per-user rule.
*/
func TestService_CreateModerator_Duplicate(t *testing.T) {
	env := newTestEnv()
	env.seedUser("user-1", "mod@example.com")
	ctx := context.Background()

	_, err := env.service.CreateModerator(ctx, "mod@example.com")
	require.NoError(t, err)

	_, err = env.service.CreateModerator(ctx, "mod@example.com")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

// # Suspension

/*
TestService_DeactivateModerator checks the flag flip with immediate session
revocation, and that reactivation never resurrects sessions.
*/
func TestService_DeactivateModerator(t *testing.T) {
	env := newTestEnv()
	env.seedUser("user-1", "mod@example.com")
	ctx := context.Background()

	moderator, err := env.service.CreateModerator(ctx, "mod@example.com")
	require.NoError(t, err)

	require.NoError(t, env.service.DeactivateModerator(ctx, moderator.ID))
	assert.False(t, env.store.moderators[moderator.ID].IsActive)
	assert.Equal(t, []string{moderator.ID}, env.revoker.revoked)

	require.NoError(t, env.service.ReactivateModerator(ctx, moderator.ID))
	assert.True(t, env.store.moderators[moderator.ID].IsActive)
	assert.Len(t, env.revoker.revoked, 1, "reactivation must not touch sessions")
}

// # Directory

/*
TestService_ModeratorIDForUser checks the user-to-grant mapping used by the
ban cascade.
*/
func TestService_ModeratorIDForUser(t *testing.T) {
	env := newTestEnv()
	env.seedUser("user-1", "mod@example.com")
	ctx := context.Background()

	moderator, err := env.service.CreateModerator(ctx, "mod@example.com")
	require.NoError(t, err)

	id, err := env.service.ModeratorIDForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, moderator.ID, id)

	_, err = env.service.ModeratorIDForUser(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, apperr.IsAppError(err))
}
