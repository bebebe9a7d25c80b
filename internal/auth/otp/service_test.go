// Copyright (c) 2026 Handraise. All rights reserved.

package otp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handraise/handraise/internal/auth/otp"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/sec"
)

// fakeStore keeps code rows in memory, newest first per identifier.
type fakeStore struct {
	codes []*otp.Code
}

func (store *fakeStore) CreateSuperseding(_ context.Context, code *otp.Code) error {
	now := time.Now()
	for _, existing := range store.codes {
		if existing.Identifier == code.Identifier && existing.ConsumedAt == nil {
			consumedAt := now
			existing.ConsumedAt = &consumedAt
		}
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = now
	}
	store.codes = append([]*otp.Code{code}, store.codes...)
	return nil
}

func (store *fakeStore) FindActive(_ context.Context, identifier string) (*otp.Code, error) {
	for _, code := range store.codes {
		if code.Identifier == identifier && code.ConsumedAt == nil {
			return code, nil
		}
	}
	return nil, apperr.NotFound("OTP code")
}

func (store *fakeStore) MarkConsumed(_ context.Context, codeID string, consumedAt time.Time) error {
	for _, code := range store.codes {
		if code.ID == codeID && code.ConsumedAt == nil {
			code.ConsumedAt = &consumedAt
			return nil
		}
	}
	return apperr.ValidationError(otp.GenericInvalidMessage)
}

func (store *fakeStore) DeleteExpired(_ context.Context, olderThan time.Time) error {
	kept := store.codes[:0]
	for _, code := range store.codes {
		if code.ExpiresAt.After(olderThan) {
			kept = append(kept, code)
		}
	}
	store.codes = kept
	return nil
}

// fakeCooldown claims a slot once per identifier unless reset.
type fakeCooldown struct {
	claimed map[string]bool
}

func (cooldown *fakeCooldown) Acquire(_ context.Context, identifier string, _ time.Duration) (bool, error) {
	if cooldown.claimed == nil {
		cooldown.claimed = map[string]bool{}
	}
	if cooldown.claimed[identifier] {
		return false, nil
	}
	cooldown.claimed[identifier] = true
	return true, nil
}

func (cooldown *fakeCooldown) reset() {
	cooldown.claimed = map[string]bool{}
}

func newTestService() (*otp.Service, *fakeStore, *fakeCooldown) {
	store := &fakeStore{}
	cooldown := &fakeCooldown{}
	return otp.NewService(store, cooldown), store, cooldown
}

/*
TestService_Issue checks code shape and at-rest hashing.
*/
func TestService_Issue(t *testing.T) {
	service, store, _ := newTestService()

	plain, err := service.Issue(context.Background(), "volunteer@example.com")
	require.NoError(t, err)

	assert.Len(t, plain, sec.OtpCodeLength)
	for _, digit := range plain {
		assert.True(t, digit >= '0' && digit <= '9')
	}

	require.Len(t, store.codes, 1)
	stored := store.codes[0]
	assert.NotEqual(t, plain, stored.CodeHash)
	assert.True(t, sec.CheckOtpCode(plain, stored.CodeHash))
	assert.WithinDuration(t, time.Now().Add(otp.CodeTTL), stored.ExpiresAt, 2*time.Second)
}

/*
TestService_Issue_Cooldown checks that a second send inside the window is
rejected with a rate-limit error rather than a second email.
*/
func TestService_Issue_Cooldown(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Issue(context.Background(), "volunteer@example.com")
	require.NoError(t, err)

	_, err = service.Issue(context.Background(), "volunteer@example.com")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "RATE_LIMITED", ae.Code)

	// A different identifier is unaffected.
	_, err = service.Issue(context.Background(), "other@example.com")
	assert.NoError(t, err)
}

/*
TestService_Issue_Supersedes checks that issuing a new code invalidates the
previous outstanding one while the new code still verifies.
*/
func TestService_Issue_Supersedes(t *testing.T) {
	service, _, cooldown := newTestService()
	ctx := context.Background()

	first, err := service.Issue(ctx, "volunteer@example.com")
	require.NoError(t, err)

	cooldown.reset()
	second, err := service.Issue(ctx, "volunteer@example.com")
	require.NoError(t, err)

	err = service.Consume(ctx, "volunteer@example.com", first)
	require.Error(t, err)
	assert.Equal(t, otp.GenericInvalidMessage, err.Error())

	assert.NoError(t, service.Consume(ctx, "volunteer@example.com", second))
}

/*
TestService_Consume_SingleUse checks that a verified code cannot be replayed.
*/
func TestService_Consume_SingleUse(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	plain, err := service.Issue(ctx, "volunteer@example.com")
	require.NoError(t, err)

	require.NoError(t, service.Consume(ctx, "volunteer@example.com", plain))

	err = service.Consume(ctx, "volunteer@example.com", plain)
	require.Error(t, err)
	assert.Equal(t, otp.GenericInvalidMessage, err.Error())
}

/*
TestService_Consume_GenericFailure checks that absence, mismatch, and expiry
all surface the identical client message.
*/
func TestService_Consume_GenericFailure(t *testing.T) {
	service, store, _ := newTestService()
	ctx := context.Background()

	collect := func(identifier, submitted string) string {
		err := service.Consume(ctx, identifier, submitted)
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		return ae.Message
	}

	// No code at all.
	noCode := collect("nobody@example.com", "123456")

	// Wrong code.
	_, err := service.Issue(ctx, "volunteer@example.com")
	require.NoError(t, err)
	wrongCode := collect("volunteer@example.com", "000000")

	// Expired code.
	store.codes[0].ExpiresAt = time.Now().Add(-time.Minute)
	expired := collect("volunteer@example.com", "000000")

	assert.Equal(t, otp.GenericInvalidMessage, noCode)
	assert.Equal(t, noCode, wrongCode)
	assert.Equal(t, wrongCode, expired)
}

/*
TestNormalizeIdentifier checks email canonicalization.
*/
func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mixed_case", "Volunteer@Example.COM", "volunteer@example.com"},
		{"surrounding_space", "  volunteer@example.com ", "volunteer@example.com"},
		{"already_canonical", "volunteer@example.com", "volunteer@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, otp.NormalizeIdentifier(tt.input))
		})
	}
}

/*
TestCode_Expired checks the expiry boundary.
*/
func TestCode_Expired(t *testing.T) {
	now := time.Now()
	code := &otp.Code{ExpiresAt: now}

	assert.True(t, code.Expired(now))
	assert.True(t, code.Expired(now.Add(time.Second)))
	assert.False(t, code.Expired(now.Add(-time.Second)))
}
