// Copyright (c) 2026 Handraise. All rights reserved.

package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/sec"
	"github.com/handraise/handraise/pkg/uuid"
)

// Service orchestrates the passcode lifecycle: throttled issuance,
// supersession, and single-use consumption.
//
// # Review Process
//
// This service is critical for security. Any change to the generic failure
// message or the consumption ordering must be reviewed carefully.
type Service struct {
	store    Store
	cooldown CooldownStore
}

// NewService constructs a new passcode [Service].
func NewService(store Store, cooldown CooldownStore) *Service {
	return &Service{
		store:    store,
		cooldown: cooldown,
	}
}

/*
Issue generates, persists, and returns a fresh passcode for the identifier.

Description: Claims the send-cooldown slot, generates a fixed-length numeric
code, stores its bcrypt hash with a 5-minute expiry, and supersedes any prior
outstanding code. The plain code is returned exactly once, for the caller to
place into the outbound email; it is never persisted or logged.

Parameters:
  - context: context.Context
  - identifier: string (already normalized)

Returns:
  - string: The plain numeric code
  - error: apperr.RateLimited when inside the cooldown window, or storage errors
*/
func (service *Service) Issue(context context.Context, identifier string) (string, error) {

	// Throttle before any work: one send per identifier per cooldown window.
	claimed, err := service.cooldown.Acquire(context, identifier, SendCooldown)
	if err != nil {
		return "", fmt.Errorf("otp_service_cooldown_failed: %w", err)
	}
	if !claimed {
		return "", apperr.RateLimited(int(SendCooldown.Seconds()))
	}

	plainCode, err := sec.GenerateOtpCode()
	if err != nil {
		return "", fmt.Errorf("otp_service_generate_failed: %w", err)
	}

	codeHash, err := sec.HashOtpCode(plainCode)
	if err != nil {
		return "", fmt.Errorf("otp_service_hash_failed: %w", err)
	}

	code := &Code{
		ID:         uuid.New(),
		Identifier: identifier,
		CodeHash:   codeHash,
		ExpiresAt:  time.Now().Add(CodeTTL),
	}

	if err := service.store.CreateSuperseding(context, code); err != nil {
		return "", fmt.Errorf("otp_service_persist_failed: %w", err)
	}

	return plainCode, nil
}

/*
Consume verifies a submitted passcode and marks it used.

Description: Looks up the newest unconsumed code for the identifier and
compares the submission against its hash. Absence, expiry, and mismatch all
fail with the identical [GenericInvalidMessage] — callers must not add
distinguishing detail. On match the row is stamped consumed so the code can
never be replayed; a concurrent verify race lets at most one caller through.

Parameters:
  - context: context.Context
  - identifier: string (already normalized)
  - submitted: string

Returns:
  - error: apperr.ValidationError with the generic message, or storage errors
*/
func (service *Service) Consume(context context.Context, identifier, submitted string) error {
	code, err := service.store.FindActive(context, identifier)
	if err != nil {
		// No outstanding code: same message as a wrong code.
		if apperr.IsAppError(err) {
			return apperr.ValidationError(GenericInvalidMessage)
		}
		return fmt.Errorf("otp_service_lookup_failed: %w", err)
	}

	if code.Expired(time.Now()) {
		return apperr.ValidationError(GenericInvalidMessage)
	}

	if !sec.CheckOtpCode(submitted, code.CodeHash) {
		return apperr.ValidationError(GenericInvalidMessage)
	}

	// Single-use: the row is stamped before the caller proceeds to session
	// issuance, so a replay can never reach the subject checks.
	if err := service.store.MarkConsumed(context, code.ID, time.Now()); err != nil {
		return err
	}

	return nil
}
