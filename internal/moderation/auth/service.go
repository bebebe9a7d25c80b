// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package auth implements the moderator authentication flow.

It mirrors the end-user OTP flow but carries stricter preconditions: the
email must belong to an existing, verified, in-good-standing user who holds
an active moderator grant. The checks run before a code is even generated
and again at verification, because standing can change in between.

# Security

The send endpoint deliberately reports precondition failures (unknown user,
unverified email, inactive grant) instead of a generic message: moderator
onboarding is an internal, low-volume flow where operator feedback outweighs
enumeration concerns. The verify endpoint still uses the generic invalid-code
message for anything code-related.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/handraise/handraise/internal/auth/otp"
	"github.com/handraise/handraise/internal/auth/session"
	"github.com/handraise/handraise/internal/moderation/roster"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/sec"
	"github.com/handraise/handraise/internal/users/account"
)

// # Collaborator Contracts

// OtpFlow is the passcode lifecycle boundary (issue + single-use consume).
type OtpFlow interface {
	Issue(context context.Context, identifier string) (string, error)
	Consume(context context.Context, identifier, submitted string) error
}

// SessionIssuer creates and tears down sessions. Satisfied by the session
// manager.
type SessionIssuer interface {
	Issue(context context.Context, kind sec.SubjectKind, subjectID string) (string, *session.Session, error)
	Logout(context context.Context, token string) error
}

// OtpMailer queues the sign-in code email for asynchronous delivery.
type OtpMailer interface {
	EnqueueOtp(context context.Context, recipient, code string, ttl time.Duration) error
}

// # Service Layer

// Service orchestrates the moderator sign-in lifecycle.
type Service struct {
	codes      OtpFlow
	accounts   account.Repository
	moderators roster.Store
	sessions   SessionIssuer
	mailer     OtpMailer
	logger     *slog.Logger
}

// NewService constructs a new moderator auth [Service] with its dependencies.
func NewService(
	codes OtpFlow,
	accounts account.Repository,
	moderators roster.Store,
	sessions SessionIssuer,
	mailer OtpMailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		codes:      codes,
		accounts:   accounts,
		moderators: moderators,
		sessions:   sessions,
		mailer:     mailer,
		logger:     logger,
	}
}

// checkStanding enforces the moderator sign-in preconditions.
//
// Order matters for the error surface: existence first, then verification,
// then account standing, then the grant itself.
func (service *Service) checkStanding(context context.Context, identifier string) (*account.User, *roster.Moderator, error) {
	user, err := service.accounts.FindByEmail(context, identifier)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, nil, apperr.NotFound("User")
		}
		return nil, nil, fmt.Errorf("moderator_auth_user_lookup_failed: %w", err)
	}

	if !user.EmailVerified {
		return nil, nil, apperr.Unauthorized("Email not verified")
	}

	if !user.Active() {
		return nil, nil, apperr.Forbidden("This account cannot sign in")
	}

	moderator, err := service.moderators.FindByUserID(context, user.ID)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, nil, apperr.Unauthorized("Not an active moderator")
		}
		return nil, nil, fmt.Errorf("moderator_auth_grant_lookup_failed: %w", err)
	}

	if !moderator.IsActive {
		return nil, nil, apperr.Unauthorized("Not an active moderator")
	}

	return user, moderator, nil
}

// # OTP Sign-In

/*
SendOtp issues a moderator sign-in code after the precondition gauntlet.

Description: All standing checks run before any code is generated, so a
non-moderator email never consumes a cooldown slot or receives mail.

Parameters:
  - context: context.Context
  - email: string (raw client input)

Returns:
  - error: apperr.NotFound, apperr.Unauthorized, apperr.Forbidden,
    apperr.RateLimited, or storage failures
*/
func (service *Service) SendOtp(context context.Context, email string) error {
	identifier := otp.NormalizeIdentifier(email)

	if _, _, err := service.checkStanding(context, identifier); err != nil {
		return err
	}

	code, err := service.codes.Issue(context, identifier)
	if err != nil {
		return err
	}

	if err := service.mailer.EnqueueOtp(context, identifier, code, otp.CodeTTL); err != nil {
		service.logger.Error("moderator_otp_mail_enqueue_failed",
			slog.String("identifier", identifier),
			slog.Any("error", err),
		)
	}

	service.logger.Info("moderator_otp_issued", slog.String("identifier", identifier))

	return nil
}

// VerifyResult carries the session material returned by a successful
// moderator verification.
type VerifyResult struct {
	Token     string
	ExpiresAt time.Time
	Moderator *roster.Moderator
}

/*
VerifyOtp consumes a moderator sign-in code and establishes a session.

Description: The code is consumed first (burning it even on a failed
standing check), then every precondition re-runs — a grant deactivated
between send and verify refuses the login. The session's subject is the
moderator grant ID, not the user ID, so grant-wide revocation stays scoped.

Parameters:
  - context: context.Context
  - email: string (raw client input)
  - code: string

Returns:
  - *VerifyResult: Session token, expiry, and the grant record
  - error: The generic OTP ValidationError, precondition errors, or storage failures
*/
func (service *Service) VerifyOtp(context context.Context, email, code string) (*VerifyResult, error) {
	identifier := otp.NormalizeIdentifier(email)

	if err := service.codes.Consume(context, identifier, code); err != nil {
		return nil, err
	}

	user, moderator, err := service.checkStanding(context, identifier)
	if err != nil {
		return nil, err
	}

	token, record, err := service.sessions.Issue(context, sec.SubjectModerator, moderator.ID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("moderator_signed_in",
		slog.String("moderator_id", moderator.ID),
		slog.String("session_id", record.ID),
	)

	moderator.Email = user.Email
	moderator.DisplayName = user.DisplayName
	return &VerifyResult{
		Token:     token,
		ExpiresAt: record.ExpiresAt,
		Moderator: moderator,
	}, nil
}

// # Session Operations

/*
GetCurrentModerator returns the grant behind an authenticated principal.

Parameters:
  - context: context.Context
  - principal: *sec.Principal

Returns:
  - *roster.Moderator: The current grant with user details joined
  - error: apperr.Unauthorized or storage failures
*/
func (service *Service) GetCurrentModerator(context context.Context, principal *sec.Principal) (*roster.Moderator, error) {
	if principal == nil || !principal.IsModerator() {
		return nil, apperr.Unauthorized("Moderator session required")
	}

	moderator, err := service.moderators.FindByID(context, principal.ModeratorID)
	if err != nil {
		return nil, fmt.Errorf("moderator_auth_me_failed: %w", err)
	}

	moderator.Email = principal.Email
	moderator.DisplayName = principal.DisplayName
	return moderator, nil
}

/*
Logout deletes the presented session. Idempotent.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (service *Service) Logout(context context.Context, token string) error {
	return service.sessions.Logout(context, token)
}

// # Subject Resolution

/*
ResolveSubject re-validates a moderator's standing for session validation.

Description: Implements the session manager's resolver contract for the
moderator subject kind. The grant must still be active AND its underlying
user must still be in good standing; either failure deletes the presenting
session lazily.

Parameters:
  - context: context.Context
  - subjectID: string (moderator grant ID)

Returns:
  - *sec.Principal: The resolved principal
  - error: apperr.Unauthorized when standing is lost
*/
func (service *Service) ResolveSubject(context context.Context, subjectID string) (*sec.Principal, error) {
	moderator, err := service.moderators.FindByID(context, subjectID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	if !moderator.IsActive {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	user, err := service.accounts.FindByID(context, moderator.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	if !user.Active() {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	return &sec.Principal{
		Kind:        sec.SubjectModerator,
		UserID:      user.ID,
		ModeratorID: moderator.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}
