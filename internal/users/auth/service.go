// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package auth implements the end-user authentication flow: passwordless
OTP sign-in over email, session issuance, and per-request subject
re-validation.

There is no registration endpoint. The first successful OTP verification
for an unknown email creates the account and marks the email verified in
one step.

# Architecture

  - Service: Orchestrates the OTP core, the account repository, the
    organization blacklist gate, and the session manager.
  - Resolver: Implements the session manager's subject re-validation
    contract for the user subject kind.
  - Security: Banned, deleted, and blacklisted-organization owners are
    rejected at verification time and lazily at every later request.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/handraise/handraise/internal/auth/otp"
	"github.com/handraise/handraise/internal/auth/session"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/sec"
	"github.com/handraise/handraise/internal/users/account"
	"github.com/handraise/handraise/pkg/uuid"
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

// OrganizationGate answers whether a user owns a blacklisted organization.
type OrganizationGate interface {
	OwnsBlacklistedOrganization(context context.Context, userID string) (bool, error)
}

// OtpMailer queues the sign-in code email for asynchronous delivery.
type OtpMailer interface {
	EnqueueOtp(context context.Context, recipient, code string, ttl time.Duration) error
}

// # Service Layer

// Service orchestrates the end-user sign-in lifecycle.
type Service struct {
	codes    OtpFlow
	accounts account.Repository
	sessions SessionIssuer
	orgs     OrganizationGate
	mailer   OtpMailer
	logger   *slog.Logger
}

// NewService constructs a new end-user auth [Service] with its dependencies.
func NewService(
	codes OtpFlow,
	accounts account.Repository,
	sessions SessionIssuer,
	orgs OrganizationGate,
	mailer OtpMailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		codes:    codes,
		accounts: accounts,
		sessions: sessions,
		orgs:     orgs,
		mailer:   mailer,
		logger:   logger,
	}
}

// # OTP Sign-In

/*
SendOtp issues a sign-in code for the email address and queues its delivery.

Description: An unknown email is allowed through — the account materializes
at verification. A known account that is banned or soft-deleted is refused
up front. The mail enqueue is best-effort: a queue failure is logged and the
caller still sees success, because the outbox dispatcher owns delivery.

Parameters:
  - context: context.Context
  - email: string (raw client input)

Returns:
  - error: apperr.Forbidden, apperr.RateLimited, or storage failures
*/
func (service *Service) SendOtp(context context.Context, email string) error {
	identifier := otp.NormalizeIdentifier(email)

	user, err := service.accounts.FindByEmail(context, identifier)
	if err == nil && !user.Active() {
		return apperr.Forbidden("This account cannot sign in")
	}
	if err != nil && !apperr.IsAppError(err) {
		return fmt.Errorf("user_auth_send_lookup_failed: %w", err)
	}

	code, err := service.codes.Issue(context, identifier)
	if err != nil {
		return err
	}

	if err := service.mailer.EnqueueOtp(context, identifier, code, otp.CodeTTL); err != nil {
		service.logger.Error("otp_mail_enqueue_failed",
			slog.String("identifier", identifier),
			slog.Any("error", err),
		)
	}

	service.logger.Info("otp_issued", slog.String("identifier", identifier))

	return nil
}

// VerifyResult carries the session material returned by a successful
// verification.
type VerifyResult struct {
	Token     string
	ExpiresAt time.Time
	User      *account.User
}

/*
VerifyOtp consumes a sign-in code and establishes a session.

Description: The code is consumed first, so a failed standing check still
burns it. For an unknown email the account is created on the spot with the
email pre-verified; for an existing account the verified flag is stamped if
missing. Standing is re-checked at this point — it may have changed since
the send: banned or deleted accounts and owners of a blacklisted
organization are refused. A merely pending organization never blocks its
owner.

Parameters:
  - context: context.Context
  - email: string (raw client input)
  - code: string

Returns:
  - *VerifyResult: Session token, expiry, and the user record
  - error: The generic OTP ValidationError, apperr.Forbidden, or storage failures
*/
func (service *Service) VerifyOtp(context context.Context, email, code string) (*VerifyResult, error) {
	identifier := otp.NormalizeIdentifier(email)

	if err := service.codes.Consume(context, identifier, code); err != nil {
		return nil, err
	}

	user, err := service.findOrCreate(context, identifier)
	if err != nil {
		return nil, err
	}

	if !user.Active() {
		return nil, apperr.Forbidden("This account cannot sign in")
	}

	blacklisted, err := service.orgs.OwnsBlacklistedOrganization(context, user.ID)
	if err != nil {
		return nil, fmt.Errorf("user_auth_blacklist_gate_failed: %w", err)
	}
	if blacklisted {
		return nil, apperr.Forbidden("This account cannot sign in")
	}

	if !user.EmailVerified {
		if err := service.accounts.MarkEmailVerified(context, user.ID); err != nil {
			return nil, fmt.Errorf("user_auth_mark_verified_failed: %w", err)
		}
		user.EmailVerified = true
	}

	token, record, err := service.sessions.Issue(context, sec.SubjectUser, user.ID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_signed_in",
		slog.String("user_id", user.ID),
		slog.String("session_id", record.ID),
	)

	return &VerifyResult{
		Token:     token,
		ExpiresAt: record.ExpiresAt,
		User:      user,
	}, nil
}

// findOrCreate loads the account behind the identifier, materializing it on
// first sign-in.
func (service *Service) findOrCreate(context context.Context, identifier string) (*account.User, error) {
	user, err := service.accounts.FindByEmail(context, identifier)
	if err == nil {
		return user, nil
	}
	if !apperr.IsAppError(err) {
		return nil, fmt.Errorf("user_auth_verify_lookup_failed: %w", err)
	}

	user = &account.User{
		ID:            uuid.New(),
		Email:         identifier,
		DisplayName:   displayNameFromEmail(identifier),
		EmailVerified: true,
	}

	if err := service.accounts.Create(context, user); err != nil {
		return nil, fmt.Errorf("user_auth_create_account_failed: %w", err)
	}

	service.logger.Info("user_account_created", slog.String("user_id", user.ID))

	return user, nil
}

// displayNameFromEmail derives an initial display name from the local part.
func displayNameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// # Session Operations

/*
GetCurrentUser returns the account behind an authenticated principal.

Parameters:
  - context: context.Context
  - principal: *sec.Principal

Returns:
  - *account.User: The current account
  - error: apperr.Unauthorized or storage failures
*/
func (service *Service) GetCurrentUser(context context.Context, principal *sec.Principal) (*account.User, error) {
	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	user, err := service.accounts.FindByID(context, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("user_auth_me_failed: %w", err)
	}

	return user, nil
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
ResolveSubject re-validates a user's standing for session validation.

Description: Implements the session manager's resolver contract for the
user subject kind. Any error tells the manager to delete the presenting
session — banned, deleted, and blacklisted-organization owners all lose
their live sessions lazily here.

Parameters:
  - context: context.Context
  - subjectID: string (user ID)

Returns:
  - *sec.Principal: The resolved principal
  - error: apperr.Unauthorized when standing is lost
*/
func (service *Service) ResolveSubject(context context.Context, subjectID string) (*sec.Principal, error) {
	user, err := service.accounts.FindByID(context, subjectID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	if !user.Active() {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	blacklisted, err := service.orgs.OwnsBlacklistedOrganization(context, user.ID)
	if err != nil || blacklisted {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	return &sec.Principal{
		Kind:        sec.SubjectUser,
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}
