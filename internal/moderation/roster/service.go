// Copyright (c) 2026 Handraise. All rights reserved.

package roster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/users/account"
	"github.com/handraise/handraise/pkg/pagination"
	"github.com/handraise/handraise/pkg/uuid"
)

// # Service Layer

// Service orchestrates the moderator roster lifecycle.
type Service struct {
	store    Store
	accounts account.Repository
	sessions SessionRevoker
	logger   *slog.Logger
}

// NewService constructs a new roster [Service] with its dependencies.
func NewService(
	store Store,
	accounts account.Repository,
	sessions SessionRevoker,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// # Roster Management

/*
ListModerators returns a page of grants with user details joined in.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*Moderator: The page of grants
  - int: Total grant count
  - error: Retrieval failures
*/
func (service *Service) ListModerators(context context.Context, params pagination.Params) ([]*Moderator, int, error) {
	moderators, total, err := service.store.List(context, params)
	if err != nil {
		return nil, 0, fmt.Errorf("roster_service_list_failed: %w", err)
	}
	return moderators, total, nil
}

/*
CreateModerator grants moderation privileges to an existing user by email.

Description: The target user must exist, hold a verified email, and be in
good standing (not banned, not deleted). The grant starts active.

Parameters:
  - context: context.Context
  - email: string (already normalized)

Returns:
  - *Moderator: The new grant
  - error: apperr.NotFound, apperr.ValidationError, apperr.Conflict, or storage failures
*/
func (service *Service) CreateModerator(context context.Context, email string) (*Moderator, error) {
	user, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		return nil, fmt.Errorf("roster_service_user_lookup_failed: %w", err)
	}

	if !user.Active() {
		return nil, apperr.Forbidden("This account is not in good standing")
	}
	if !user.EmailVerified {
		return nil, apperr.ValidationError("The user must verify their email before becoming a moderator")
	}

	moderator := &Moderator{
		ID:       uuid.New(),
		UserID:   user.ID,
		IsActive: true,
	}

	if err := service.store.Create(context, moderator); err != nil {
		return nil, fmt.Errorf("roster_service_create_failed: %w", err)
	}

	service.logger.Info("moderator_granted",
		slog.String("moderator_id", moderator.ID),
		slog.String("user_id", user.ID),
	)

	moderator.Email = user.Email
	moderator.DisplayName = user.DisplayName
	return moderator, nil
}

/*
DeactivateModerator suspends a grant and revokes the moderator's sessions.

Description: The grant row survives for audit purposes; only the active flag
flips. The explicit session deletion closes the window between the flip and
the next lazy validation.

Parameters:
  - context: context.Context
  - moderatorID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) DeactivateModerator(context context.Context, moderatorID string) error {
	moderator, err := service.store.FindByID(context, moderatorID)
	if err != nil {
		return fmt.Errorf("roster_service_deactivate_lookup_failed: %w", err)
	}

	if err := service.store.SetActive(context, moderator.ID, false); err != nil {
		return fmt.Errorf("roster_service_deactivate_failed: %w", err)
	}

	if err := service.sessions.DeleteModeratorSessions(context, moderator.ID); err != nil {
		service.logger.Error("moderator_session_revocation_failed",
			slog.String("moderator_id", moderator.ID),
			slog.Any("error", err),
		)
	}

	service.logger.Warn("moderator_deactivated", slog.String("moderator_id", moderator.ID))

	return nil
}

/*
ReactivateModerator restores a suspended grant.

Description: Previously revoked sessions stay dead; the moderator signs in
again through the moderator OTP flow.

Parameters:
  - context: context.Context
  - moderatorID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) ReactivateModerator(context context.Context, moderatorID string) error {
	moderator, err := service.store.FindByID(context, moderatorID)
	if err != nil {
		return fmt.Errorf("roster_service_reactivate_lookup_failed: %w", err)
	}

	if err := service.store.SetActive(context, moderator.ID, true); err != nil {
		return fmt.Errorf("roster_service_reactivate_failed: %w", err)
	}

	service.logger.Info("moderator_reactivated", slog.String("moderator_id", moderator.ID))

	return nil
}

// # Directory Lookups

/*
ModeratorIDForUser maps a user to their moderator grant ID.

Description: Implements the account package's ModeratorDirectory contract so
user bans can cascade to moderator-kind sessions.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - string: Moderator UUID
  - error: apperr.NotFound when the user holds no grant
*/
func (service *Service) ModeratorIDForUser(context context.Context, userID string) (string, error) {
	moderator, err := service.store.FindByUserID(context, userID)
	if err != nil {
		return "", err
	}
	return moderator.ID, nil
}
