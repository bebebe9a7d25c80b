// Copyright (c) 2026 Handraise. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/pkg/pagination"
)

// # Service Layer

// Service orchestrates profile self-service and moderator account actions.
//
// Ban and soft-delete cascade into session revocation: the target's user
// sessions die immediately, and if the target also holds a moderator record
// its moderator sessions die with them.
type Service struct {
	repository Repository
	sessions   SessionRevoker
	moderators ModeratorDirectory
	logger     *slog.Logger
}

// NewService constructs a new account [Service] with its dependencies.
func NewService(
	repository Repository,
	sessions SessionRevoker,
	moderators ModeratorDirectory,
	logger *slog.Logger,
) *Service {
	return &Service{
		repository: repository,
		sessions:   sessions,
		moderators: moderators,
		logger:     logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*User, error) {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *User: The updated user profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := service.repository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

// # Moderation Actions

/*
ListUsers returns a page of accounts for the moderation console, including
banned and soft-deleted records.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*User: The page of accounts
  - int: Total account count
  - error: Retrieval failures
*/
func (service *Service) ListUsers(context context.Context, params pagination.Params) ([]*User, int, error) {
	users, total, err := service.repository.List(context, params)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, total, nil
}

/*
BanUser bans an account and revokes all of its live sessions.

Description: Sets the ban flag, then deletes the user's user-kind sessions.
If the user also holds a moderator record, that moderator's sessions are
deleted too, so a banned staff member loses both hats at once. The flag flip
alone would already starve the sessions through lazy validation; the explicit
deletion closes the window.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) BanUser(context context.Context, userID string) error {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_ban_lookup_failed: %w", err)
	}

	if err := service.repository.SetBanned(context, user.ID, true); err != nil {
		return fmt.Errorf("account_service_ban_failed: %w", err)
	}

	service.revokeAllSessions(context, user.ID)

	service.logger.Warn("user_banned", slog.String("user_id", user.ID))

	return nil
}

/*
UnbanUser lifts an account ban.

Description: Does not resurrect any previously deleted session; the user
signs in again through the normal OTP flow.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) UnbanUser(context context.Context, userID string) error {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_unban_lookup_failed: %w", err)
	}

	if err := service.repository.SetBanned(context, user.ID, false); err != nil {
		return fmt.Errorf("account_service_unban_failed: %w", err)
	}

	service.logger.Info("user_unbanned", slog.String("user_id", user.ID))

	return nil
}

/*
DeleteUser soft-deletes an account and revokes all of its live sessions.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) DeleteUser(context context.Context, userID string) error {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_delete_lookup_failed: %w", err)
	}

	if err := service.repository.SoftDelete(context, user.ID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.revokeAllSessions(context, user.ID)

	service.logger.Warn("user_account_deleted", slog.String("user_id", user.ID))

	return nil
}

// revokeAllSessions severs the user's sessions of both kinds. Failures are
// logged only: the flag flip already guarantees lazy revocation.
func (service *Service) revokeAllSessions(context context.Context, userID string) {
	if err := service.sessions.DeleteUserSessions(context, userID); err != nil {
		service.logger.Error("user_session_revocation_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	moderatorID, err := service.moderators.ModeratorIDForUser(context, userID)
	if err != nil {
		if !apperr.IsAppError(err) {
			service.logger.Error("moderator_lookup_failed",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}
		return
	}

	if err := service.sessions.DeleteModeratorSessions(context, moderatorID); err != nil {
		service.logger.Error("moderator_session_revocation_failed",
			slog.String("moderator_id", moderatorID),
			slog.Any("error", err),
		)
	}
}
