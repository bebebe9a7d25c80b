// Copyright (c) 2026 Handraise. All rights reserved.

package organization

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/pkg/pagination"
	"github.com/handraise/handraise/pkg/slug"
	"github.com/handraise/handraise/pkg/uuid"
)

// # Service Layer

// Service orchestrates organization registration, the moderation funnel,
// and the blacklist gate.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a new organization [Service].
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// # Registration & Profile

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Name         string
	Description  string
	Website      string
	ContactEmail string
}

/*
Register creates a pending organization owned by the authenticated user.

Description: The slug derives from the name. Every registration enters the
funnel as pending; only a moderator can approve it. Registering does not
grant any publishing capability yet.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - input: RegisterInput

Returns:
  - *Organization: The pending organization
  - error: apperr.Conflict on a name collision, or storage failures
*/
func (service *Service) Register(context context.Context, ownerUserID string, input RegisterInput) (*Organization, error) {
	org := &Organization{
		ID:             uuid.New(),
		OwnerUserID:    ownerUserID,
		Name:           input.Name,
		Slug:           slug.From(input.Name),
		Description:    input.Description,
		Website:        input.Website,
		ContactEmail:   input.ContactEmail,
		ApprovalStatus: StatusPending,
	}

	if err := service.store.Create(context, org); err != nil {
		return nil, fmt.Errorf("organization_service_register_failed: %w", err)
	}

	service.logger.Info("organization_registered",
		slog.String("organization_id", org.ID),
		slog.String("owner_user_id", ownerUserID),
		slog.String("slug", org.Slug),
	)

	return org, nil
}

// UpdateInput defines the mutable subset of organization fields.
type UpdateInput struct {
	Name         *string
	Description  *string
	Website      *string
	ContactEmail *string
}

/*
Update applies owner edits to an organization's profile.

Description: Only the owner may edit. The slug is fixed at registration;
renaming changes the display name only, so published links never break.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - orgID: string
  - input: UpdateInput

Returns:
  - *Organization: The updated organization
  - error: apperr.NotFound, apperr.Forbidden, or storage failures
*/
func (service *Service) Update(context context.Context, ownerUserID, orgID string, input UpdateInput) (*Organization, error) {
	org, err := service.store.FindByID(context, orgID)
	if err != nil {
		return nil, fmt.Errorf("organization_service_update_lookup_failed: %w", err)
	}

	if org.OwnerUserID != ownerUserID {
		return nil, apperr.Forbidden("Only the organization owner can edit it")
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	if input.Description != nil {
		org.Description = *input.Description
	}
	if input.Website != nil {
		org.Website = *input.Website
	}
	if input.ContactEmail != nil {
		org.ContactEmail = *input.ContactEmail
	}

	if err := service.store.Update(context, org); err != nil {
		return nil, fmt.Errorf("organization_service_update_failed: %w", err)
	}

	service.logger.Info("organization_updated", slog.String("organization_id", org.ID))

	return org, nil
}

// # Public Reads

/*
GetBySlug retrieves a publicly visible organization.

Description: Pending, rejected, and blacklisted organizations answer with
the same NotFound a truly absent slug produces, so their existence leaks
nothing.

Parameters:
  - context: context.Context
  - orgSlug: string

Returns:
  - *Organization: The approved organization
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) GetBySlug(context context.Context, orgSlug string) (*Organization, error) {
	org, err := service.store.FindBySlug(context, orgSlug)
	if err != nil {
		return nil, fmt.Errorf("organization_service_get_failed: %w", err)
	}

	if !org.PubliclyVisible() {
		return nil, apperr.NotFound("Organization")
	}

	return org, nil
}

/*
ListOwned returns every organization the user registered, regardless of
approval status (the owner always sees their own funnel state).

Parameters:
  - context: context.Context
  - ownerUserID: string

Returns:
  - []*Organization: Owned organizations
  - error: Retrieval failures
*/
func (service *Service) ListOwned(context context.Context, ownerUserID string) ([]*Organization, error) {
	orgs, err := service.store.FindByOwner(context, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("organization_service_list_owned_failed: %w", err)
	}
	return orgs, nil
}

// # Moderation Funnel

/*
ListForReview returns a page of organizations for the moderation console.

Parameters:
  - context: context.Context
  - status: ApprovalStatus ("" means all)
  - params: pagination.Params

Returns:
  - []*Organization: The page
  - int: Total matching count
  - error: Retrieval failures
*/
func (service *Service) ListForReview(context context.Context, status ApprovalStatus, params pagination.Params) ([]*Organization, int, error) {
	orgs, total, err := service.store.List(context, status, params)
	if err != nil {
		return nil, 0, fmt.Errorf("organization_service_list_failed: %w", err)
	}
	return orgs, total, nil
}

/*
Approve moves an organization to the approved state.

Parameters:
  - context: context.Context
  - orgID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) Approve(context context.Context, orgID string) error {
	return service.setStatus(context, orgID, StatusApproved)
}

/*
Reject moves an organization to the rejected state.

Description: Rejection hides the organization but, unlike blacklisting,
never touches the owner's ability to log in.

Parameters:
  - context: context.Context
  - orgID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) Reject(context context.Context, orgID string) error {
	return service.setStatus(context, orgID, StatusRejected)
}

func (service *Service) setStatus(context context.Context, orgID string, status ApprovalStatus) error {
	org, err := service.store.FindByID(context, orgID)
	if err != nil {
		return fmt.Errorf("organization_service_status_lookup_failed: %w", err)
	}

	if err := service.store.SetApprovalStatus(context, org.ID, status); err != nil {
		return fmt.Errorf("organization_service_status_failed: %w", err)
	}

	service.logger.Info("organization_status_changed",
		slog.String("organization_id", org.ID),
		slog.String("status", string(status)),
	)

	return nil
}

/*
Blacklist flags an organization and locks its owner out of future logins.

Description: Live owner sessions are not deleted here; they die lazily at
the next request through the auth-time gate, and new logins are refused.

Parameters:
  - context: context.Context
  - orgID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) Blacklist(context context.Context, orgID string) error {
	return service.setBlacklisted(context, orgID, true)
}

/*
Unblacklist clears the blacklist flag.

Parameters:
  - context: context.Context
  - orgID: string

Returns:
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) Unblacklist(context context.Context, orgID string) error {
	return service.setBlacklisted(context, orgID, false)
}

func (service *Service) setBlacklisted(context context.Context, orgID string, blacklisted bool) error {
	org, err := service.store.FindByID(context, orgID)
	if err != nil {
		return fmt.Errorf("organization_service_blacklist_lookup_failed: %w", err)
	}

	if err := service.store.SetBlacklisted(context, org.ID, blacklisted); err != nil {
		return fmt.Errorf("organization_service_blacklist_failed: %w", err)
	}

	service.logger.Warn("organization_blacklist_changed",
		slog.String("organization_id", org.ID),
		slog.Bool("blacklisted", blacklisted),
	)

	return nil
}

// # Login Gate

/*
OwnsBlacklistedOrganization reports whether the user owns any blacklisted
organization.

Description: Implements the auth flow's login gate. A pending or rejected
organization never blocks its owner; only the blacklist flag does.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - bool: true when a blacklisted organization exists
  - error: Retrieval failures
*/
func (service *Service) OwnsBlacklistedOrganization(context context.Context, userID string) (bool, error) {
	return service.store.OwnerHasBlacklisted(context, userID)
}
