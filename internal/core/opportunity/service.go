// Copyright (c) 2026 Handraise. All rights reserved.

package opportunity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/handraise/handraise/internal/orgs/organization"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/pkg/pagination"
	"github.com/handraise/handraise/pkg/slug"
	"github.com/handraise/handraise/pkg/uuid"
)

// # Service Layer

// Service orchestrates the opportunity lifecycle and its publisher checks.
type Service struct {
	store  Store
	orgs   organization.Store
	logger *slog.Logger
}

// NewService constructs a new opportunity [Service] with its dependencies.
func NewService(store Store, orgs organization.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		orgs:   orgs,
		logger: logger,
	}
}

// requireOwnedPublisher loads the organization and checks that the caller
// owns it and that it may publish.
func (service *Service) requireOwnedPublisher(context context.Context, ownerUserID, organizationID string) (*organization.Organization, error) {
	org, err := service.orgs.FindByID(context, organizationID)
	if err != nil {
		return nil, fmt.Errorf("opportunity_service_org_lookup_failed: %w", err)
	}

	if org.OwnerUserID != ownerUserID {
		return nil, apperr.Forbidden("Only the organization owner can manage its opportunities")
	}
	if !org.CanPublish() {
		return nil, apperr.Forbidden("The organization must be approved before publishing opportunities")
	}

	return org, nil
}

// # Lifecycle

// CreateInput carries the opportunity creation payload.
type CreateInput struct {
	OrganizationID string
	Title          string
	Description    string
	Location       string
	Remote         bool
	StartsAt       *time.Time
	EndsAt         *time.Time
	Capacity       int
}

/*
Create drafts a new opportunity for an approved organization.

Description: The caller must own the organization and the organization must
be approved and not blacklisted. The slug derives from the title. New
opportunities start as drafts; publishing is a separate transition.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - input: CreateInput

Returns:
  - *Opportunity: The new draft
  - error: apperr.Forbidden, apperr.Conflict, or storage failures
*/
func (service *Service) Create(context context.Context, ownerUserID string, input CreateInput) (*Opportunity, error) {
	if _, err := service.requireOwnedPublisher(context, ownerUserID, input.OrganizationID); err != nil {
		return nil, err
	}

	opp := &Opportunity{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		Title:          input.Title,
		Slug:           slug.From(input.Title),
		Description:    input.Description,
		Location:       input.Location,
		Remote:         input.Remote,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
		Capacity:       input.Capacity,
		Status:         StatusDraft,
	}

	if err := service.store.Create(context, opp); err != nil {
		return nil, fmt.Errorf("opportunity_service_create_failed: %w", err)
	}

	service.logger.Info("opportunity_created",
		slog.String("opportunity_id", opp.ID),
		slog.String("organization_id", opp.OrganizationID),
	)

	return opp, nil
}

// UpdateInput defines the mutable subset of opportunity fields.
type UpdateInput struct {
	Title       *string
	Description *string
	Location    *string
	Remote      *bool
	StartsAt    *time.Time
	EndsAt      *time.Time
	Capacity    *int
}

/*
Update applies owner edits to an opportunity.

Description: The slug is fixed at creation, so published links survive a
retitle. Capacity may shrink below the accepted count; existing acceptances
stand, the cap only gates new ones.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - oppID: string
  - input: UpdateInput

Returns:
  - *Opportunity: The updated opportunity
  - error: apperr.NotFound, apperr.Forbidden, or storage failures
*/
func (service *Service) Update(context context.Context, ownerUserID, oppID string, input UpdateInput) (*Opportunity, error) {
	opp, err := service.store.FindByID(context, oppID)
	if err != nil {
		return nil, fmt.Errorf("opportunity_service_update_lookup_failed: %w", err)
	}

	if _, err := service.requireOwnedPublisher(context, ownerUserID, opp.OrganizationID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		opp.Title = *input.Title
	}
	if input.Description != nil {
		opp.Description = *input.Description
	}
	if input.Location != nil {
		opp.Location = *input.Location
	}
	if input.Remote != nil {
		opp.Remote = *input.Remote
	}
	if input.StartsAt != nil {
		opp.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		opp.EndsAt = input.EndsAt
	}
	if input.Capacity != nil {
		opp.Capacity = *input.Capacity
	}

	if err := service.store.Update(context, opp); err != nil {
		return nil, fmt.Errorf("opportunity_service_update_failed: %w", err)
	}

	service.logger.Info("opportunity_updated", slog.String("opportunity_id", opp.ID))

	return opp, nil
}

/*
Publish moves a draft or closed opportunity into the public listing.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - oppID: string

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or storage failures
*/
func (service *Service) Publish(context context.Context, ownerUserID, oppID string) error {
	return service.transition(context, ownerUserID, oppID, StatusPublished)
}

/*
Close stops an opportunity from accepting applications.

Description: The opportunity stays publicly readable so participants keep
their history.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - oppID: string

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or storage failures
*/
func (service *Service) Close(context context.Context, ownerUserID, oppID string) error {
	return service.transition(context, ownerUserID, oppID, StatusClosed)
}

func (service *Service) transition(context context.Context, ownerUserID, oppID string, status Status) error {
	opp, err := service.store.FindByID(context, oppID)
	if err != nil {
		return fmt.Errorf("opportunity_service_transition_lookup_failed: %w", err)
	}

	if _, err := service.requireOwnedPublisher(context, ownerUserID, opp.OrganizationID); err != nil {
		return err
	}

	if err := service.store.SetStatus(context, opp.ID, status); err != nil {
		return fmt.Errorf("opportunity_service_transition_failed: %w", err)
	}

	service.logger.Info("opportunity_status_changed",
		slog.String("opportunity_id", opp.ID),
		slog.String("status", string(status)),
	)

	return nil
}

// # Reads

/*
ListPublic returns a page of published opportunities.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - params: pagination.Params

Returns:
  - []*Opportunity: The page
  - int: Total matching count
  - error: Retrieval failures
*/
func (service *Service) ListPublic(context context.Context, filter ListFilter, params pagination.Params) ([]*Opportunity, int, error) {
	opportunities, total, err := service.store.ListPublished(context, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("opportunity_service_list_failed: %w", err)
	}
	return opportunities, total, nil
}

/*
GetBySlug retrieves a publicly readable opportunity.

Description: Drafts answer with NotFound; published and closed ones are
visible (closed opportunities keep serving participants' history).

Parameters:
  - context: context.Context
  - oppSlug: string

Returns:
  - *Opportunity: The opportunity
  - error: apperr.NotFound, or storage failures
*/
func (service *Service) GetBySlug(context context.Context, oppSlug string) (*Opportunity, error) {
	opp, err := service.store.FindBySlug(context, oppSlug)
	if err != nil {
		return nil, fmt.Errorf("opportunity_service_get_failed: %w", err)
	}

	if opp.Status == StatusDraft {
		return nil, apperr.NotFound("Opportunity")
	}

	return opp, nil
}

/*
ListForOrganization returns every opportunity of an owned organization,
drafts included.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - organizationID: string

Returns:
  - []*Opportunity: The organization's opportunities
  - error: apperr.NotFound, apperr.Forbidden, or storage failures
*/
func (service *Service) ListForOrganization(context context.Context, ownerUserID, organizationID string) ([]*Opportunity, error) {
	org, err := service.orgs.FindByID(context, organizationID)
	if err != nil {
		return nil, fmt.Errorf("opportunity_service_org_lookup_failed: %w", err)
	}

	if org.OwnerUserID != ownerUserID {
		return nil, apperr.Forbidden("Only the organization owner can list its opportunities")
	}

	opportunities, err := service.store.ListByOrganization(context, org.ID)
	if err != nil {
		return nil, fmt.Errorf("opportunity_service_list_owned_failed: %w", err)
	}

	return opportunities, nil
}
