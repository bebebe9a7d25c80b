// Copyright (c) 2026 Handraise. All rights reserved.

package participation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/handraise/handraise/internal/core/opportunity"
	"github.com/handraise/handraise/internal/orgs/organization"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/pkg/uuid"
)

// # Service Layer

// Service orchestrates the participation lifecycle between volunteers and
// organization owners.
type Service struct {
	store         Store
	opportunities opportunity.Store
	orgs          organization.Store
	logger        *slog.Logger
}

// NewService constructs a new participation [Service] with its dependencies.
func NewService(
	store Store,
	opportunities opportunity.Store,
	orgs organization.Store,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:         store,
		opportunities: opportunities,
		orgs:          orgs,
		logger:        logger,
	}
}

// # Volunteer Side

/*
Apply submits or re-submits a volunteer's application.

Description: The opportunity must be published. When capacity is set, a
full opportunity (accepted count at cap) refuses new applications. A prior
withdrawn or declined record flips back to applied instead of inserting a
duplicate; any other existing record is a conflict.

Parameters:
  - context: context.Context
  - userID: string
  - opportunityID: string
  - message: string

Returns:
  - *Participation: The applied record
  - error: apperr.NotFound, apperr.Conflict, or storage failures
*/
func (service *Service) Apply(context context.Context, userID, opportunityID, message string) (*Participation, error) {
	opp, err := service.opportunities.FindByID(context, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("participation_service_opportunity_lookup_failed: %w", err)
	}

	if !opp.AcceptsApplications() {
		return nil, apperr.NotFound("Opportunity")
	}

	if opp.Capacity > 0 {
		accepted, err := service.store.CountAccepted(context, opp.ID)
		if err != nil {
			return nil, fmt.Errorf("participation_service_capacity_check_failed: %w", err)
		}
		if accepted >= opp.Capacity {
			return nil, apperr.Conflict("This opportunity is full")
		}
	}

	existing, err := service.store.FindByUserAndOpportunity(context, userID, opp.ID)
	if err == nil {
		if !CanTransition(existing.Status, StatusApplied) {
			return nil, apperr.Conflict("You have already applied to this opportunity")
		}
		if err := service.store.SetStatus(context, existing.ID, StatusApplied, message); err != nil {
			return nil, fmt.Errorf("participation_service_reapply_failed: %w", err)
		}
		existing.Status = StatusApplied
		existing.Message = message

		service.logger.Info("participation_reapplied",
			slog.String("participation_id", existing.ID),
			slog.String("opportunity_id", opp.ID),
		)

		return existing, nil
	}
	if !apperr.IsAppError(err) {
		return nil, fmt.Errorf("participation_service_pair_lookup_failed: %w", err)
	}

	participation := &Participation{
		ID:            uuid.New(),
		OpportunityID: opp.ID,
		UserID:        userID,
		Status:        StatusApplied,
		Message:       message,
	}

	if err := service.store.Create(context, participation); err != nil {
		return nil, fmt.Errorf("participation_service_apply_failed: %w", err)
	}

	service.logger.Info("participation_applied",
		slog.String("participation_id", participation.ID),
		slog.String("opportunity_id", opp.ID),
		slog.String("user_id", userID),
	)

	return participation, nil
}

/*
Withdraw pulls the volunteer out of an applied or accepted participation.

Parameters:
  - context: context.Context
  - userID: string
  - participationID: string

Returns:
  - error: apperr.NotFound, apperr.Forbidden, apperr.Conflict, or storage failures
*/
func (service *Service) Withdraw(context context.Context, userID, participationID string) error {
	participation, err := service.store.FindByID(context, participationID)
	if err != nil {
		return fmt.Errorf("participation_service_withdraw_lookup_failed: %w", err)
	}

	if participation.UserID != userID {
		return apperr.Forbidden("Only the applicant can withdraw")
	}

	if !CanTransition(participation.Status, StatusWithdrawn) {
		return apperr.Conflict("This participation cannot be withdrawn")
	}

	if err := service.store.SetStatus(context, participation.ID, StatusWithdrawn, participation.Message); err != nil {
		return fmt.Errorf("participation_service_withdraw_failed: %w", err)
	}

	service.logger.Info("participation_withdrawn", slog.String("participation_id", participation.ID))

	return nil
}

/*
ListMine returns the volunteer's participations, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Participation: The volunteer's records
  - error: Retrieval failures
*/
func (service *Service) ListMine(context context.Context, userID string) ([]*Participation, error) {
	participations, err := service.store.ListByUser(context, userID)
	if err != nil {
		return nil, fmt.Errorf("participation_service_list_mine_failed: %w", err)
	}
	return participations, nil
}

// # Owner Side

// requireOpportunityOwner loads a participation's opportunity and verifies
// the caller owns the publishing organization.
func (service *Service) requireOpportunityOwner(context context.Context, ownerUserID string, participation *Participation) (*opportunity.Opportunity, error) {
	opp, err := service.opportunities.FindByID(context, participation.OpportunityID)
	if err != nil {
		return nil, fmt.Errorf("participation_service_opportunity_lookup_failed: %w", err)
	}

	org, err := service.orgs.FindByID(context, opp.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("participation_service_org_lookup_failed: %w", err)
	}

	if org.OwnerUserID != ownerUserID {
		return nil, apperr.Forbidden("Only the organization owner can decide on applications")
	}

	return opp, nil
}

/*
Accept moves an application to accepted, honoring the capacity cap.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - participationID: string

Returns:
  - error: apperr.NotFound, apperr.Forbidden, apperr.Conflict, or storage failures
*/
func (service *Service) Accept(context context.Context, ownerUserID, participationID string) error {
	participation, err := service.store.FindByID(context, participationID)
	if err != nil {
		return fmt.Errorf("participation_service_accept_lookup_failed: %w", err)
	}

	opp, err := service.requireOpportunityOwner(context, ownerUserID, participation)
	if err != nil {
		return err
	}

	if !CanTransition(participation.Status, StatusAccepted) {
		return apperr.Conflict("Only applied participations can be accepted")
	}

	if opp.Capacity > 0 {
		accepted, err := service.store.CountAccepted(context, opp.ID)
		if err != nil {
			return fmt.Errorf("participation_service_capacity_check_failed: %w", err)
		}
		if accepted >= opp.Capacity {
			return apperr.Conflict("This opportunity is full")
		}
	}

	return service.decide(context, participation, StatusAccepted)
}

/*
Decline turns an application down.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - participationID: string

Returns:
  - error: apperr.NotFound, apperr.Forbidden, apperr.Conflict, or storage failures
*/
func (service *Service) Decline(context context.Context, ownerUserID, participationID string) error {
	participation, err := service.store.FindByID(context, participationID)
	if err != nil {
		return fmt.Errorf("participation_service_decline_lookup_failed: %w", err)
	}

	if _, err := service.requireOpportunityOwner(context, ownerUserID, participation); err != nil {
		return err
	}

	if !CanTransition(participation.Status, StatusDeclined) {
		return apperr.Conflict("Only applied participations can be declined")
	}

	return service.decide(context, participation, StatusDeclined)
}

/*
Complete confirms an accepted volunteer's finished work.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - participationID: string

Returns:
  - error: apperr.NotFound, apperr.Forbidden, apperr.Conflict, or storage failures
*/
func (service *Service) Complete(context context.Context, ownerUserID, participationID string) error {
	participation, err := service.store.FindByID(context, participationID)
	if err != nil {
		return fmt.Errorf("participation_service_complete_lookup_failed: %w", err)
	}

	if _, err := service.requireOpportunityOwner(context, ownerUserID, participation); err != nil {
		return err
	}

	if !CanTransition(participation.Status, StatusCompleted) {
		return apperr.Conflict("Only accepted participations can be completed")
	}

	return service.decide(context, participation, StatusCompleted)
}

func (service *Service) decide(context context.Context, participation *Participation, status Status) error {
	if err := service.store.SetStatus(context, participation.ID, status, participation.Message); err != nil {
		return fmt.Errorf("participation_service_decision_failed: %w", err)
	}

	service.logger.Info("participation_status_changed",
		slog.String("participation_id", participation.ID),
		slog.String("status", string(status)),
	)

	return nil
}

/*
ListForOpportunity returns every participation of an owned opportunity.

Parameters:
  - context: context.Context
  - ownerUserID: string
  - opportunityID: string

Returns:
  - []*Participation: The opportunity's records
  - error: apperr.NotFound, apperr.Forbidden, or storage failures
*/
func (service *Service) ListForOpportunity(context context.Context, ownerUserID, opportunityID string) ([]*Participation, error) {
	probe := &Participation{OpportunityID: opportunityID}
	if _, err := service.requireOpportunityOwner(context, ownerUserID, probe); err != nil {
		return nil, err
	}

	participations, err := service.store.ListByOpportunity(context, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("participation_service_list_failed: %w", err)
	}

	return participations, nil
}
