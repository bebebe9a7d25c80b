// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package participation tracks volunteers' applications to opportunities.

A participation is the single record tying one user to one opportunity; the
pair is unique. Volunteers apply and withdraw; the opportunity's
organization owner accepts, declines, and finally marks completed work.

# State Machine

	applied ──► accepted ──► completed
	   │  │         │
	   │  └►declined│
	   └──────►withdrawn◄┘

Withdrawn and declined records may re-apply, flipping back to applied.
*/
package participation

import (
	"context"
	"time"
)

// # Participation States

// Status tracks a participation through its lifecycle.
type Status string

const (
	// StatusApplied means the volunteer applied and awaits a decision.
	StatusApplied Status = "applied"

	// StatusAccepted means the owner accepted the volunteer.
	StatusAccepted Status = "accepted"

	// StatusDeclined means the owner turned the application down.
	StatusDeclined Status = "declined"

	// StatusWithdrawn means the volunteer pulled out.
	StatusWithdrawn Status = "withdrawn"

	// StatusCompleted means the owner confirmed the volunteer's work.
	StatusCompleted Status = "completed"
)

// transitions maps each state to the states it may move into.
var transitions = map[Status][]Status{
	StatusApplied:   {StatusAccepted, StatusDeclined, StatusWithdrawn},
	StatusAccepted:  {StatusCompleted, StatusWithdrawn},
	StatusDeclined:  {StatusApplied},
	StatusWithdrawn: {StatusApplied},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// # Domain Entities

// Participation ties one volunteer to one opportunity.
type Participation struct {
	ID            string `json:"id"`
	OpportunityID string `json:"opportunity_id"`
	UserID        string `json:"user_id"`

	Status Status `json:"status"`

	// Message is the volunteer's note to the organization.
	Message string `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Repository Contracts

// Store defines the persistence contract for participations.
type Store interface {
	/*
		FindByID retrieves a participation by its unique ID.

		Returns:
		  - *Participation: Loaded entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Participation, error)

	/*
		FindByUserAndOpportunity retrieves the unique record for one pair.

		Returns:
		  - *Participation: Loaded entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUserAndOpportunity(context context.Context, userID, opportunityID string) (*Participation, error)

	/*
		Create inserts a new participation.

		Returns:
		  - error: apperr.Conflict on a duplicate pair, or storage failures
	*/
	Create(context context.Context, participation *Participation) error

	/*
		SetStatus transitions a participation and updates its message.

		Returns:
		  - error: Execution failures
	*/
	SetStatus(context context.Context, id string, status Status, message string) error

	/*
		CountAccepted counts accepted participations for an opportunity,
		used against the capacity cap.

		Returns:
		  - int: Accepted count
		  - error: Retrieval failures
	*/
	CountAccepted(context context.Context, opportunityID string) (int, error)

	/*
		ListByUser returns the volunteer's participations, newest first.

		Returns:
		  - []*Participation: The volunteer's records
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string) ([]*Participation, error)

	/*
		ListByOpportunity returns every participation for an opportunity,
		newest first.

		Returns:
		  - []*Participation: The opportunity's records
		  - error: Retrieval failures
	*/
	ListByOpportunity(context context.Context, opportunityID string) ([]*Participation, error)
}
