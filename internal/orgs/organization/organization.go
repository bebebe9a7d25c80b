// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package organization manages the organizations that publish volunteer
opportunities.

Organizations are registered by authenticated users and enter a moderation
funnel: they start pending, and a moderator approves or rejects them. Only
approved organizations appear publicly or may publish opportunities.
Blacklisting is a separate, harsher flag: it also blocks the owner's future
logins, while a merely pending organization never does.

# Architecture

  - Entities: Organization.
  - Domain: Referenced by the opportunity package (publisher checks) and the
    user auth flow (blacklist login gate).
*/
package organization

import (
	"context"
	"time"

	"github.com/handraise/handraise/pkg/pagination"
)

// # Approval States

// ApprovalStatus tracks an organization through the moderation funnel.
type ApprovalStatus string

const (
	// StatusPending means the registration awaits moderator review.
	StatusPending ApprovalStatus = "pending"

	// StatusApproved means the organization is live and may publish.
	StatusApproved ApprovalStatus = "approved"

	// StatusRejected means a moderator declined the registration.
	StatusRejected ApprovalStatus = "rejected"
)

// Valid reports whether the status is one of the known approval states.
func (s ApprovalStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// # Domain Entities

// Organization is a registered volunteer organization.
type Organization struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`

	ApprovalStatus ApprovalStatus `json:"approval_status"`

	// Blacklisted blocks the owner's logins in addition to hiding the
	// organization. Independent of the approval funnel.
	Blacklisted bool `json:"blacklisted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PubliclyVisible reports whether the organization may appear in public
// responses.
func (o *Organization) PubliclyVisible() bool {
	return o != nil && o.ApprovalStatus == StatusApproved && !o.Blacklisted
}

// CanPublish reports whether the organization may create or publish
// opportunities.
func (o *Organization) CanPublish() bool {
	return o.PubliclyVisible()
}

// # Repository Contracts

// Store defines the persistence contract for organizations.
type Store interface {
	/*
		FindByID retrieves an organization by its unique ID.

		Returns:
		  - *Organization: Loaded entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Organization, error)

	/*
		FindBySlug retrieves an organization by its unique slug.

		Returns:
		  - *Organization: Loaded entity
		  - error: apperr.NotFound or storage failures
	*/
	FindBySlug(context context.Context, slug string) (*Organization, error)

	/*
		FindByOwner lists every organization the user registered.

		Returns:
		  - []*Organization: Owned organizations (possibly empty)
		  - error: Retrieval failures
	*/
	FindByOwner(context context.Context, ownerUserID string) ([]*Organization, error)

	/*
		OwnerHasBlacklisted reports whether the user owns at least one
		blacklisted organization. Used by the login gate.

		Returns:
		  - bool: true when a blacklisted organization exists
		  - error: Retrieval failures
	*/
	OwnerHasBlacklisted(context context.Context, ownerUserID string) (bool, error)

	/*
		Create inserts a new organization.

		Returns:
		  - error: apperr.Conflict on a duplicate slug, or storage failures
	*/
	Create(context context.Context, org *Organization) error

	/*
		Update persists the mutable profile fields of an organization.

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, org *Organization) error

	/*
		SetApprovalStatus moves the organization through the funnel.

		Returns:
		  - error: Execution failures
	*/
	SetApprovalStatus(context context.Context, id string, status ApprovalStatus) error

	/*
		SetBlacklisted toggles the blacklist flag.

		Returns:
		  - error: Execution failures
	*/
	SetBlacklisted(context context.Context, id string, blacklisted bool) error

	/*
		List returns a page of organizations for the moderation console,
		optionally filtered by approval status, newest first.

		Parameters:
		  - status: ApprovalStatus ("" means all)

		Returns:
		  - []*Organization: The page
		  - int: Total matching count
		  - error: Retrieval failures
	*/
	List(context context.Context, status ApprovalStatus, params pagination.Params) ([]*Organization, int, error)
}
