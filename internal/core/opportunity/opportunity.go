// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package opportunity manages volunteer opportunities published by approved
organizations.

Opportunities move through a small lifecycle: drafted by the organization
owner, published into the public listing, and eventually closed. Only the
owner of an approved, non-blacklisted organization may create or transition
them.

# Architecture

  - Entities: Opportunity.
  - Domain: Depends on the organization package for publisher checks; the
    participation package builds on this one.
*/
package opportunity

import (
	"context"
	"time"

	"github.com/handraise/handraise/pkg/pagination"
)

// # Lifecycle States

// Status tracks an opportunity through its lifecycle.
type Status string

const (
	// StatusDraft means the opportunity is visible to its owner only.
	StatusDraft Status = "draft"

	// StatusPublished means the opportunity is publicly listed and accepts
	// applications.
	StatusPublished Status = "published"

	// StatusClosed means the opportunity no longer accepts applications.
	// It stays publicly readable for participants' history.
	StatusClosed Status = "closed"
)

// # Domain Entities

// Opportunity is a single volunteer opportunity.
type Opportunity struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Description    string `json:"description,omitempty"`

	// Location is a free-form place name; empty for fully remote work.
	Location string `json:"location,omitempty"`
	Remote   bool   `json:"remote"`

	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	// Capacity caps accepted participants; 0 means unlimited.
	Capacity int `json:"capacity"`

	Status Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcceptsApplications reports whether volunteers may currently apply.
func (o *Opportunity) AcceptsApplications() bool {
	return o != nil && o.Status == StatusPublished
}

// # Listing Filters

// ListFilter narrows the public opportunity listing.
type ListFilter struct {
	// Location substring-matches the opportunity location (case-insensitive).
	Location string

	// Remote filters by the remote flag when non-nil.
	Remote *bool
}

// # Repository Contracts

// Store defines the persistence contract for opportunities.
type Store interface {
	/*
		FindByID retrieves an opportunity by its unique ID.

		Returns:
		  - *Opportunity: Loaded entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Opportunity, error)

	/*
		FindBySlug retrieves an opportunity by its unique slug.

		Returns:
		  - *Opportunity: Loaded entity
		  - error: apperr.NotFound or storage failures
	*/
	FindBySlug(context context.Context, slug string) (*Opportunity, error)

	/*
		Create inserts a new opportunity.

		Returns:
		  - error: apperr.Conflict on a duplicate slug, or storage failures
	*/
	Create(context context.Context, opp *Opportunity) error

	/*
		Update persists the mutable fields of an opportunity.

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, opp *Opportunity) error

	/*
		SetStatus transitions the opportunity's lifecycle state.

		Returns:
		  - error: Execution failures
	*/
	SetStatus(context context.Context, id string, status Status) error

	/*
		ListPublished returns a page of published opportunities, newest
		first, narrowed by the filter.

		Returns:
		  - []*Opportunity: The page
		  - int: Total matching count
		  - error: Retrieval failures
	*/
	ListPublished(context context.Context, filter ListFilter, params pagination.Params) ([]*Opportunity, int, error)

	/*
		ListByOrganization returns every opportunity of one organization,
		all statuses, newest first.

		Returns:
		  - []*Opportunity: The organization's opportunities
		  - error: Retrieval failures
	*/
	ListByOrganization(context context.Context, organizationID string) ([]*Opportunity, error)
}
