// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package roster manages the moderator roster: who holds moderation privileges
and whether those privileges are currently active.

A moderator is a privilege grant layered on top of an existing user account,
never a standalone identity. Deactivation is reversible and takes effect
immediately: the moderator's live sessions are revoked on the spot, and lazy
session validation keeps any stragglers out.

# Architecture

  - Entities: Moderator (grant record tied to a users.account row).
  - Domain: Depends on the account package for the underlying user.
  - Security: Deactivate cascades into moderator-session revocation.
*/
package roster

import (
	"context"
	"time"

	"github.com/handraise/handraise/pkg/pagination"
)

// # Domain Entities

// Moderator is a moderation privilege grant for one user.
type Moderator struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// IsActive gates every moderator capability. Inactive grants keep their
	// row (the grant history matters) but authenticate as plain users only.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Email and DisplayName are join artifacts from the underlying user,
	// populated by listing queries for the moderation console.
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// # Repository Contracts

// Store defines the persistence contract for moderator grants.
type Store interface {
	/*
		FindByID retrieves a moderator grant by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Moderator: Loaded grant
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Moderator, error)

	/*
		FindByUserID retrieves the moderator grant tied to a user, if any.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Moderator: Loaded grant
		  - error: apperr.NotFound or storage failures
	*/
	FindByUserID(context context.Context, userID string) (*Moderator, error)

	/*
		Create inserts a new moderator grant.

		Parameters:
		  - context: context.Context
		  - moderator: *Moderator

		Returns:
		  - error: apperr.Conflict when the user already holds a grant
	*/
	Create(context context.Context, moderator *Moderator) error

	/*
		SetActive toggles a grant's active flag.

		Parameters:
		  - context: context.Context
		  - id: string
		  - active: bool

		Returns:
		  - error: Execution failures
	*/
	SetActive(context context.Context, id string, active bool) error

	/*
		List returns a page of grants with their underlying user's email and
		display name joined in, newest first.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*Moderator: The page of grants
		  - int: Total grant count
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]*Moderator, int, error)
}

// SessionRevoker severs moderator sessions on deactivation.
// Satisfied by the session manager.
type SessionRevoker interface {
	DeleteModeratorSessions(context context.Context, moderatorID string) error
}
