// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package account owns the user identity record and its moderation lifecycle.

It provides profile self-service for authenticated volunteers and the
moderator-facing operations (listing, banning, soft-deletion) that feed the
session-revocation cascade.

# Architecture

  - Entities: User (the platform-wide identity record).
  - Domain: Other domains (auth, moderation, organizations) reference users
    through this package; it depends on none of them.
  - Security: Ban and soft-delete immediately revoke the target's sessions.
*/
package account

import (
	"context"
	"time"

	"github.com/handraise/handraise/pkg/pagination"
)

// # Domain Entities

// User is the platform identity record behind every subject kind.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio,omitempty"`

	// EmailVerified is set the first time the user completes OTP verification.
	EmailVerified bool `json:"email_verified"`

	// IsBanned blocks login and invalidates live sessions lazily.
	IsBanned bool `json:"is_banned"`

	// DeletedAt marks a soft-deleted account. Deleted users are treated as
	// absent by every flow except moderator listings.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the account may authenticate and hold sessions.
func (u *User) Active() bool {
	return u != nil && !u.IsBanned && u.DeletedAt == nil
}

// # Repository Contracts

// Repository defines the persistence contract for user accounts.
type Repository interface {
	/*
		FindByID retrieves a user record by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail retrieves a user record by its normalized email address.

		Parameters:
		  - context: context.Context
		  - email: string (already normalized)

		Returns:
		  - *User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create inserts a new user record.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on duplicate email, or storage failures
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *User) error

	/*
		MarkEmailVerified stamps the account's email as verified.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	MarkEmailVerified(context context.Context, id string) error

	/*
		SetBanned toggles the account's ban flag.

		Parameters:
		  - context: context.Context
		  - id: string
		  - banned: bool

		Returns:
		  - error: Execution failures
	*/
	SetBanned(context context.Context, id string, banned bool) error

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error

	/*
		List returns a page of user records for moderator review, newest first,
		including banned and soft-deleted accounts.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*User: The page of accounts
		  - int: Total account count
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]*User, int, error)
}

// # Collaborator Contracts

// SessionRevoker severs live sessions when an account loses standing.
// Satisfied by the session manager.
type SessionRevoker interface {
	DeleteUserSessions(context context.Context, userID string) error
	DeleteModeratorSessions(context context.Context, moderatorID string) error
}

// ModeratorDirectory answers whether a user also holds a moderator record,
// so a ban can cascade to moderator-kind sessions too.
type ModeratorDirectory interface {
	/*
		ModeratorIDForUser returns the moderator ID tied to the user.

		Returns:
		  - string: Moderator UUID
		  - error: apperr.NotFound when the user is not a moderator
	*/
	ModeratorIDForUser(context context.Context, userID string) (string, error)
}
