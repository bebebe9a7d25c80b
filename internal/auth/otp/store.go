// Copyright (c) 2026 Handraise. All rights reserved.

package otp

import (
	"context"
	"time"
)

// # Code Data Access

// Store defines the persistence contract for one-time passcode rows.
type Store interface {

	/*
		CreateSuperseding persists a new code row and consumes every prior
		outstanding code for the same identifier in one transaction, so the
		newest code is the only verifiable one.

		Parameters:
		  - context: context.Context
		  - code: *Code

		Returns:
		  - error: Persistence failures
	*/
	CreateSuperseding(context context.Context, code *Code) error

	/*
		FindActive returns the most recent unconsumed code for the identifier,
		regardless of expiry. Expiry is evaluated by the caller at read time.

		Parameters:
		  - context: context.Context
		  - identifier: string (normalized email)

		Returns:
		  - *Code: Hydrated row
		  - error: apperr.NotFound when no unconsumed row exists
	*/
	FindActive(context context.Context, identifier string) (*Code, error)

	/*
		MarkConsumed stamps the code row as used, making it unverifiable.

		Parameters:
		  - context: context.Context
		  - codeID: string
		  - consumedAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	MarkConsumed(context context.Context, codeID string, consumedAt time.Time) error

	/*
		DeleteExpired physically removes rows whose expiry has long passed.
		Housekeeping only; correctness never depends on it.

		Parameters:
		  - context: context.Context
		  - olderThan: time.Time

		Returns:
		  - error: Cleanup failures
	*/
	DeleteExpired(context context.Context, olderThan time.Time) error
}

// # Send Throttling

// CooldownStore limits how often a code may be sent to one identifier.
type CooldownStore interface {

	/*
		Acquire attempts to claim the cooldown slot for the identifier.

		Parameters:
		  - context: context.Context
		  - identifier: string (normalized email)
		  - ttl: time.Duration

		Returns:
		  - bool: true when the slot was free and is now claimed
		  - error: Connectivity failures
	*/
	Acquire(context context.Context, identifier string, ttl time.Duration) (bool, error)
}
