// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package otp implements issuance and verification of one-time passcodes.

A passcode proves control of an email address. Codes are fixed-length numeric
strings, stored bcrypt-hashed with an expiry timestamp; at most one
unconsumed, unexpired code per identifier is verifiable (issuing a new code
supersedes any outstanding one).

# Architecture

  - Service: Orchestrates generation, supersession, and single-use consumption.
  - Store: Postgres persistence of code rows.
  - CooldownStore: Redis throttle keys limiting send frequency per identifier.

The package is subject-agnostic: it neither knows nor cares whether the
identifier belongs to a volunteer or a moderator. Subject preconditions live
in the variant auth services.
*/
package otp

import (
	"strings"
	"time"
)

// # Issuance Constraints

const (
	// CodeTTL is the window during which an issued passcode can be verified.
	CodeTTL = 5 * time.Minute

	// SendCooldown is the minimum interval between two sends for the same
	// identifier. Protects the mail pipeline from request loops.
	SendCooldown = 60 * time.Second
)

// GenericInvalidMessage is the single client-facing message for every
// verification failure: wrong code, expired code, and no code at all.
//
// Collapsing the three cases is a deliberate security property (it prevents
// an attacker from probing which identifiers have outstanding codes), not an
// oversight. Any change here weakens the enumeration defense.
const GenericInvalidMessage = "Invalid or expired OTP code"

// # Domain Entities

// Code represents a stored one-time passcode row.
type Code struct {
	ID string `json:"id"`

	// Identifier is the normalized email the code was issued for.
	Identifier string `json:"identifier"`

	// CodeHash is the bcrypt hash of the numeric code. The plain code exists
	// only in the outbound email.
	CodeHash string `json:"-"`

	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Consumed reports whether the code has already been used.
func (c *Code) Consumed() bool {
	return c.ConsumedAt != nil
}

// Expired reports whether the code's verification window has closed at now.
func (c *Code) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// NormalizeIdentifier canonicalizes an email identifier: trimmed and
// lower-cased. Every store lookup and every code row uses this form.
func NormalizeIdentifier(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
