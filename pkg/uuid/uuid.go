// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package uuid generates the identifiers used for every primary key on the
platform.

All IDs are UUID version 7: time-ordered with millisecond precision, so
freshly inserted rows land at the tail of PostgreSQL B-tree indexes instead
of fragmenting them, while remaining compatible with the standard 'uuid'
column type.
*/
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// Must is an alias for New, kept for call sites that read better with it.
func Must() string {
	return New()
}
