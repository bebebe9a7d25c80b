// Copyright (c) 2026 Handraise. All rights reserved.

// Package pagination parses page-based navigation for list endpoints and
// builds the metadata block returned alongside every paginated collection.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is applied when the client omits or mangles "limit".
	DefaultLimit = 20
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
	// DefaultPage is the first page (pages are 1-indexed).
	DefaultPage = 1
)

// Params is the sanitized page/limit pair for one list request.
type Params struct {
	Page  int
	Limit int
}

// Offset converts the page number into a SQL OFFSET.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes a paginated collection in the response envelope.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

/*
NewMeta builds the metadata for a list response, deriving TotalPages from the
total row count (ceiling division, zero when the limit is zero).

Parameters:
  - page: the page that was served.
  - limit: the page size that was served.
  - total: the total number of matching rows.

Returns:
  - Meta: the metadata block for the envelope.
*/
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

/*
FromRequest reads "page" and "limit" from the query string and clamps them to
sane bounds. Anything missing, non-numeric, or out of range falls back to the
defaults; a limit above MaxLimit is treated the same as a bad one rather than
silently truncated, so abusive clients get the default page size.

Parameters:
  - r: the incoming list request.

Returns:
  - Params: page and limit, both guaranteed usable.
*/
func FromRequest(r *http.Request) Params {
	page := queryInt(r, "page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := queryInt(r, "limit", DefaultLimit)
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}

// queryInt parses one integer query parameter, falling back on any parse error.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return n
}
