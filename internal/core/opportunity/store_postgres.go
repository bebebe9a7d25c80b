// Copyright (c) 2026 Handraise. All rights reserved.

package opportunity

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handraise/handraise/internal/platform/dberr"
	"github.com/handraise/handraise/pkg/pagination"
)

// oppColumns is the canonical column list for core.opportunity scans.
const oppColumns = "id, organization_id, title, slug, description, location, remote, starts_at, ends_at, capacity, status, created_at, updated_at"

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanOpportunity(row interface{ Scan(...any) error }) (*Opportunity, error) {
	opp := &Opportunity{}
	err := row.Scan(
		&opp.ID, &opp.OrganizationID, &opp.Title, &opp.Slug,
		&opp.Description, &opp.Location, &opp.Remote,
		&opp.StartsAt, &opp.EndsAt, &opp.Capacity, &opp.Status,
		&opp.CreatedAt, &opp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return opp, nil
}

func (store *PostgresStore) FindByID(context context.Context, id string) (*Opportunity, error) {
	query := "SELECT " + oppColumns + " FROM core.opportunity WHERE id = $1"

	opp, err := scanOpportunity(store.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_opportunity_by_id")
	}
	return opp, nil
}

func (store *PostgresStore) FindBySlug(context context.Context, slug string) (*Opportunity, error) {
	query := "SELECT " + oppColumns + " FROM core.opportunity WHERE slug = $1"

	opp, err := scanOpportunity(store.db.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "find_opportunity_by_slug")
	}
	return opp, nil
}

func (store *PostgresStore) Create(context context.Context, opp *Opportunity) error {
	const query = `
		INSERT INTO core.opportunity (
			id, organization_id, title, slug, description, location, remote,
			starts_at, ends_at, capacity, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	opp.CreatedAt = now
	opp.UpdatedAt = now

	_, err := store.db.Exec(context, query,
		opp.ID, opp.OrganizationID, opp.Title, opp.Slug,
		opp.Description, opp.Location, opp.Remote,
		opp.StartsAt, opp.EndsAt, opp.Capacity, opp.Status,
		opp.CreatedAt, opp.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "An opportunity with this title already exists")
	}

	return nil
}

func (store *PostgresStore) Update(context context.Context, opp *Opportunity) error {
	const query = `
		UPDATE core.opportunity
		SET title = $2, description = $3, location = $4, remote = $5,
		    starts_at = $6, ends_at = $7, capacity = $8, updated_at = $9
		WHERE id = $1`

	opp.UpdatedAt = time.Now()
	_, err := store.db.Exec(context, query,
		opp.ID, opp.Title, opp.Description, opp.Location, opp.Remote,
		opp.StartsAt, opp.EndsAt, opp.Capacity, opp.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_opportunity")
	}

	return nil
}

func (store *PostgresStore) SetStatus(context context.Context, id string, status Status) error {
	const query = "UPDATE core.opportunity SET status = $2, updated_at = $3 WHERE id = $1"

	_, err := store.db.Exec(context, query, id, status, time.Now())
	if err != nil {
		return dberr.Wrap(err, "set_opportunity_status")
	}

	return nil
}

func (store *PostgresStore) ListPublished(context context.Context, filter ListFilter, params pagination.Params) ([]*Opportunity, int, error) {
	where := " WHERE status = 'published'"
	args := []any{}

	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		where += " AND location ILIKE $1"
	}
	if filter.Remote != nil {
		args = append(args, *filter.Remote)
		if len(args) == 1 {
			where += " AND remote = $1"
		} else {
			where += " AND remote = $2"
		}
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM core.opportunity" + where
	if err := store.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_opportunities")
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	args = append(args, params.Limit, params.Offset())

	listQuery := "SELECT " + oppColumns + " FROM core.opportunity" + where +
		" ORDER BY created_at DESC" +
		" LIMIT $" + strconv.Itoa(limitPos) + " OFFSET $" + strconv.Itoa(offsetPos)

	rows, err := store.db.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_opportunities")
	}
	defer rows.Close()

	opportunities := make([]*Opportunity, 0)
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_opportunity")
		}
		opportunities = append(opportunities, opp)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_opportunities_rows")
	}

	return opportunities, total, nil
}

func (store *PostgresStore) ListByOrganization(context context.Context, organizationID string) ([]*Opportunity, error) {
	query := "SELECT " + oppColumns + " FROM core.opportunity WHERE organization_id = $1 ORDER BY created_at DESC"

	rows, err := store.db.Query(context, query, organizationID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_organization_opportunities")
	}
	defer rows.Close()

	opportunities := make([]*Opportunity, 0)
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_opportunity")
		}
		opportunities = append(opportunities, opp)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_organization_opportunities_rows")
	}

	return opportunities, nil
}
