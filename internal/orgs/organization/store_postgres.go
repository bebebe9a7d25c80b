// Copyright (c) 2026 Handraise. All rights reserved.

package organization

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handraise/handraise/internal/platform/dberr"
	"github.com/handraise/handraise/pkg/pagination"
)

// orgColumns is the canonical column list for orgs.organization scans.
const orgColumns = "id, owner_user_id, name, slug, description, website, contact_email, approval_status, blacklisted, created_at, updated_at"

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanOrganization(row interface{ Scan(...any) error }) (*Organization, error) {
	org := &Organization{}
	err := row.Scan(
		&org.ID, &org.OwnerUserID, &org.Name, &org.Slug,
		&org.Description, &org.Website, &org.ContactEmail,
		&org.ApprovalStatus, &org.Blacklisted,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (store *PostgresStore) FindByID(context context.Context, id string) (*Organization, error) {
	query := "SELECT " + orgColumns + " FROM orgs.organization WHERE id = $1"

	org, err := scanOrganization(store.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_organization_by_id")
	}
	return org, nil
}

func (store *PostgresStore) FindBySlug(context context.Context, slug string) (*Organization, error) {
	query := "SELECT " + orgColumns + " FROM orgs.organization WHERE slug = $1"

	org, err := scanOrganization(store.db.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "find_organization_by_slug")
	}
	return org, nil
}

func (store *PostgresStore) FindByOwner(context context.Context, ownerUserID string) ([]*Organization, error) {
	query := "SELECT " + orgColumns + " FROM orgs.organization WHERE owner_user_id = $1 ORDER BY created_at DESC"

	rows, err := store.db.Query(context, query, ownerUserID)
	if err != nil {
		return nil, dberr.Wrap(err, "find_organizations_by_owner")
	}
	defer rows.Close()

	orgs := make([]*Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_organization")
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "find_organizations_by_owner_rows")
	}

	return orgs, nil
}

func (store *PostgresStore) OwnerHasBlacklisted(context context.Context, ownerUserID string) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM orgs.organization WHERE owner_user_id = $1 AND blacklisted)"

	var exists bool
	if err := store.db.QueryRow(context, query, ownerUserID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "owner_has_blacklisted")
	}

	return exists, nil
}

func (store *PostgresStore) Create(context context.Context, org *Organization) error {
	const query = `
		INSERT INTO orgs.organization (
			id, owner_user_id, name, slug, description, website, contact_email,
			approval_status, blacklisted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	_, err := store.db.Exec(context, query,
		org.ID, org.OwnerUserID, org.Name, org.Slug,
		org.Description, org.Website, org.ContactEmail,
		org.ApprovalStatus, org.Blacklisted,
		org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "An organization with this name already exists")
	}

	return nil
}

func (store *PostgresStore) Update(context context.Context, org *Organization) error {
	const query = `
		UPDATE orgs.organization
		SET name = $2, description = $3, website = $4, contact_email = $5, updated_at = $6
		WHERE id = $1`

	org.UpdatedAt = time.Now()
	_, err := store.db.Exec(context, query,
		org.ID, org.Name, org.Description, org.Website, org.ContactEmail, org.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_organization")
	}

	return nil
}

func (store *PostgresStore) SetApprovalStatus(context context.Context, id string, status ApprovalStatus) error {
	const query = "UPDATE orgs.organization SET approval_status = $2, updated_at = $3 WHERE id = $1"

	_, err := store.db.Exec(context, query, id, status, time.Now())
	if err != nil {
		return dberr.Wrap(err, "set_organization_status")
	}

	return nil
}

func (store *PostgresStore) SetBlacklisted(context context.Context, id string, blacklisted bool) error {
	const query = "UPDATE orgs.organization SET blacklisted = $2, updated_at = $3 WHERE id = $1"

	_, err := store.db.Exec(context, query, id, blacklisted, time.Now())
	if err != nil {
		return dberr.Wrap(err, "set_organization_blacklisted")
	}

	return nil
}

func (store *PostgresStore) List(context context.Context, status ApprovalStatus, params pagination.Params) ([]*Organization, int, error) {
	countQuery := "SELECT COUNT(*) FROM orgs.organization"
	listQuery := "SELECT " + orgColumns + " FROM orgs.organization"

	args := []any{}
	if status != "" {
		countQuery += " WHERE approval_status = $1"
		listQuery += " WHERE approval_status = $1"
		args = append(args, status)
	}

	var total int
	if err := store.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_organizations")
	}

	listQuery += " ORDER BY created_at DESC"
	if status != "" {
		listQuery += " LIMIT $2 OFFSET $3"
	} else {
		listQuery += " LIMIT $1 OFFSET $2"
	}
	args = append(args, params.Limit, params.Offset())

	rows, err := store.db.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_organizations")
	}
	defer rows.Close()

	orgs := make([]*Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_organization")
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_organizations_rows")
	}

	return orgs, total, nil
}
