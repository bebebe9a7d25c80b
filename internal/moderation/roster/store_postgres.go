// Copyright (c) 2026 Handraise. All rights reserved.

package roster

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handraise/handraise/internal/platform/dberr"
	"github.com/handraise/handraise/pkg/pagination"
)

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (store *PostgresStore) FindByID(context context.Context, id string) (*Moderator, error) {
	const query = `
		SELECT id, user_id, is_active, created_at, updated_at
		FROM users.moderator
		WHERE id = $1`

	moderator := &Moderator{}
	err := store.db.QueryRow(context, query, id).Scan(
		&moderator.ID, &moderator.UserID, &moderator.IsActive,
		&moderator.CreatedAt, &moderator.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_moderator_by_id")
	}

	return moderator, nil
}

func (store *PostgresStore) FindByUserID(context context.Context, userID string) (*Moderator, error) {
	const query = `
		SELECT id, user_id, is_active, created_at, updated_at
		FROM users.moderator
		WHERE user_id = $1`

	moderator := &Moderator{}
	err := store.db.QueryRow(context, query, userID).Scan(
		&moderator.ID, &moderator.UserID, &moderator.IsActive,
		&moderator.CreatedAt, &moderator.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_moderator_by_user")
	}

	return moderator, nil
}

func (store *PostgresStore) Create(context context.Context, moderator *Moderator) error {
	const query = `
		INSERT INTO users.moderator (id, user_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	now := time.Now()
	moderator.CreatedAt = now
	moderator.UpdatedAt = now

	_, err := store.db.Exec(context, query,
		moderator.ID, moderator.UserID, moderator.IsActive,
		moderator.CreatedAt, moderator.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "This user is already a moderator")
	}

	return nil
}

func (store *PostgresStore) SetActive(context context.Context, id string, active bool) error {
	const query = "UPDATE users.moderator SET is_active = $2, updated_at = $3 WHERE id = $1"

	_, err := store.db.Exec(context, query, id, active, time.Now())
	if err != nil {
		return dberr.Wrap(err, "set_moderator_active")
	}

	return nil
}

func (store *PostgresStore) List(context context.Context, params pagination.Params) ([]*Moderator, int, error) {
	const countQuery = "SELECT COUNT(*) FROM users.moderator"

	var total int
	if err := store.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_moderators")
	}

	const query = `
		SELECT m.id, m.user_id, m.is_active, m.created_at, m.updated_at,
		       u.email, u.display_name
		FROM users.moderator m
		JOIN users.account u ON m.user_id = u.id
		ORDER BY m.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := store.db.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_moderators")
	}
	defer rows.Close()

	moderators := make([]*Moderator, 0)
	for rows.Next() {
		moderator := &Moderator{}
		if err := rows.Scan(
			&moderator.ID, &moderator.UserID, &moderator.IsActive,
			&moderator.CreatedAt, &moderator.UpdatedAt,
			&moderator.Email, &moderator.DisplayName,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_moderator")
		}
		moderators = append(moderators, moderator)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_moderators_rows")
	}

	return moderators, total, nil
}
