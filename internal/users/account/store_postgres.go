// Copyright (c) 2026 Handraise. All rights reserved.

package account

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handraise/handraise/internal/platform/dberr"
	"github.com/handraise/handraise/pkg/pagination"
)

// accountColumns is the canonical column list for users.account scans.
const accountColumns = "id, email, display_name, bio, email_verified, is_banned, deleted_at, created_at, updated_at"

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	query := "SELECT " + accountColumns + " FROM users.account WHERE id = $1"

	user := &User{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.Bio,
		&user.EmailVerified, &user.IsBanned, &user.DeletedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_id")
	}

	return user, nil
}

func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := "SELECT " + accountColumns + " FROM users.account WHERE email = $1"

	user := &User{}
	err := repository.db.QueryRow(context, query, email).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.Bio,
		&user.EmailVerified, &user.IsBanned, &user.DeletedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_email")
	}

	return user, nil
}

func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, display_name, bio, email_verified, is_banned, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		user.ID, user.Email, user.DisplayName, user.Bio,
		user.EmailVerified, user.IsBanned, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "An account with this email already exists")
	}

	return nil
}

func (repository *PostgresRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET display_name = $2, bio = $3, updated_at = $4
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.db.Exec(context, query, user.ID, user.DisplayName, user.Bio, user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "update_user")
	}

	return nil
}

func (repository *PostgresRepository) MarkEmailVerified(context context.Context, id string) error {
	const query = "UPDATE users.account SET email_verified = TRUE, updated_at = $2 WHERE id = $1"

	_, err := repository.db.Exec(context, query, id, time.Now())
	if err != nil {
		return dberr.Wrap(err, "mark_email_verified")
	}

	return nil
}

func (repository *PostgresRepository) SetBanned(context context.Context, id string, banned bool) error {
	const query = "UPDATE users.account SET is_banned = $2, updated_at = $3 WHERE id = $1"

	_, err := repository.db.Exec(context, query, id, banned, time.Now())
	if err != nil {
		return dberr.Wrap(err, "set_user_banned")
	}

	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	const query = "UPDATE users.account SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL"

	_, err := repository.db.Exec(context, query, id, time.Now())
	if err != nil {
		return dberr.Wrap(err, "soft_delete_user")
	}

	return nil
}

func (repository *PostgresRepository) List(context context.Context, params pagination.Params) ([]*User, int, error) {
	const countQuery = "SELECT COUNT(*) FROM users.account"

	var total int
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_users")
	}

	query := "SELECT " + accountColumns + ` FROM users.account
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.db.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_users")
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID, &user.Email, &user.DisplayName, &user.Bio,
			&user.EmailVerified, &user.IsBanned, &user.DeletedAt,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_user")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_users_rows")
	}

	return users, total, nil
}
