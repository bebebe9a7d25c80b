// Copyright (c) 2026 Handraise. All rights reserved.

package participation

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handraise/handraise/internal/platform/dberr"
)

// partColumns is the canonical column list for core.participation scans.
const partColumns = "id, opportunity_id, user_id, status, message, created_at, updated_at"

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanParticipation(row interface{ Scan(...any) error }) (*Participation, error) {
	participation := &Participation{}
	err := row.Scan(
		&participation.ID, &participation.OpportunityID, &participation.UserID,
		&participation.Status, &participation.Message,
		&participation.CreatedAt, &participation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return participation, nil
}

func (store *PostgresStore) FindByID(context context.Context, id string) (*Participation, error) {
	query := "SELECT " + partColumns + " FROM core.participation WHERE id = $1"

	participation, err := scanParticipation(store.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_participation_by_id")
	}
	return participation, nil
}

func (store *PostgresStore) FindByUserAndOpportunity(context context.Context, userID, opportunityID string) (*Participation, error) {
	query := "SELECT " + partColumns + " FROM core.participation WHERE user_id = $1 AND opportunity_id = $2"

	participation, err := scanParticipation(store.db.QueryRow(context, query, userID, opportunityID))
	if err != nil {
		return nil, dberr.Wrap(err, "find_participation_by_pair")
	}
	return participation, nil
}

func (store *PostgresStore) Create(context context.Context, participation *Participation) error {
	const query = `
		INSERT INTO core.participation (
			id, opportunity_id, user_id, status, message, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	participation.CreatedAt = now
	participation.UpdatedAt = now

	_, err := store.db.Exec(context, query,
		participation.ID, participation.OpportunityID, participation.UserID,
		participation.Status, participation.Message,
		participation.CreatedAt, participation.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "You have already applied to this opportunity")
	}

	return nil
}

func (store *PostgresStore) SetStatus(context context.Context, id string, status Status, message string) error {
	const query = "UPDATE core.participation SET status = $2, message = $3, updated_at = $4 WHERE id = $1"

	_, err := store.db.Exec(context, query, id, status, message, time.Now())
	if err != nil {
		return dberr.Wrap(err, "set_participation_status")
	}

	return nil
}

func (store *PostgresStore) CountAccepted(context context.Context, opportunityID string) (int, error) {
	const query = "SELECT COUNT(*) FROM core.participation WHERE opportunity_id = $1 AND status = 'accepted'"

	var count int
	if err := store.db.QueryRow(context, query, opportunityID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_accepted_participations")
	}

	return count, nil
}

func (store *PostgresStore) ListByUser(context context.Context, userID string) ([]*Participation, error) {
	query := "SELECT " + partColumns + " FROM core.participation WHERE user_id = $1 ORDER BY created_at DESC"

	return store.list(context, query, userID)
}

func (store *PostgresStore) ListByOpportunity(context context.Context, opportunityID string) ([]*Participation, error) {
	query := "SELECT " + partColumns + " FROM core.participation WHERE opportunity_id = $1 ORDER BY created_at DESC"

	return store.list(context, query, opportunityID)
}

func (store *PostgresStore) list(context context.Context, query string, arg any) ([]*Participation, error) {
	rows, err := store.db.Query(context, query, arg)
	if err != nil {
		return nil, dberr.Wrap(err, "list_participations")
	}
	defer rows.Close()

	participations := make([]*Participation, 0)
	for rows.Next() {
		participation, err := scanParticipation(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_participation")
		}
		participations = append(participations, participation)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_participations_rows")
	}

	return participations, nil
}
