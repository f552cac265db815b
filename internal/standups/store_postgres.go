// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package standups

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/standup/internal/platform/apperr"
	"github.com/taibuivan/standup/internal/platform/database/schema"
	"github.com/taibuivan/standup/internal/platform/dberr"
	"github.com/taibuivan/standup/internal/platform/postgres"
)

// MsgDuplicateStandup is the generic conflict message. The service replaces it
// with a date-specific one.
const MsgDuplicateStandup = "Standup already exists"

// # Standup Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DB
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
Create inserts a standup and writes the generated ID back.

Returns:
  - error: apperr.Conflict on the (user_id, date) constraint, apperr.NotFound
    when the author was deleted concurrently, or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, standup *Standup) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s`,
		schema.Standups.Table, schema.Standups.UserID, schema.Standups.Content, schema.Standups.Date,
		schema.Standups.ID,
	)

	err := repository.db.QueryRow(context, query,
		standup.UserID,
		standup.Content,
		standup.Date.Time(),
	).Scan(&standup.ID)

	if err != nil {
		switch {
		case dberr.IsUniqueViolation(err) && dberr.ConstraintName(err) == schema.Standups.UniqueUserDate:
			return apperr.Conflict(MsgDuplicateStandup).WithCause(err)
		case dberr.IsForeignKeyViolation(err):
			return apperr.NotFound("User").WithCause(err)
		default:
			return fmt.Errorf("postgres_standup_repo_create_failed: %w", err)
		}
	}

	return nil
}

// ExistsOn reports whether the user already has a note for the day.
func (repository *PostgresRepository) ExistsOn(context context.Context, userID int64, day Day) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.Standups.Table, schema.Standups.UserID, schema.Standups.Date)

	var exists bool
	if err := repository.db.QueryRow(context, query, userID, day.Time()).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_standup_repo_exists_failed: %w", err)
	}
	return exists, nil
}

// ListOn returns the user's notes for one day.
func (repository *PostgresRepository) ListOn(context context.Context, userID int64, day Day) ([]*Standup, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s`,
		schema.Standups.SelectList(), schema.Standups.Table,
		schema.Standups.UserID, schema.Standups.Date, schema.Standups.ID)

	return repository.list(context, query, userID, day.Time())
}

// ListSince returns the user's notes from a day onwards, oldest first.
func (repository *PostgresRepository) ListSince(context context.Context, userID int64, from Day) ([]*Standup, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s >= $2 ORDER BY %s, %s`,
		schema.Standups.SelectList(), schema.Standups.Table,
		schema.Standups.UserID, schema.Standups.Date, schema.Standups.Date, schema.Standups.ID)

	return repository.list(context, query, userID, from.Time())
}

// # Helpers

func (repository *PostgresRepository) list(context context.Context, query string, args ...any) ([]*Standup, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_standup_repo_list_failed: %w", err)
	}
	defer rows.Close()

	standups := make([]*Standup, 0)
	for rows.Next() {
		standup, err := scanStandup(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_standup_repo_list_scan_failed: %w", err)
		}
		standups = append(standups, standup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_standup_repo_list_failed: %w", err)
	}

	return standups, nil
}

// scanStandup hydrates a [Standup] in [schema.StandupsTable.Columns] order.
func scanStandup(row pgx.Row) (*Standup, error) {
	var (
		standup Standup
		date    time.Time
	)

	if err := row.Scan(&standup.ID, &standup.UserID, &standup.Content, &date); err != nil {
		return nil, err
	}
	standup.Date = DayOf(date)

	return &standup, nil
}
