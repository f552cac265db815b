// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/standup/internal/platform/apperr"
	"github.com/taibuivan/standup/internal/platform/database/schema"
	"github.com/taibuivan/standup/internal/platform/dberr"
	"github.com/taibuivan/standup/internal/platform/postgres"
	"github.com/taibuivan/standup/internal/platform/sec"
)

const resourceUser = "User"

// MsgEmailTaken is returned when an email is already registered.
const MsgEmailTaken = "Email already registered"

// # User Repository

// PostgresRepository implements [Repository] and [sec.IdentityFinder] using pgx.
type PostgresRepository struct {
	db postgres.DB
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
FindByID retrieves a user record by primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Users.SelectList(), schema.Users.Table, schema.Users.ID)

	user, err := scanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceUser)
	}
	return user, nil
}

/*
FindByEmail retrieves a user record by its unique email address.

Parameters:
  - context: context.Context
  - email: string (already normalized)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Users.SelectList(), schema.Users.Table, schema.Users.Email)

	user, err := scanUser(repository.db.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, resourceUser)
	}
	return user, nil
}

// List returns every account ordered by ID.
func (repository *PostgresRepository) List(context context.Context) ([]*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`,
		schema.Users.SelectList(), schema.Users.Table, schema.Users.ID)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}

	return users, nil
}

// HasAdmin reports whether at least one Admin account exists.
func (repository *PostgresRepository) HasAdmin(context context.Context) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.Users.Table, schema.Users.Role)

	var exists bool
	if err := repository.db.QueryRow(context, query, sec.RoleAdmin.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_repo_has_admin_failed: %w", err)
	}
	return exists, nil
}

/*
Create persists a new user record into the users table.

Description: The ID and CreatedAt are assigned by the database and written back
into the entity.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict for a duplicate email, or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s`,
		schema.Users.Table, schema.Users.Email, schema.Users.Password, schema.Users.Role,
		schema.Users.ID, schema.Users.CreatedAt,
	)

	err := repository.db.QueryRow(context, query,
		user.Email,
		user.PasswordHash,
		user.Role.String(),
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(MsgEmailTaken).WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
Update overwrites the email and password hash of an existing account.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.NotFound, apperr.Conflict or update failures
*/
func (repository *PostgresRepository) Update(context context.Context, user *User) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.Users.Table, schema.Users.Email, schema.Users.Password, schema.Users.ID)

	tag, err := repository.db.Exec(context, query, user.ID, user.Email, user.PasswordHash)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(MsgEmailTaken).WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceUser)
	}

	return nil
}

// Delete removes the account row. Standups go with it (ON DELETE CASCADE).
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Users.Table, schema.Users.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceUser)
	}

	return nil
}

// # Identity Lookup

// FindIdentity implements [sec.IdentityFinder].
//
// It returns [sec.ErrIdentityNotFound] for unknown ids so the gate can treat a
// token for a deleted user as invalid.
func (repository *PostgresRepository) FindIdentity(context context.Context, id int64) (*sec.Identity, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.Users.ID, schema.Users.Email, schema.Users.Role, schema.Users.CreatedAt,
		schema.Users.Table, schema.Users.ID)

	var (
		identity sec.Identity
		rawRole  string
	)
	err := repository.db.QueryRow(context, query, id).Scan(
		&identity.ID,
		&identity.Email,
		&rawRole,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sec.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_identity_failed: %w", err)
	}

	identity.Role, err = sec.ParseRole(rawRole)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_identity_failed: %w", err)
	}

	return &identity, nil
}

// # Helpers

// scanUser hydrates a [User] in [schema.UsersTable.Columns] order and
// validates the stored role.
func scanUser(row pgx.Row) (*User, error) {
	var (
		user    User
		rawRole string
	)

	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &rawRole, &user.CreatedAt); err != nil {
		return nil, err
	}

	role, err := sec.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	user.Role = role

	return &user, nil
}
