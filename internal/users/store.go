// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import "context"

// # User Data Access

// Repository defines the data access contract for user accounts.
//
// Lookups return a NOT_FOUND [apperr.AppError] for unknown accounts and
// writes return CONFLICT when the email is already taken.
type Repository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id int64) (*User, error)

	/*
		FindByEmail returns the account with the given (normalized) email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	// List returns every account ordered by ID.
	List(context context.Context) ([]*User, error)

	// HasAdmin reports whether at least one Admin account exists.
	HasAdmin(context context.Context) (bool, error)

	/*
		Create persists a brand-new account and fills in its ID and CreatedAt.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict when the email exists, or persistence failures
	*/
	Create(context context.Context, user *User) error

	// Update persists the email and password hash of an existing account.
	Update(context context.Context, user *User) error

	// Delete removes the account and, through the foreign key, its standups.
	Delete(context context.Context, id int64) error
}
