// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package standups

import "context"

// # Standup Data Access

// Repository defines the data access contract for standups. Every read is
// scoped to one user.
type Repository interface {

	/*
		Create persists a new standup and fills in its ID.

		Returns:
		  - error: apperr.Conflict when the user already has a note for that day,
		    apperr.NotFound when the user no longer exists, or persistence failures
	*/
	Create(context context.Context, standup *Standup) error

	// ExistsOn reports whether the user already has a note for the day.
	ExistsOn(context context.Context, userID int64, day Day) (bool, error)

	// ListOn returns the user's notes for exactly one day.
	ListOn(context context.Context, userID int64, day Day) ([]*Standup, error)

	// ListSince returns the user's notes dated on or after from, oldest first.
	ListSince(context context.Context, userID int64, from Day) ([]*Standup, error)
}
