// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns created by the SQL migrations.
//
// Repositories build their statements from these definitions so a column
// rename only has to be made in one place.
package schema

import "strings"

// UsersTable represents the 'users' table
type UsersTable struct {
	Table     string
	ID        string
	Email     string
	Password  string
	Role      string
	CreatedAt string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:     "users",
	ID:        "id",
	Email:     "email",
	Password:  "password",
	Role:      "role",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{t.ID, t.Email, t.Password, t.Role, t.CreatedAt}
}

// SelectList joins [UsersTable.Columns] for use in a SELECT or RETURNING clause.
func (t UsersTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
