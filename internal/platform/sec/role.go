// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # User Roles

// Role represents the authorization level granted to an account.
//
// The set is closed: only [RoleUser] and [RoleAdmin] exist. Values read from
// storage or from token claims must go through [ParseRole].
type Role string

const (
	// Default role for accounts created by an administrator
	RoleUser Role = "User"

	// Manages user accounts
	RoleAdmin Role = "Admin"
)

// ParseRole converts a raw string into a [Role], rejecting unknown values.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("sec: unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// String implements [fmt.Stringer].
func (r Role) String() string {
	return string(r)
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
// Unknown roles map to zero and therefore satisfy nothing.
func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
