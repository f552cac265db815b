// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package users implements account management for the Standup API.

It owns the users table: listing and reading accounts, admin-only registration
and deletion, self-service email and password changes, and the startup seed of
the administrator account.

# Architecture

  - Entity: [User], the persisted account.
  - Repository: [Repository], implemented by [PostgresRepository].
  - Cache: [CachedIdentityFinder], an optional Redis read-through in front of
    the identity lookup used by the authorization gate.
  - Service / Handler: business rules and the HTTP delivery layer.
*/
package users

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/taibuivan/standup/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.Role  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity projects the account onto the fields the authorization gate needs.
func (user *User) Identity() *sec.Identity {
	return &sec.Identity{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// # Field Identifiers

const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldCurrentPassword = "current_password"
	FieldRole            = "role"
)

// # Password Rules

const (
	// MinPasswordLength is the minimum password length in characters.
	MinPasswordLength = 8
)

// NormalizeEmail trims surrounding space and applies Unicode case folding so
// that lookups are case-insensitive.
func NormalizeEmail(raw string) string {
	return cases.Fold().String(strings.TrimSpace(raw))
}
