// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/standup/internal/platform/apperr"
	"github.com/taibuivan/standup/internal/platform/ctxutil"
	"github.com/taibuivan/standup/internal/platform/sec"
	"github.com/taibuivan/standup/internal/platform/validate"
)

// # Contracts & Types

// PasswordHasher is the part of [sec.PasswordHasher] the service depends on.
type PasswordHasher interface {
	Hash(plainTextPassword string) ([]byte, error)
	Verify(plainTextPassword string, existingHash []byte) bool
}

// IdentityCache drops cached identities after an account changes.
type IdentityCache interface {
	Evict(ctx context.Context, id int64) error
}

// Client-facing messages.
const (
	MsgNotSelf                 = "Forbidden: You don't have permission to update this user."
	MsgIncorrectPassword       = "Incorrect current password."
	MsgCurrentPasswordRequired = "Required to change email or password"
)

// Service implements account management use cases.
type Service struct {
	repository Repository
	hasher     PasswordHasher
	cache      IdentityCache
}

// NewService constructs a new users [Service].
//
// cache may be nil when no identity cache is configured.
func NewService(repository Repository, hasher PasswordHasher, cache IdentityCache) *Service {
	return &Service{repository: repository, hasher: hasher, cache: cache}
}

// # Read Operations

// Get returns one account or a NOT_FOUND error.
func (service *Service) Get(context context.Context, id int64) (*User, error) {
	return service.repository.FindByID(context, id)
}

// List returns every account.
func (service *Service) List(context context.Context) ([]*User, error) {
	return service.repository.List(context)
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Role     sec.Role // Empty means [sec.RoleUser].
}

/*
Register validates, hashes, and persists a brand new account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation, Conflict (email exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// ── 1. Normalize & validate ──
	email := NormalizeEmail(input.Email)
	role := input.Role
	if role == "" {
		role = sec.RoleUser
	}

	v := &validate.Validator{}
	v.Email(FieldEmail, email)
	validatePassword(v, FieldPassword, input.Password)
	v.Custom(FieldRole, !role.Valid(), "Must be one of: User, Admin")
	if err := v.Err(); err != nil {
		return nil, err
	}

	// ── 2. Hash ──
	hash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("users_service_hash_failed: %w", err)
	}

	// ── 3. Persist ──
	user := &User{Email: email, PasswordHash: hash, Role: role}
	if err := service.repository.Create(context, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", role.String()),
	)

	return user, nil
}

// # Self-service Update

// UpdateInput holds the optional changes to an account. Nil fields are left
// untouched.
type UpdateInput struct {
	Email           *string
	Password        *string
	CurrentPassword string
}

/*
Update changes the email and/or password of the caller's own account.

Description: The target must exist (404), must be the caller (403), and any
change requires the current password (400 when missing or wrong).

Parameters:
  - context: context.Context
  - callerID: int64 (authenticated user)
  - id: int64 (target account)
  - input: UpdateInput

Returns:
  - *User: The updated account
  - error: NotFound, Forbidden, Validation, BadRequest or Conflict
*/
func (service *Service) Update(context context.Context, callerID, id int64, input UpdateInput) (*User, error) {

	// ── 1. Load target ──
	user, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	// ── 2. Ownership ──
	if user.ID != callerID {
		return nil, apperr.Forbidden(MsgNotSelf)
	}

	if input.Email == nil && input.Password == nil {
		return user, nil
	}

	// ── 3. Re-authentication ──
	if input.CurrentPassword == "" {
		return nil, validate.RequiredError(FieldCurrentPassword, MsgCurrentPasswordRequired)
	}
	if !service.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		return nil, apperr.BadRequest(MsgIncorrectPassword)
	}

	// ── 4. Validate & apply ──
	v := &validate.Validator{}
	if input.Email != nil {
		user.Email = NormalizeEmail(*input.Email)
		v.Email(FieldEmail, user.Email)
	}
	if input.Password != nil {
		validatePassword(v, FieldPassword, *input.Password)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if input.Password != nil {
		hash, err := service.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("users_service_hash_failed: %w", err)
		}
		user.PasswordHash = hash
	}

	// ── 5. Persist ──
	if err := service.repository.Update(context, user); err != nil {
		return nil, err
	}
	service.evict(context, user.ID)

	return user, nil
}

// # Administration

// Delete removes an account and its standups.
func (service *Service) Delete(context context.Context, id int64) error {
	if err := service.repository.Delete(context, id); err != nil {
		return err
	}
	service.evict(context, id)

	ctxutil.GetLogger(context).InfoContext(context, "user_deleted", slog.Int64("user_id", id))
	return nil
}

/*
EnsureAdmin seeds the administrator account at startup.

Description: Does nothing when any Admin already exists. Otherwise creates an
Admin with the given credentials.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - bool: true if the account was created
  - error: Validation, Conflict (email taken by a non-admin) or storage errors
*/
func (service *Service) EnsureAdmin(context context.Context, email, password string) (bool, error) {
	logger := ctxutil.GetLogger(context)

	exists, err := service.repository.HasAdmin(context)
	if err != nil {
		return false, fmt.Errorf("users_service_ensure_admin_failed: %w", err)
	}
	if exists {
		logger.InfoContext(context, "admin_user_exists")
		return false, nil
	}

	admin, err := service.Register(context, RegisterInput{Email: email, Password: password, Role: sec.RoleAdmin})
	if err != nil {
		return false, fmt.Errorf("users_service_ensure_admin_failed: %w", err)
	}

	logger.InfoContext(context, "admin_user_created", slog.Int64("user_id", admin.ID))
	return true, nil
}

// # Helpers

func validatePassword(v *validate.Validator, field, password string) {
	v.MinLen(field, password, MinPasswordLength).MaxBytes(field, password, sec.MaxPasswordBytes)
}

// evict drops the cached identity. Failures are logged; the entry still
// expires after its TTL.
func (service *Service) evict(context context.Context, id int64) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Evict(context, id); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "identity_cache_evict_failed",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
	}
}
