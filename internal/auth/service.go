// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the login flow of the Standup API.

It exchanges an email and password for a signed, short-lived access token.

Architecture:

  - Service: Looks up the account, verifies the password and issues the token.
  - Handler: Accepts OAuth2 password-form or JSON credentials.

Unknown accounts and wrong passwords produce the same error, so callers cannot
discover which emails are registered.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/standup/internal/platform/apperr"
	"github.com/taibuivan/standup/internal/platform/constants"
	"github.com/taibuivan/standup/internal/platform/ctxutil"
	"github.com/taibuivan/standup/internal/platform/sec"
	"github.com/taibuivan/standup/internal/users"
)

// # Contracts & Types

// UserFinder is the part of [users.Repository] the login flow depends on.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
}

// TokenIssuer is the part of [sec.TokenService] the login flow depends on.
type TokenIssuer interface {
	Issue(userID int64, role sec.Role, now time.Time) (string, error)
}

// Token is the OAuth2-style login response.
type Token struct {
	AccessToken string `json:"access_token"`
	Type        string `json:"type"`
}

// Service implements the login use case.
type Service struct {
	users  UserFinder
	hasher users.PasswordHasher
	tokens TokenIssuer
	clock  func() time.Time

	// decoyHash is verified against when the account does not exist so both
	// failure paths spend the same bcrypt time.
	decoyHash []byte
}

// NewService constructs a new auth [Service].
//
// It hashes the decoy password up front and fails if the hasher cannot.
func NewService(finder UserFinder, hasher users.PasswordHasher, tokens TokenIssuer, clock func() time.Time) (*Service, error) {
	decoyHash, err := hasher.Hash("decoy-password-for-unknown-accounts")
	if err != nil {
		return nil, fmt.Errorf("auth_service_decoy_hash_failed: %w", err)
	}
	return &Service{
		users:     finder,
		hasher:    hasher,
		tokens:    tokens,
		clock:     clock,
		decoyHash: decoyHash,
	}, nil
}

// Login authenticates the user and returns a signed access token.
//
// # Returns
//   - A [Token] carrying the access token and the "Bearer" type.
//   - [sec.ErrInvalidCredentials] if the email is unknown or the password is wrong.
//
// # Flow
//  1. Lookup user by normalized email.
//  2. Verify password hash using bcrypt.
//  3. Issue a token naming the user's id and role.
func (service *Service) Login(context context.Context, email, password string) (*Token, error) {
	logger := ctxutil.GetLogger(context)

	// ── 1. Fetch Account ──
	user, err := service.users.FindByEmail(context, users.NormalizeEmail(email))
	if err != nil {
		if !apperr.HasCode(err, "NOT_FOUND") {
			return nil, fmt.Errorf("auth_service_find_user_failed: %w", err)
		}
		service.hasher.Verify(password, service.decoyHash)
		logger.InfoContext(context, "login_failed", slog.String("reason", "unknown_account"))
		return nil, sec.ErrInvalidCredentials
	}

	// ── 2. Security Verification ──
	if !service.hasher.Verify(password, user.PasswordHash) {
		logger.InfoContext(context, "login_failed",
			slog.String("reason", "wrong_password"),
			slog.Int64("user_id", user.ID),
		)
		return nil, sec.ErrInvalidCredentials
	}

	// ── 3. Token Issuance ──
	accessToken, err := service.tokens.Issue(user.ID, user.Role, service.clock())
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	logger.InfoContext(context, "login_succeeded", slog.Int64("user_id", user.ID))

	return &Token{AccessToken: accessToken, Type: constants.TokenType}, nil
}
