// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Identity is the resolved account behind a valid token.
//
// It is owned by the persistence layer; the gate only reads it.
type Identity struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IdentityFinder loads an [Identity] by id.
//
// Implementations return [ErrIdentityNotFound] when the id is unknown and a
// wrapped error for infrastructure failures.
type IdentityFinder interface {
	FindIdentity(ctx context.Context, id int64) (*Identity, error)
}

// TokenVerifier is the part of [TokenService] the gate depends on.
type TokenVerifier interface {
	Verify(tokenString string, now time.Time) (*Claims, error)
}

// Gate resolves bearer tokens to identities and enforces roles.
//
// # Flow
//  1. Authenticate: verify the token, then load the identity it names.
//  2. Authorize: a pure role predicate on the identity from step 1.
type Gate struct {
	tokens     TokenVerifier
	identities IdentityFinder
}

// NewGate constructs a [Gate].
func NewGate(tokens TokenVerifier, identities IdentityFinder) *Gate {
	return &Gate{tokens: tokens, identities: identities}
}

// Authenticate verifies a token as of now and returns the current identity.
//
// A token naming a deleted or unknown user fails with [ErrInvalidSignature],
// the same as a forged token. Lookup failures other than "not found" are
// returned wrapped and must be treated as server errors.
func (gate *Gate) Authenticate(ctx context.Context, token string, now time.Time) (*Identity, error) {
	claims, err := gate.tokens.Verify(token, now)
	if err != nil {
		return nil, err
	}

	identity, err := gate.identities.FindIdentity(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("sec_gate_identity_lookup_failed: %w", err)
	}
	if identity == nil {
		return nil, ErrInvalidSignature
	}

	return identity, nil
}

// Authorize reports [ErrForbidden] unless identity holds at least the
// required role. It performs no lookups.
func (gate *Gate) Authorize(identity *Identity, required Role) error {
	return Authorize(identity, required)
}

// Authorize is the stateless form of [Gate.Authorize], used by middleware
// that only sees the identity already resolved for the request.
func Authorize(identity *Identity, required Role) error {
	if identity == nil || !identity.Role.AtLeast(required) {
		return ErrForbidden
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
