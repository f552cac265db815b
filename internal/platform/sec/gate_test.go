// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/standup/internal/platform/sec"
)

// fakeIdentities is an in-memory IdentityFinder.
type fakeIdentities struct {
	byID  map[int64]*sec.Identity
	err   error
	calls int
}

func (f *fakeIdentities) FindIdentity(_ context.Context, id int64) (*sec.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	identity, ok := f.byID[id]
	if !ok {
		return nil, sec.ErrIdentityNotFound
	}
	return identity, nil
}

func newGate(t *testing.T, ttl time.Duration, identities *fakeIdentities) (*sec.Gate, *sec.TokenService) {
	t.Helper()
	tokens := newTokenService(t, "HS256", ttl)
	return sec.NewGate(tokens, identities), tokens
}

/*
TestGate_EndToEnd issues a 30 minute token for user 7 and authenticates before and after expiry.
*/
func TestGate_EndToEnd(t *testing.T) {
	identities := &fakeIdentities{byID: map[int64]*sec.Identity{
		7: {ID: 7, Email: "seven@example.com", Role: sec.RoleUser},
	}}
	gate, tokens := newGate(t, 30*time.Minute, identities)

	token, err := tokens.Issue(7, sec.RoleUser, issuedAt)
	require.NoError(t, err)

	// 1. Ten minutes in: authenticated as user 7
	identity, err := gate.Authenticate(context.Background(), token, issuedAt.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.ID)

	// 2. Thirty-one minutes in: expired, no lookup performed
	callsBefore := identities.calls
	_, err = gate.Authenticate(context.Background(), token, issuedAt.Add(31*time.Minute))
	assert.ErrorIs(t, err, sec.ErrExpired)
	assert.Equal(t, callsBefore, identities.calls)
}

/*
TestGate_UnknownUser treats a deleted account exactly like a forged token.
*/
func TestGate_UnknownUser(t *testing.T) {
	gate, tokens := newGate(t, time.Hour, &fakeIdentities{byID: map[int64]*sec.Identity{}})

	token, err := tokens.Issue(99, sec.RoleAdmin, issuedAt)
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), token, issuedAt)
	assert.ErrorIs(t, err, sec.ErrInvalidSignature)
}

/*
TestGate_LookupFailure propagates infrastructure errors distinct from token kinds.
*/
func TestGate_LookupFailure(t *testing.T) {
	dbDown := errors.New("connection refused")
	gate, tokens := newGate(t, time.Hour, &fakeIdentities{err: dbDown})

	token, err := tokens.Issue(7, sec.RoleUser, issuedAt)
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), token, issuedAt)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbDown)
	assert.NotErrorIs(t, err, sec.ErrInvalidSignature)
	assert.NotErrorIs(t, err, sec.ErrExpired)
}

/*
TestGate_TamperedToken never reaches the identity store.
*/
func TestGate_TamperedToken(t *testing.T) {
	identities := &fakeIdentities{byID: map[int64]*sec.Identity{7: {ID: 7, Role: sec.RoleUser}}}
	gate, tokens := newGate(t, time.Hour, identities)

	token, err := tokens.Issue(7, sec.RoleUser, issuedAt)
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), tamperSignature(token), issuedAt)
	assert.ErrorIs(t, err, sec.ErrInvalidSignature)
	assert.Zero(t, identities.calls)
}

/*
TestGate_Authorize checks the admin-only predicate for each role.
*/
func TestGate_Authorize(t *testing.T) {
	gate := sec.NewGate(nil, nil)

	tests := []struct {
		name     string
		identity *sec.Identity
		required sec.Role
		allowed  bool
	}{
		{"user_on_admin_route", &sec.Identity{ID: 1, Role: sec.RoleUser}, sec.RoleAdmin, false},
		{"admin_on_admin_route", &sec.Identity{ID: 2, Role: sec.RoleAdmin}, sec.RoleAdmin, true},
		{"user_on_user_route", &sec.Identity{ID: 1, Role: sec.RoleUser}, sec.RoleUser, true},
		{"admin_on_user_route", &sec.Identity{ID: 2, Role: sec.RoleAdmin}, sec.RoleUser, true},
		{"unknown_role", &sec.Identity{ID: 3, Role: sec.Role("Root")}, sec.RoleUser, false},
		{"anonymous", nil, sec.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(tt.identity, tt.required)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, sec.ErrForbidden)
			}
		})
	}
}

/*
TestGate_RoleFromToken shows that the admin check follows the role carried by the token holder.
*/
func TestGate_RoleFromToken(t *testing.T) {
	identities := &fakeIdentities{byID: map[int64]*sec.Identity{
		1: {ID: 1, Role: sec.RoleUser},
		2: {ID: 2, Role: sec.RoleAdmin},
	}}
	gate, tokens := newGate(t, time.Hour, identities)

	userToken, err := tokens.Issue(1, sec.RoleUser, issuedAt)
	require.NoError(t, err)
	adminToken, err := tokens.Issue(2, sec.RoleAdmin, issuedAt)
	require.NoError(t, err)

	user, err := gate.Authenticate(context.Background(), userToken, issuedAt)
	require.NoError(t, err)
	assert.ErrorIs(t, gate.Authorize(user, sec.RoleAdmin), sec.ErrForbidden)

	admin, err := gate.Authenticate(context.Background(), adminToken, issuedAt)
	require.NoError(t, err)
	assert.NoError(t, gate.Authorize(admin, sec.RoleAdmin))
}

/*
TestBearerToken extracts tokens from Authorization header values.
*/
func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"BEARER   abc  ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := sec.BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

/*
TestParseRole accepts only the two known roles.
*/
func TestParseRole(t *testing.T) {
	role, err := sec.ParseRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, role)

	role, err = sec.ParseRole("User")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, role)

	for _, raw := range []string{"", "admin", "member", "Root"} {
		_, err := sec.ParseRole(raw)
		assert.Error(t, err, raw)
	}
}
