// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/standup/internal/auth"
	"github.com/taibuivan/standup/internal/platform/apperr"
	"github.com/taibuivan/standup/internal/platform/sec"
	"github.com/taibuivan/standup/internal/users"
)

var loginTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// stubFinder serves accounts keyed by email.
type stubFinder struct {
	accounts map[string]*users.User
	err      error
}

func (finder *stubFinder) FindByEmail(_ context.Context, email string) (*users.User, error) {
	if finder.err != nil {
		return nil, finder.err
	}
	user, ok := finder.accounts[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

type harness struct {
	service *auth.Service
	tokens  *sec.TokenService
	finder  *stubFinder
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	hasher := sec.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	tokens, err := sec.NewTokenService("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	finder := &stubFinder{accounts: map[string]*users.User{
		"jane@example.com": {ID: 7, Email: "jane@example.com", PasswordHash: hash, Role: sec.RoleAdmin},
	}}

	clock := func() time.Time { return loginTime }
	service, err := auth.NewService(finder, hasher, tokens, clock)
	require.NoError(t, err)
	return &harness{
		service: service,
		tokens:  tokens,
		finder:  finder,
	}
}

// brokenHasher cannot produce hashes.
type brokenHasher struct{}

func (brokenHasher) Hash(string) ([]byte, error) { return nil, errors.New("entropy source unavailable") }
func (brokenHasher) Verify(string, []byte) bool { return false }

/*
TestNewService_HasherFailure refuses to build a service without a decoy hash.
*/
func TestNewService_HasherFailure(t *testing.T) {
	tokens, err := sec.NewTokenService("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	service, err := auth.NewService(&stubFinder{}, brokenHasher{}, tokens, time.Now)

	assert.Nil(t, service)
	assert.ErrorContains(t, err, "auth_service_decoy_hash_failed")
	assert.ErrorContains(t, err, "entropy source unavailable")
}

/*
TestService_Login issues a token that names the user and role.
*/
func TestService_Login(t *testing.T) {
	h := newHarness(t)

	token, err := h.service.Login(context.Background(), "  Jane@Example.COM ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.Type)

	claims, err := h.tokens.Verify(token.AccessToken, loginTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, sec.RoleAdmin, claims.Role)
	assert.Equal(t, loginTime.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

/*
TestService_Login_Failures returns the same error for unknown accounts and
wrong passwords.
*/
func TestService_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown_email", "nobody@example.com", "correct-horse"},
		{"wrong_password", "jane@example.com", "wrong-horse"},
		{"empty_password", "jane@example.com", ""},
	}

	h := newHarness(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := h.service.Login(context.Background(), tt.email, tt.password)
			assert.Nil(t, token)
			assert.ErrorIs(t, err, sec.ErrInvalidCredentials)
		})
	}
}

/*
TestService_Login_StoreFailure does not disguise infrastructure errors.
*/
func TestService_Login_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.finder.err = apperr.Internal(errors.New("connection refused"))

	_, err := h.service.Login(context.Background(), "jane@example.com", "correct-horse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sec.ErrInvalidCredentials)
	assert.True(t, apperr.HasCode(err, "INTERNAL_ERROR"))
}

// # HTTP

func postLogin(router http.Handler, contentType, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	request.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_Login accepts the OAuth2 password form and JSON bodies.
*/
func TestHandler_Login(t *testing.T) {
	router := auth.NewHandler(newHarness(t).service).Routes()

	form := url.Values{"username": {"jane@example.com"}, "password": {"correct-horse"}}

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"form", "application/x-www-form-urlencoded", form.Encode()},
		{"json_username", "application/json", `{"username":"jane@example.com","password":"correct-horse"}`},
		{"json_email", "application/json; charset=utf-8", `{"email":"jane@example.com","password":"correct-horse"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postLogin(router, tt.contentType, tt.body)
			require.Equal(t, http.StatusOK, recorder.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, "Bearer", body["type"])
			assert.NotEmpty(t, body["access_token"])
			assert.Len(t, body, 2)
		})
	}
}

/*
TestHandler_Login_Rejected maps bad input to 400 and bad credentials to 403.
*/
func TestHandler_Login_Rejected(t *testing.T) {
	router := auth.NewHandler(newHarness(t).service).Routes()

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantError   string
	}{
		{"wrong_password", "application/x-www-form-urlencoded", "username=jane%40example.com&password=nope", http.StatusForbidden, "Invalid Credentials"},
		{"unknown_user", "application/json", `{"username":"ghost@example.com","password":"correct-horse"}`, http.StatusForbidden, "Invalid Credentials"},
		{"missing_password", "application/x-www-form-urlencoded", "username=jane%40example.com", http.StatusBadRequest, ""},
		{"broken_json", "application/json", `{"username":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postLogin(router, tt.contentType, tt.body)
			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantError != "" {
				var body struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body.Error)
			}
		})
	}
}
