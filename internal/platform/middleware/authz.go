// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/standup/internal/platform/apperr"
	"github.com/taibuivan/standup/internal/platform/constants"
	"github.com/taibuivan/standup/internal/platform/ctxutil"
	"github.com/taibuivan/standup/internal/platform/respond"
	"github.com/taibuivan/standup/internal/platform/sec"
)

// Client-facing messages for authentication and authorization failures.
const (
	MsgInvalidCredentials = "Could not validate credentials"
	MsgTokenExpired       = "Token expired"
	MsgNotAuthenticated   = "Not authenticated"
	MsgForbidden          = "You are not authorized to perform this operation."
)

// Authenticator is the part of [sec.Gate] the middleware depends on.
//
// # Why an interface?
//
// It decouples the middleware from the concrete gate so handler tests can
// inject a stub that returns fixed identities.
type Authenticator interface {
	Authenticate(ctx context.Context, token string, now time.Time) (*sec.Identity, error)
}

// Authenticate resolves the bearer token, if any, to an identity.
//
// It never rejects a request itself. A missing or unusable token leaves the
// request anonymous, so public routes ignore stale headers. The reason a
// token was refused is kept in the context and reported by [RequireAuth] and
// [RequireRole].
//
// # Flow
//  1. No Authorization header: the request proceeds as anonymous.
//  2. Header present: it must be "Bearer <token>" and the token must pass the gate.
//  3. The resolved [*sec.Identity] is injected into the request context.
//
// # Parameters
//   - gate: The Authenticator (normally [*sec.Gate]).
//   - clock: Source of "now" for expiry checks.
func Authenticate(gate Authenticator, clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ──
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──
			token, ok := sec.BearerToken(authHeader)
			if !ok {
				next.ServeHTTP(writer, withAuthFailure(request, apperr.Unauthorized(MsgInvalidCredentials)))
				return
			}

			// ── 3. Token Verification and Identity Lookup ──
			identity, err := gate.Authenticate(request.Context(), token, clock())
			if err != nil {
				failure := AuthError(err)
				if apperr.HasCode(failure, "INTERNAL_ERROR") {
					ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "identity_lookup_failed",
						slog.String("error", err.Error()),
					)
				}
				next.ServeHTTP(writer, withAuthFailure(request, failure))
				return
			}

			// ── 4. Context Injection ──
			if holder := identityHolderFrom(request.Context()); holder != nil {
				holder.userID = identity.ID
			}
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, unauthenticated(request))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check that an identity exists in context (implies AuthN).
//  2. Check the role with [sec.Authorize]; Admin satisfies User.
//  3. If insufficient, abort with HTTP 403 Forbidden.
func RequireRole(role sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ──
			if identity == nil {
				respond.Error(writer, request, unauthenticated(request))
				return
			}

			// ── 2. Authorization Check ──
			if err := sec.Authorize(identity, role); err != nil {
				respond.Error(writer, request, AuthError(err))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// unauthenticated explains why a protected route has no identity: the refused
// token's reason when one was sent, otherwise "Not authenticated".
func unauthenticated(request *http.Request) error {
	if failure, ok := request.Context().Value(authFailureKey{}).(error); ok {
		return failure
	}
	return apperr.Unauthorized(MsgNotAuthenticated)
}

type authFailureKey struct{}

func withAuthFailure(request *http.Request, failure error) *http.Request {
	return request.WithContext(context.WithValue(request.Context(), authFailureKey{}, failure))
}

// AuthError maps the sentinel errors of package sec to client responses.
// Anything unrecognised is an infrastructure failure.
func AuthError(err error) error {
	switch {
	case errors.Is(err, sec.ErrExpired):
		return apperr.Unauthorized(MsgTokenExpired).WithCause(err)
	case errors.Is(err, sec.ErrInvalidSignature), errors.Is(err, sec.ErrMalformed):
		return apperr.Unauthorized(MsgInvalidCredentials).WithCause(err)
	case errors.Is(err, sec.ErrForbidden):
		return apperr.Forbidden(MsgForbidden).WithCause(err)
	case errors.Is(err, sec.ErrInvalidCredentials):
		return apperr.InvalidCredentials().WithCause(err)
	default:
		return apperr.Internal(err)
	}
}

// # Identity capture for access logs

type identityHolderKey struct{}

type identityHolder struct {
	userID int64
}

func withIdentityHolder(ctx context.Context, holder *identityHolder) context.Context {
	return context.WithValue(ctx, identityHolderKey{}, holder)
}

func identityHolderFrom(ctx context.Context) *identityHolder {
	holder, _ := ctx.Value(identityHolderKey{}).(*identityHolder)
	return holder
}
