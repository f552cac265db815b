// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "errors"

// # Outcome Kinds
//
// These are expected, per-request outcomes. They are returned as values and
// compared with [errors.Is]; none of them indicates an infrastructure fault.

var (
	// ErrInvalidCredentials is returned by login when the email is unknown or
	// the password does not match. Both cases share one value on purpose so
	// callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("sec: invalid credentials")

	// ErrInvalidSignature covers tampered tokens, tokens signed with another
	// secret or algorithm, and tokens whose subject no longer exists.
	ErrInvalidSignature = errors.New("sec: invalid token signature")

	// ErrMalformed is returned when a token cannot be parsed into a claim set.
	ErrMalformed = errors.New("sec: malformed token")

	// ErrExpired is returned for a correctly signed token past its expiry.
	ErrExpired = errors.New("sec: token expired")

	// ErrForbidden is returned when an authenticated identity lacks the role
	// required by an operation.
	ErrForbidden = errors.New("sec: insufficient role")

	// ErrIdentityNotFound is returned by an [IdentityFinder] when no identity
	// exists for the requested id.
	ErrIdentityNotFound = errors.New("sec: identity not found")
)
