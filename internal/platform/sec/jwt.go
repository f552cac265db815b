// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, the
// Authorization Gate) from the domain logic. Domain packages depend on the
// small interfaces declared here ([IdentityFinder], [TokenVerifier]) and never
// on the signing material itself.
package sec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the payload embedded inside a session token.
//
// The custom claim names match the tokens issued by earlier versions of the
// service so that any standard JWT verifier holding the secret can read them.
type Claims struct {
	jwt.RegisteredClaims

	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

// TokenService issues and verifies HMAC-signed session tokens.
//
// Exactly one algorithm is configured server-side. Tokens presenting any
// other algorithm in their header are rejected, so there is no negotiation
// and no downgrade path. TokenService is immutable and safe for concurrent use.
type TokenService struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	timeToLive time.Duration
}

// NewTokenService creates a new TokenService.
//
// # Parameters
//   - secret: The shared HMAC key. Must not be empty.
//   - algorithm: One of HS256, HS384, HS512.
//   - timeToLive: Lifetime of issued tokens. Must be positive.
func NewTokenService(secret, algorithm string, timeToLive time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: signing secret is empty")
	}
	if timeToLive <= 0 {
		return nil, fmt.Errorf("sec: token ttl must be positive, got %s", timeToLive)
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("sec: unsupported signing algorithm %q", algorithm)
	}

	return &TokenService{
		secret:     []byte(secret),
		method:     method,
		timeToLive: timeToLive,
	}, nil
}

// TTL returns the lifetime applied to issued tokens.
func (service *TokenService) TTL() time.Duration {
	return service.timeToLive
}

// Issue creates a signed token for a user, expiring at now + TTL.
func (service *TokenService) Issue(userID int64, role Role, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.timeToLive)),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(service.method, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and expiry of a token as of now.
//
// # Flow
//  1. Structure: three dot-separated base64url segments.
//  2. Signature: HMAC over "header.payload" with the configured algorithm,
//     before any segment is decoded.
//  3. Claims: strict decoding, expiry and required fields.
//
// # Returns
//   - The embedded claims on success.
//   - [ErrMalformed] if the token is not a compact JWS, or is correctly signed
//     but lacks required claims.
//   - [ErrInvalidSignature] if the signature or algorithm does not match. Any
//     change to a signed token lands here.
//   - [ErrExpired] if the signature is valid but now is at or past expiry.
func (service *TokenService) Verify(tokenString string, now time.Time) (*Claims, error) {

	// ── 1. Structure ──
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || !isBase64URL(tokenString) {
		return nil, ErrMalformed
	}

	// ── 2. Signature ──
	signature, err := segmentEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if err := service.method.Verify(parts[0]+"."+parts[1], signature, service.secret); err != nil {
		return nil, ErrInvalidSignature
	}

	// ── 3. Claims ──
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return service.secret, nil },
		jwt.WithValidMethods([]string{service.method.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, classify(err)
	}

	if claims.UserID == 0 || !claims.Role.Valid() {
		return nil, ErrMalformed
	}

	return claims, nil
}

// segmentEncoding rejects non-zero padding bits, so every signature has
// exactly one encoding.
var segmentEncoding = base64.RawURLEncoding.Strict()

// isBase64URL reports whether s only holds base64url characters and dots.
func isBase64URL(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// classify maps a jwt library error onto exactly one outcome kind. It only
// runs once the signature has been checked, so decoding failures here mean
// the issuer signed an unusable claim set.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrMalformed
	default:
		return ErrInvalidSignature
	}
}
