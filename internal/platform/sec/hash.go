// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used when none is configured.
const DefaultHashCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordHasher derives and checks salted one-way password hashes.
//
// Each call to [PasswordHasher.Hash] draws a fresh random salt, which bcrypt
// embeds in the returned bytes, so the same password never hashes twice to
// the same value. The zero value is not usable; construct with
// [NewPasswordHasher].
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
// Out-of-range costs are clamped to bcrypt's supported bounds.
func NewPasswordHasher(cost int) *PasswordHasher {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost returns the configured bcrypt work factor.
func (hasher *PasswordHasher) Cost() int {
	return hasher.cost
}

// Hash hashes a plain-text password. The result is safe to persist.
func (hasher *PasswordHasher) Hash(plainTextPassword string) ([]byte, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return hashedBytes, nil
}

// Verify compares a plain-text password with a stored hash in constant time.
//
// A mismatch, an empty hash, or a corrupt hash all yield false. A wrong
// password is an expected outcome and is never reported as an error.
func (hasher *PasswordHasher) Verify(plainTextPassword string, existingHash []byte) bool {
	if len(existingHash) == 0 {
		return false
	}
	err := bcrypt.CompareHashAndPassword(existingHash, []byte(plainTextPassword))
	return err == nil
}
