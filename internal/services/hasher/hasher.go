// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package hasher provides one-way hashing and verification for secrets
// (passwords, remember tokens, activation and reset tokens).
package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes secrets with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// New creates a Hasher. A cost of 0 selects bcrypt.DefaultCost. Lower
// costs (bcrypt.MinCost) are meant for tests only and must be configured
// explicitly.
func New(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing secret: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. An empty digest is a
// normal state (no secret ever set) and verifies as false, never as an
// error. The comparison is constant-time per bcrypt.
func (h *Hasher) Verify(secret, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
