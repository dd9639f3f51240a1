// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package token generates unguessable random secrets used as remember,
// activation and password reset tokens.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Length is the number of random bytes per token (256 bits of entropy).
const Length = 32

// New returns a fresh URL-safe random token. Every call draws
// independently from crypto/rand; values are never reused.
func New() (string, error) {
	bytes := make([]byte, Length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
