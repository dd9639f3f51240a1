// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// PasswordResetTTL is how long a password reset token stays valid.
const PasswordResetTTL = 2 * time.Hour

// User is an account record. All secret-bearing columns hold bcrypt
// digests, never the raw secret. A NULL remember_digest means the user
// has no active persistent login.
type User struct { //nolint:govet // fieldalignment not critical for models
	ID               int64          `db:"id" json:"id"`
	Email            string         `db:"email" json:"email"`
	Name             string         `db:"name" json:"name"`
	PasswordDigest   string         `db:"password_digest" json:"-"`
	RememberDigest   sql.NullString `db:"remember_digest" json:"-"`
	ActivationDigest sql.NullString `db:"activation_digest" json:"-"`
	Activated        bool           `db:"activated" json:"activated"`
	ActivatedAt      sql.NullTime   `db:"activated_at" json:"activated_at"`
	ResetDigest      sql.NullString `db:"reset_digest" json:"-"`
	ResetSentAt      sql.NullTime   `db:"reset_sent_at" json:"-"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// PasswordResetExpired reports whether the stored reset token is past its
// window. A user without a pending reset counts as expired.
func (u *User) PasswordResetExpired() bool {
	if !u.ResetSentAt.Valid {
		return true
	}
	return time.Since(u.ResetSentAt.Time) > PasswordResetTTL
}
