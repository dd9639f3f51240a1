// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jherzog/microblog/internal/models"
)

// CreateUser inserts a new user and fills in its ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_digest, remember_digest, activation_digest,
		                    activated, activated_at, reset_digest, reset_sent_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.Name, user.PasswordDigest, user.RememberDigest, user.ActivationDigest,
		user.Activated, user.ActivatedAt, user.ResetDigest, user.ResetSentAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address. Emails are
// stored lower-cased, so the lookup key must be normalized by the caller.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpdateRememberDigest sets or clears the remember digest of a user.
// A NULL digest means the user has no active persistent login.
func (r *Repository) UpdateRememberDigest(ctx context.Context, id int64, digest sql.NullString) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET remember_digest = ?, updated_at = ? WHERE id = ?`,
		digest, time.Now().UTC(), id)
	return err
}

// UpdateUserPassword replaces a user's password digest.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordDigest string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_digest = ?, updated_at = ? WHERE id = ?`,
		passwordDigest, time.Now().UTC(), id)
	return err
}

// SetPasswordReset records a pending password reset digest and its
// issuance time.
func (r *Repository) SetPasswordReset(ctx context.Context, id int64, digest string, sentAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_digest = ?, reset_sent_at = ?, updated_at = ? WHERE id = ?`,
		digest, sentAt, time.Now().UTC(), id)
	return err
}

// ClearPasswordReset removes a pending password reset.
func (r *Repository) ClearPasswordReset(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_digest = NULL, reset_sent_at = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

// ActivateUser marks a user account as activated.
func (r *Repository) ActivateUser(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET activated = 1, activated_at = ?, updated_at = ? WHERE id = ?`,
		at, time.Now().UTC(), id)
	return err
}

// DeleteUser deletes a user by their ID. Posts and follow edges cascade
// at the schema level.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// ListUsers returns all users ordered by creation date (newest first).
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	return users, nil
}
