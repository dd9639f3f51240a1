// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jherzog/microblog/internal/database"
	"github.com/jherzog/microblog/internal/models"
	"github.com/jherzog/microblog/internal/repository"
	"github.com/jherzog/microblog/internal/services/hasher"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Password is the plaintext password all fixture users share.
const Password = "password123"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestHasher returns a hasher at the minimum bcrypt cost to keep
// tests fast.
func NewTestHasher(t *testing.T) *hasher.Hasher {
	t.Helper()
	return hasher.New(bcrypt.MinCost)
}

// NewTestUser creates an activated user with a unique email and the
// shared fixture password.
func NewTestUser(t *testing.T, repo *repository.Repository, name string) *models.User {
	t.Helper()
	ctx := context.Background()

	digest, err := NewTestHasher(t).Hash(Password)
	require.NoError(t, err)

	user := &models.User{
		Email:          fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()),
		Name:           name,
		PasswordDigest: digest,
		Activated:      true,
	}
	require.NoError(t, repo.CreateUser(ctx, user))
	return user
}

// NewTestPost creates a post for a user at the given creation time.
func NewTestPost(t *testing.T, repo *repository.Repository, userID int64, content string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:    userID,
		Content:   content,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.CreatePost(context.Background(), post))
	return post
}
