// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/jherzog/microblog/internal/repository"
	"github.com/jherzog/microblog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRelationship_Idempotent(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	a := testutil.NewTestUser(t, repo, "michael")
	b := testutil.NewTestUser(t, repo, "archer")

	require.NoError(t, repo.CreateRelationship(ctx, a.ID, b.ID))
	require.NoError(t, repo.CreateRelationship(ctx, a.ID, b.ID))

	count, err := repo.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCreateRelationship_UnknownUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	a := testutil.NewTestUser(t, repo, "michael")

	// Both ends must reference existing users.
	err := repo.CreateRelationship(ctx, a.ID, 999)

	assert.Error(t, err)
}

func TestGetRelationship(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	a := testutil.NewTestUser(t, repo, "michael")
	b := testutil.NewTestUser(t, repo, "archer")

	require.NoError(t, repo.CreateRelationship(ctx, a.ID, b.ID))

	rel, err := repo.GetRelationship(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, rel.FollowerID)
	assert.Equal(t, b.ID, rel.FollowedID)
	assert.NotZero(t, rel.CreatedAt)

	_, err = repo.GetRelationship(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCounts(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	a := testutil.NewTestUser(t, repo, "michael")
	b := testutil.NewTestUser(t, repo, "archer")
	c := testutil.NewTestUser(t, repo, "lana")

	require.NoError(t, repo.CreateRelationship(ctx, a.ID, c.ID))
	require.NoError(t, repo.CreateRelationship(ctx, b.ID, c.ID))

	followers, err := repo.CountFollowers(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, followers)

	following, err := repo.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, following)

	following, err = repo.CountFollowing(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, following)
}
