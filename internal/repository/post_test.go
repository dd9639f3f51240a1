// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jherzog/microblog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "michael")
	post := testutil.NewTestPost(t, repo, user.ID, "hello", time.Now().UTC())

	assert.NotZero(t, post.ID)

	stored, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestListPostsByUser_NewestFirst(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "michael")
	base := time.Now().UTC().Add(-time.Hour)
	old := testutil.NewTestPost(t, repo, user.ID, "old", base)
	recent := testutil.NewTestPost(t, repo, user.ID, "recent", base.Add(time.Minute))

	posts, err := repo.ListPostsByUser(ctx, user.ID)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, recent.ID, posts[0].ID)
	assert.Equal(t, old.ID, posts[1].ID)
}

func TestFeed_SetMembership(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	a := testutil.NewTestUser(t, repo, "michael")
	b := testutil.NewTestUser(t, repo, "archer")
	c := testutil.NewTestUser(t, repo, "lana")
	require.NoError(t, repo.CreateRelationship(ctx, a.ID, b.ID))

	base := time.Now().UTC().Add(-time.Hour)
	p1 := testutil.NewTestPost(t, repo, a.ID, "p1", base.Add(1*time.Minute))
	p2 := testutil.NewTestPost(t, repo, b.ID, "p2", base.Add(2*time.Minute))
	testutil.NewTestPost(t, repo, c.ID, "p3", base.Add(3*time.Minute))

	feed, err := repo.Feed(ctx, a.ID)

	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, p2.ID, feed[0].ID)
	assert.Equal(t, p1.ID, feed[1].ID)
}
