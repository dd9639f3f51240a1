// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package graph_test

import (
	"context"
	"testing"
	"time"

	"github.com/jherzog/microblog/internal/repository"
	"github.com/jherzog/microblog/internal/services/graph"
	"github.com/jherzog/microblog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*graph.Service, *repository.Repository) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return graph.NewService(repo), repo
}

func TestFollowAndUnfollow(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a := testutil.NewTestUser(t, repo, "michael")
	b := testutil.NewTestUser(t, repo, "archer")

	require.NoError(t, svc.Follow(ctx, a.ID, b.ID))

	following, err := svc.Following(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// The edge is directed.
	following, err = svc.Following(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, svc.Unfollow(ctx, a.ID, b.ID))

	following, err = svc.Following(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollow_Twice(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a := testutil.NewTestUser(t, repo, "michael")
	b := testutil.NewTestUser(t, repo, "archer")

	require.NoError(t, svc.Follow(ctx, a.ID, b.ID))
	require.NoError(t, svc.Follow(ctx, a.ID, b.ID))

	count, err := repo.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestFollow_Self(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a := testutil.NewTestUser(t, repo, "michael")

	require.NoError(t, svc.Follow(ctx, a.ID, a.ID))

	following, err := svc.Following(ctx, a.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestUnfollow_MissingEdge(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a := testutil.NewTestUser(t, repo, "michael")
	b := testutil.NewTestUser(t, repo, "archer")

	require.NoError(t, svc.Unfollow(ctx, a.ID, b.ID))
}

func TestFeed(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a := testutil.NewTestUser(t, repo, "michael")
	b := testutil.NewTestUser(t, repo, "archer")
	c := testutil.NewTestUser(t, repo, "lana")

	require.NoError(t, svc.Follow(ctx, a.ID, b.ID))

	base := time.Now().UTC().Add(-time.Hour)
	p1 := testutil.NewTestPost(t, repo, a.ID, "own post", base.Add(1*time.Minute))
	p2 := testutil.NewTestPost(t, repo, b.ID, "followed post", base.Add(2*time.Minute))
	testutil.NewTestPost(t, repo, c.ID, "stranger post", base.Add(3*time.Minute))

	feed, err := svc.Feed(ctx, a.ID)

	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, p2.ID, feed[0].ID)
	assert.Equal(t, p1.ID, feed[1].ID)
}

func TestFeed_DescendingOrder(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a := testutil.NewTestUser(t, repo, "michael")

	base := time.Now().UTC().Add(-time.Hour)
	for i := range 5 {
		testutil.NewTestPost(t, repo, a.ID, "post", base.Add(time.Duration(i)*time.Minute))
	}

	feed, err := svc.Feed(ctx, a.ID)

	require.NoError(t, err)
	require.Len(t, feed, 5)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i-1].CreatedAt.Before(feed[i].CreatedAt))
	}
}

func TestFeed_Empty(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a := testutil.NewTestUser(t, repo, "michael")

	feed, err := svc.Feed(ctx, a.ID)

	require.NoError(t, err)
	assert.Empty(t, feed)
}
