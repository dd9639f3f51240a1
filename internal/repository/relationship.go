// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/jherzog/microblog/internal/models"
)

// CreateRelationship creates the follow edge follower -> followed.
// The composite primary key plus INSERT OR IGNORE makes this idempotent;
// self-edges are not rejected here.
func (r *Repository) CreateRelationship(ctx context.Context, followerID, followedID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO relationships (follower_id, followed_id, created_at) VALUES (?, ?, ?)`,
		followerID, followedID, time.Now().UTC())
	return err
}

// DeleteRelationship removes the follow edge follower -> followed.
// Deleting a missing edge is a no-op.
func (r *Repository) DeleteRelationship(ctx context.Context, followerID, followedID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM relationships WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID)
	return err
}

// GetRelationship retrieves the follow edge follower -> followed.
func (r *Repository) GetRelationship(ctx context.Context, followerID, followedID int64) (*models.Relationship, error) {
	var rel models.Relationship
	err := r.db.GetContext(ctx, &rel,
		`SELECT * FROM relationships WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &rel, nil
}

// HasRelationship reports whether follower follows followed.
func (r *Repository) HasRelationship(ctx context.Context, followerID, followedID int64) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM relationships WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountFollowing returns how many users the given user follows.
func (r *Repository) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM relationships WHERE follower_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountFollowers returns how many users follow the given user.
func (r *Repository) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM relationships WHERE followed_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return count, nil
}
