// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/jherzog/microblog/internal/models"
)

// CreatePost inserts a new post and fills in its ID. A zero CreatedAt is
// replaced with the current time; tests backdate it to control ordering.
func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, content, created_at) VALUES (?, ?, ?)`,
		post.UserID, post.Content, post.CreatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

// GetPostByID retrieves a post by its ID.
func (r *Repository) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.GetContext(ctx, &post, `SELECT * FROM posts WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &post, nil
}

// ListPostsByUser returns a user's own posts, newest first.
func (r *Repository) ListPostsByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts,
		`SELECT * FROM posts WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Feed returns every post authored by the user or by anyone the user
// follows, newest first. This is a single set-membership query so read
// cost does not fan out over the followed set in application code.
func (r *Repository) Feed(ctx context.Context, userID int64) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts,
		`SELECT * FROM posts
		 WHERE user_id IN (SELECT followed_id FROM relationships WHERE follower_id = ?)
		    OR user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	return posts, nil
}
