// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package graph maintains the directed follow relation between users and
// assembles each user's content feed.
package graph

import (
	"context"
	"fmt"

	"github.com/jherzog/microblog/internal/models"
)

// Store is the persistence collaborator this service consumes.
type Store interface {
	CreateRelationship(ctx context.Context, followerID, followedID int64) error
	DeleteRelationship(ctx context.Context, followerID, followedID int64) error
	HasRelationship(ctx context.Context, followerID, followedID int64) (bool, error)
	Feed(ctx context.Context, userID int64) ([]models.Post, error)
}

// Service exposes follow graph and feed operations.
type Service struct {
	store Store
}

// NewService creates a graph service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Follow creates the edge follower -> followed. Following a user twice
// is a no-op; following yourself is not rejected.
func (s *Service) Follow(ctx context.Context, followerID, followedID int64) error {
	if err := s.store.CreateRelationship(ctx, followerID, followedID); err != nil {
		return fmt.Errorf("creating follow edge: %w", err)
	}
	return nil
}

// Unfollow removes the edge follower -> followed if present; removing a
// missing edge is a no-op.
func (s *Service) Unfollow(ctx context.Context, followerID, followedID int64) error {
	if err := s.store.DeleteRelationship(ctx, followerID, followedID); err != nil {
		return fmt.Errorf("deleting follow edge: %w", err)
	}
	return nil
}

// Following reports whether follower follows candidate.
func (s *Service) Following(ctx context.Context, followerID, candidateID int64) (bool, error) {
	ok, err := s.store.HasRelationship(ctx, followerID, candidateID)
	if err != nil {
		return false, fmt.Errorf("checking follow edge: %w", err)
	}
	return ok, nil
}

// Feed returns every post authored by the user or by anyone the user
// follows, ordered by creation time descending. The store computes this
// as one set-membership query, never a loop over the followed set.
func (s *Service) Feed(ctx context.Context, userID int64) ([]models.Post, error) {
	posts, err := s.store.Feed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("assembling feed: %w", err)
	}
	return posts, nil
}
