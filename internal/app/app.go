// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package app composes the services into the narrow surface the web
// layer calls: credential login with optional persistence, session
// resolution, the follow graph and the feed.
package app

import (
	"context"
	"errors"

	"github.com/jherzog/microblog/internal/models"
	"github.com/jherzog/microblog/internal/repository"
	"github.com/jherzog/microblog/internal/services/auth"
	"github.com/jherzog/microblog/internal/services/graph"
	"github.com/jherzog/microblog/internal/services/session"
)

// ErrNotLoggedIn is returned by operations that need a resolved user.
var ErrNotLoggedIn = errors.New("not logged in")

// App bundles the core services behind the caller-facing surface.
type App struct {
	Auth     *auth.Service
	Sessions *session.Service
	Graph    *graph.Service
	Repo     *repository.Repository
}

// New creates the facade.
func New(authSvc *auth.Service, sessions *session.Service, graphSvc *graph.Service, repo *repository.Repository) *App {
	return &App{
		Auth:     authSvc,
		Sessions: sessions,
		Graph:    graphSvc,
		Repo:     repo,
	}
}

// AttemptLogin authenticates the credential pair and binds the session.
// With persist set it also issues remember artifacts for the caller to
// store client-side; without it any previous persistent login is
// forgotten, so a stale client cannot keep logging in silently.
func (a *App) AttemptLogin(ctx context.Context, st *session.State, email, password string, persist bool) (*models.User, *session.Artifacts, error) {
	user, err := a.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	a.Sessions.LogIn(st, user)

	if !persist {
		if err := a.Sessions.Forget(ctx, user); err != nil {
			return nil, nil, err
		}
		return user, nil, nil
	}

	art, err := a.Sessions.Remember(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, art, nil
}

// Logout forgets the resolved user and clears the session binding; the
// caller deletes the artifacts.
func (a *App) Logout(ctx context.Context, st *session.State, art *session.Artifacts) error {
	return a.Sessions.LogOut(ctx, st, art)
}

// CurrentUser resolves the authenticated user, or nil when anonymous.
func (a *App) CurrentUser(ctx context.Context, st *session.State, art *session.Artifacts) (*models.User, error) {
	return a.Sessions.CurrentUser(ctx, st, art)
}

// Follow makes the current user follow the target.
func (a *App) Follow(ctx context.Context, st *session.State, art *session.Artifacts, targetID int64) error {
	user, err := a.Sessions.CurrentUser(ctx, st, art)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotLoggedIn
	}
	return a.Graph.Follow(ctx, user.ID, targetID)
}

// Unfollow makes the current user unfollow the target.
func (a *App) Unfollow(ctx context.Context, st *session.State, art *session.Artifacts, targetID int64) error {
	user, err := a.Sessions.CurrentUser(ctx, st, art)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotLoggedIn
	}
	return a.Graph.Unfollow(ctx, user.ID, targetID)
}

// Feed returns the user's feed, newest first.
func (a *App) Feed(ctx context.Context, user *models.User) ([]models.Post, error) {
	return a.Graph.Feed(ctx, user.ID)
}
