// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package session orchestrates login, logout, persistent "remember me"
// login and the post-login redirect memory.
//
// Session state is threaded through explicitly: the caller owns one
// State per request context and passes it in, together with any durable
// remember Artifacts it received from the client. Nothing in this
// package caches across calls beyond that State.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/securecookie"
	"github.com/jherzog/microblog/internal/models"
	"github.com/jherzog/microblog/internal/repository"
	"github.com/jherzog/microblog/internal/services/hasher"
	"github.com/jherzog/microblog/internal/services/token"
)

// artifactName is the securecookie name under which the user id is signed.
const artifactName = "remember_user_id"

// UserStore is the persistence collaborator this service consumes.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateRememberDigest(ctx context.Context, id int64, digest sql.NullString) error
}

// Artifacts is the pair of long-lived client-side values enabling login
// without a password: a tamper-evident signed user id and the raw
// remember token. The token is stored raw client-side because the server
// only ever compares it against a digest. Both values are cleared
// together by the caller on Forget/LogOut.
type Artifacts struct {
	UserID string
	Token  string
}

// State is the transient per-request session binding. A zero UserID
// means anonymous. The current-user memo is scoped to this State and
// therefore to a single request.
type State struct {
	UserID        int64
	ForwardingURL string

	current *models.User
}

// Service resolves and transitions session state.
type Service struct {
	store  UserStore
	hasher *hasher.Hasher
	codec  *securecookie.SecureCookie
}

// NewService creates a session service. hashKey is the HMAC key used to
// sign the user id artifact; it must be shared by every instance that
// has to accept previously issued artifacts.
func NewService(store UserStore, h *hasher.Hasher, hashKey []byte) *Service {
	return &Service{
		store:  store,
		hasher: h,
		codec:  securecookie.New(hashKey, nil),
	}
}

// LogIn binds the session to the user. No durable artifact is written;
// the login lasts for the session only.
func (s *Service) LogIn(st *State, user *models.User) {
	st.UserID = user.ID
	st.current = user
}

// Remember issues a fresh remember token, stores its digest on the user
// record and returns the durable artifacts for the caller to persist
// client-side.
func (s *Service) Remember(ctx context.Context, user *models.User) (*Artifacts, error) {
	tok, err := token.New()
	if err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(tok)
	if err != nil {
		return nil, err
	}

	rememberDigest := sql.NullString{String: digest, Valid: true}
	if err := s.store.UpdateRememberDigest(ctx, user.ID, rememberDigest); err != nil {
		return nil, fmt.Errorf("storing remember digest: %w", err)
	}
	user.RememberDigest = rememberDigest

	signedID, err := s.codec.Encode(artifactName, user.ID)
	if err != nil {
		return nil, fmt.Errorf("signing user id: %w", err)
	}

	return &Artifacts{UserID: signedID, Token: tok}, nil
}

// Forget clears the stored remember digest. The caller must delete both
// durable artifacts alongside. Calling Forget on a user without a
// remember digest is a no-op.
func (s *Service) Forget(ctx context.Context, user *models.User) error {
	if !user.RememberDigest.Valid {
		return nil
	}
	if err := s.store.UpdateRememberDigest(ctx, user.ID, sql.NullString{}); err != nil {
		return fmt.Errorf("clearing remember digest: %w", err)
	}
	user.RememberDigest = sql.NullString{}
	return nil
}

// CurrentUser resolves the authenticated user, or nil when anonymous.
//
// Resolution order: the session binding first, then the durable
// artifacts. A successful artifact resolution implicitly re-binds the
// session (LogIn). Every authentication failure on the artifact path --
// tampered signature, unknown user, cleared digest, token mismatch --
// degrades to nil rather than an error; only store failures surface as
// errors.
func (s *Service) CurrentUser(ctx context.Context, st *State, art *Artifacts) (*models.User, error) {
	if st.current != nil {
		return st.current, nil
	}

	if st.UserID != 0 {
		user, err := s.store.GetUserByID(ctx, st.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("resolving session user: %w", err)
		}
		st.current = user
		return user, nil
	}

	if art == nil || art.UserID == "" {
		return nil, nil
	}

	var id int64
	if err := s.codec.Decode(artifactName, art.UserID, &id); err != nil {
		slog.Debug("remember_artifact_rejected", "reason", "bad_signature")
		return nil, nil
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving remembered user: %w", err)
	}

	if !user.RememberDigest.Valid || !s.hasher.Verify(art.Token, user.RememberDigest.String) {
		slog.Debug("remember_artifact_rejected", "reason", "token_mismatch", "user_id", id)
		return nil, nil
	}

	s.LogIn(st, user)
	return user, nil
}

// LoggedIn reports whether CurrentUser resolves a user.
func (s *Service) LoggedIn(ctx context.Context, st *State, art *Artifacts) (bool, error) {
	user, err := s.CurrentUser(ctx, st, art)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// LogOut forgets the resolved user, if any, and clears the session
// binding. Safe to call repeatedly and from an anonymous session; the
// caller deletes the durable artifacts alongside.
func (s *Service) LogOut(ctx context.Context, st *State, art *Artifacts) error {
	user, err := s.CurrentUser(ctx, st, art)
	if err != nil {
		return err
	}
	if user != nil {
		if err := s.Forget(ctx, user); err != nil {
			return err
		}
	}
	st.UserID = 0
	st.current = nil
	return nil
}

// StoreLocation records url as the pending post-login redirect target,
// but only for safe, replayable reads. State-changing requests must
// never become a redirect target.
func (s *Service) StoreLocation(st *State, url string, safeRead bool) {
	if !safeRead {
		return
	}
	st.ForwardingURL = url
}

// RedirectBackOr returns the pending redirect target, or def when none
// is stored. The target is consumed either way so it cannot replay on a
// later login.
func (s *Service) RedirectBackOr(st *State, def string) string {
	url := st.ForwardingURL
	st.ForwardingURL = ""
	if url == "" {
		return def
	}
	return url
}
