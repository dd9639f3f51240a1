// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package auth implements credential-based authentication: signup with
// activation digests, login, and the password reset flow.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jherzog/microblog/internal/models"
	"github.com/jherzog/microblog/internal/repository"
	"github.com/jherzog/microblog/internal/services/hasher"
	"github.com/jherzog/microblog/internal/services/token"
)

var (
	// ErrUserExists is returned when registering an already taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for a mismatched activation or reset token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for a reset token used past its window.
	ErrExpiredToken = errors.New("expired token")
)

// Store is the persistence collaborator this service consumes.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserPassword(ctx context.Context, id int64, passwordDigest string) error
	SetPasswordReset(ctx context.Context, id int64, digest string, sentAt time.Time) error
	ClearPasswordReset(ctx context.Context, id int64) error
	ActivateUser(ctx context.Context, id int64, at time.Time) error
}

// Mailer delivers activation and password reset tokens to users. A nil
// Mailer disables delivery (tokens can still be handed out by an
// operator, see the admin CLI).
type Mailer interface {
	SendActivation(ctx context.Context, to, tok string) error
	SendPasswordReset(ctx context.Context, to, tok string) error
}

// Service authenticates users against stored credentials.
type Service struct {
	store       Store
	hasher      *hasher.Hasher
	mailer      Mailer
	dummyDigest string
}

// NewService creates an auth service. The dummy digest keeps login
// timing flat for unknown emails.
func NewService(store Store, h *hasher.Hasher, mailer Mailer) (*Service, error) {
	dummy, err := h.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("hashing dummy password: %w", err)
	}
	return &Service{
		store:       store,
		hasher:      h,
		mailer:      mailer,
		dummyDigest: dummy,
	}, nil
}

// Login authenticates an email/password pair and returns the user on
// success. Unknown email and wrong password both come back as
// ErrInvalidCredentials; store failures pass through untouched.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a comparison anyway so the miss is not observable by timing.
			_ = s.hasher.Verify(password, s.dummyDigest)
			slog.Warn("login_failed", "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordDigest) {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID)
	return user, nil
}

// RegisterParams holds the parameters for user registration.
type RegisterParams struct {
	Email    string
	Name     string
	Password string
}

// Register creates a new user account. The email is stored lower-cased;
// an activation token is issued, digested onto the record and mailed to
// the user.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	email := normalizeEmail(params.Email)

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	passwordDigest, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	activationToken, err := token.New()
	if err != nil {
		return nil, err
	}
	activationDigest, err := s.hasher.Hash(activationToken)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:            email,
		Name:             params.Name,
		PasswordDigest:   passwordDigest,
		ActivationDigest: sql.NullString{String: activationDigest, Valid: true},
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendActivation(ctx, user.Email, activationToken); err != nil {
			slog.Warn("activation_email_failed", "user_id", user.ID, "err", err)
		}
	}

	slog.Info("register_success", "user_id", user.ID)
	return user, nil
}

// Activate marks the account for email as activated when tok matches its
// activation digest. Activating an already active account is a no-op.
func (s *Service) Activate(ctx context.Context, email, tok string) error {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	if user.Activated {
		return nil
	}
	if !user.ActivationDigest.Valid || !s.hasher.Verify(tok, user.ActivationDigest.String) {
		return ErrInvalidToken
	}

	if err := s.store.ActivateUser(ctx, user.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("activating user: %w", err)
	}

	slog.Info("activate_success", "user_id", user.ID)
	return nil
}

// CreatePasswordReset issues a reset token for the account, stores its
// digest with the issuance time and mails the token. Returns
// repository.ErrNotFound for an unknown email; the caller decides
// whether to hide that from the requester.
func (s *Service) CreatePasswordReset(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	tok, err := token.New()
	if err != nil {
		return err
	}
	digest, err := s.hasher.Hash(tok)
	if err != nil {
		return err
	}

	if err := s.store.SetPasswordReset(ctx, user.ID, digest, time.Now().UTC()); err != nil {
		return fmt.Errorf("storing reset digest: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, user.Email, tok); err != nil {
			slog.Warn("reset_email_failed", "user_id", user.ID, "err", err)
		}
	}

	slog.Info("password_reset_created", "user_id", user.ID)
	return nil
}

// ResetPassword sets a new password when tok matches the pending reset
// digest and the reset window has not elapsed. An otherwise correct
// token older than models.PasswordResetTTL is rejected with
// ErrExpiredToken.
func (s *Service) ResetPassword(ctx context.Context, email, tok, newPassword string) error {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	if !user.ResetDigest.Valid || !s.hasher.Verify(tok, user.ResetDigest.String) {
		return ErrInvalidToken
	}
	if user.PasswordResetExpired() {
		return ErrExpiredToken
	}

	passwordDigest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUserPassword(ctx, user.ID, passwordDigest); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if err := s.store.ClearPasswordReset(ctx, user.ID); err != nil {
		return fmt.Errorf("clearing reset digest: %w", err)
	}

	slog.Info("password_reset_success", "user_id", user.ID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
