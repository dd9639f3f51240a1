// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/jherzog/microblog/internal/repository"
	"github.com/jherzog/microblog/internal/services/auth"
	"github.com/jherzog/microblog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMailer captures outgoing tokens instead of talking SMTP.
type recordingMailer struct {
	mu          sync.Mutex
	activations map[string]string
	resets      map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{
		activations: make(map[string]string),
		resets:      make(map[string]string),
	}
}

func (m *recordingMailer) SendActivation(_ context.Context, to, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activations[to] = tok
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[to] = tok
	return nil
}

func newTestService(t *testing.T) (*auth.Service, *repository.Repository, *recordingMailer) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	mailer := newRecordingMailer()
	svc, err := auth.NewService(repo, testutil.NewTestHasher(t), mailer)
	require.NoError(t, err)
	return svc, repo, mailer
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, auth.RegisterParams{
		Email:    "Michael@Example.COM",
		Name:     "Michael",
		Password: "foobar",
	})

	require.NoError(t, err)
	assert.Equal(t, "michael@example.com", user.Email)
	assert.NotEqual(t, "foobar", user.PasswordDigest)
	assert.True(t, user.ActivationDigest.Valid)
	assert.Contains(t, mailer.activations, "michael@example.com")

	loggedIn, err := svc.Login(ctx, "michael@example.com", "foobar")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestLogin_MixedCaseEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterParams{Email: "michael@example.com", Password: "foobar"})
	require.NoError(t, err)

	user, err := svc.Login(ctx, "MICHAEL@example.com", "foobar")

	require.NoError(t, err)
	assert.Equal(t, "michael@example.com", user.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterParams{Email: "michael@example.com", Password: "foobar"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "michael@example.com", "barfoo")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "foobar")

	// Same error as a wrong password, so accounts cannot be enumerated.
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterParams{Email: "michael@example.com", Password: "foobar"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, auth.RegisterParams{Email: "Michael@example.com", Password: "other"})

	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestActivate(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, auth.RegisterParams{Email: "michael@example.com", Password: "foobar"})
	require.NoError(t, err)
	assert.False(t, user.Activated)

	tok := mailer.activations[user.Email]
	require.NoError(t, svc.Activate(ctx, user.Email, tok))

	activated, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, activated.Activated)
	assert.True(t, activated.ActivatedAt.Valid)

	// Repeating the activation is a no-op.
	require.NoError(t, svc.Activate(ctx, user.Email, tok))
}

func TestActivate_WrongToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, auth.RegisterParams{Email: "michael@example.com", Password: "foobar"})
	require.NoError(t, err)

	err = svc.Activate(ctx, user.Email, "not-the-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordReset(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, auth.RegisterParams{Email: "michael@example.com", Password: "foobar"})
	require.NoError(t, err)

	require.NoError(t, svc.CreatePasswordReset(ctx, user.Email))
	tok := mailer.resets[user.Email]
	require.NotEmpty(t, tok)

	require.NoError(t, svc.ResetPassword(ctx, user.Email, tok, "newpassword"))

	_, err = svc.Login(ctx, user.Email, "newpassword")
	require.NoError(t, err)
	_, err = svc.Login(ctx, user.Email, "foobar")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// The consumed token cannot be replayed.
	err = svc.ResetPassword(ctx, user.Email, tok, "anotherpassword")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordReset_WrongToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, auth.RegisterParams{Email: "michael@example.com", Password: "foobar"})
	require.NoError(t, err)
	require.NoError(t, svc.CreatePasswordReset(ctx, user.Email))

	err = svc.ResetPassword(ctx, user.Email, "not-the-token", "newpassword")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordReset_Expiry(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, auth.RegisterParams{Email: "michael@example.com", Password: "foobar"})
	require.NoError(t, err)
	require.NoError(t, svc.CreatePasswordReset(ctx, user.Email))
	tok := mailer.resets[user.Email]

	// Backdate the issuance to just inside the window: still accepted.
	backdate(t, repo, user.ID, 119*time.Minute)
	require.NoError(t, svc.ResetPassword(ctx, user.Email, tok, "newpassword"))

	// Issue again and backdate past the window: rejected, token unchanged.
	require.NoError(t, svc.CreatePasswordReset(ctx, user.Email))
	tok = mailer.resets[user.Email]
	backdate(t, repo, user.ID, 121*time.Minute)

	err = svc.ResetPassword(ctx, user.Email, tok, "anotherpassword")

	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestCreatePasswordReset_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.CreatePasswordReset(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// backdate shifts a pending reset's issuance time into the past.
func backdate(t *testing.T, repo *repository.Repository, userID int64, age time.Duration) {
	t.Helper()
	_, err := repo.DB().ExecContext(context.Background(),
		`UPDATE users SET reset_sent_at = ? WHERE id = ?`,
		sql.NullTime{Time: time.Now().UTC().Add(-age), Valid: true}, userID)
	require.NoError(t, err)
}
