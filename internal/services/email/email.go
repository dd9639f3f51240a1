// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package email delivers account activation and password reset tokens
// over SMTP.
package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jherzog/microblog/internal/config"
	"github.com/wneessen/go-mail"
)

// Service sends transactional mail.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendActivation sends an account activation email carrying the raw
// activation token.
func (s *Service) SendActivation(ctx context.Context, to, tok string) error {
	link := fmt.Sprintf("%s/activate?email=%s&token=%s",
		s.baseURL, url.QueryEscape(to), url.QueryEscape(tok))

	body := fmt.Sprintf(
		"Welcome!\n\nPlease activate your account by following this link:\n\n%s\n", link)

	return s.send(ctx, to, "Account activation", body)
}

// SendPasswordReset sends a password reset email carrying the raw reset
// token. The token expires two hours after issuance.
func (s *Service) SendPasswordReset(ctx context.Context, to, tok string) error {
	link := fmt.Sprintf("%s/password_reset?email=%s&token=%s",
		s.baseURL, url.QueryEscape(to), url.QueryEscape(tok))

	body := fmt.Sprintf(
		"To reset your password, follow this link:\n\n%s\n\nThis link expires in two hours. If you did not request a password reset, ignore this email.\n", link)

	return s.send(ctx, to, "Password reset", body)
}

// send sends an email via SMTP using go-mail.
func (s *Service) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
