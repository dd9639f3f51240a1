// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

// Package config holds the application configuration, populated from CLI
// flags, environment variables and an optional TOML file.
package config

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v3"
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Database DatabaseConfig
	Log      LogConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
}

type DatabaseConfig struct {
	DSN string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical for config structs
	BcryptCost      int    // 0 selects the bcrypt default; lower only outside production
	RememberHashKey string // hex-encoded HMAC key for signing the remember user id
	BaseURL         string // base for activation/reset links in emails
}

// HashKey decodes the configured remember hash key.
func (c *AuthConfig) HashKey() ([]byte, error) {
	if c.RememberHashKey == "" {
		return nil, fmt.Errorf("remember hash key is required")
	}
	key, err := hex.DecodeString(c.RememberHashKey)
	if err != nil {
		return nil, fmt.Errorf("remember hash key must be hex: %w", err)
	}
	if len(key) < 32 {
		return nil, fmt.Errorf("remember hash key must be at least 32 bytes, got %d", len(key))
	}
	return key, nil
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// Enabled reports whether SMTP delivery is configured at all.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// NewFromCLI builds the Config from parsed CLI flags.
func NewFromCLI(cmd *cli.Command) *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Auth: AuthConfig{
			BcryptCost:      int(cmd.Int("bcrypt-cost")),
			RememberHashKey: cmd.String("remember-hash-key"),
			BaseURL:         cmd.String("base-url"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
	}
}
