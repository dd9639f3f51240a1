// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"os"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// sources creates a value source chain combining env vars and TOML config
func sources(envKey, tomlKey string, tomlSrc altsrc.Sourcer) cli.ValueSourceChain {
	chain := cli.EnvVars(envKey)
	chain.Chain = append(chain.Chain, toml.TOML(tomlKey, tomlSrc))
	return chain
}

func main() {
	var configFile string

	tomlSrc := altsrc.NewStringPtrSourcer(&configFile)

	cmd := &cli.Command{
		Name:    "microblog",
		Usage:   "Auth, follow graph and feed core for the microblog service",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			// Config file
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Value:       "config.toml",
				Usage:       "Path to configuration file",
				Destination: &configFile,
				Sources:     cli.EnvVars("CONFIG"),
			},

			// Database
			&cli.StringFlag{
				Name:    "database-dsn",
				Value:   "./data/microblog.db",
				Usage:   "SQLite database path",
				Sources: sources("DATABASE_DSN", "database.dsn", tomlSrc),
			},

			// Authentication
			&cli.IntFlag{
				Name:    "bcrypt-cost",
				Value:   0,
				Usage:   "bcrypt work factor (0 = bcrypt default; only lower outside production)",
				Sources: sources("BCRYPT_COST", "auth.bcrypt_cost", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "remember-hash-key",
				Usage:   "Hex-encoded HMAC key for signing remember artifacts (>= 32 bytes)",
				Sources: sources("REMEMBER_HASH_KEY", "auth.remember_hash_key", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Value:   "http://localhost:8080",
				Usage:   "Base URL used in activation and reset links",
				Sources: sources("BASE_URL", "auth.base_url", tomlSrc),
			},

			// SMTP
			&cli.StringFlag{
				Name:    "smtp-host",
				Usage:   "SMTP host (empty disables email delivery)",
				Sources: sources("SMTP_HOST", "smtp.host", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Value:   587,
				Usage:   "SMTP port",
				Sources: sources("SMTP_PORT", "smtp.port", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "smtp-username",
				Usage:   "SMTP username",
				Sources: sources("SMTP_USERNAME", "smtp.username", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Usage:   "SMTP password",
				Sources: sources("SMTP_PASSWORD", "smtp.password", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "smtp-from",
				Usage:   "From address for outgoing mail",
				Sources: sources("SMTP_FROM", "smtp.from", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "smtp-from-name",
				Usage:   "Display name for outgoing mail",
				Sources: sources("SMTP_FROM_NAME", "smtp.from_name", tomlSrc),
			},
			&cli.BoolFlag{
				Name:    "smtp-tls",
				Value:   true,
				Usage:   "Require TLS for SMTP",
				Sources: sources("SMTP_TLS", "smtp.tls", tomlSrc),
			},

			// Logging
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level: debug, info, warn, error",
				Sources: sources("LOG_LEVEL", "log.level", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format: text, json",
				Sources: sources("LOG_FORMAT", "log.format", tomlSrc),
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			adminCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
