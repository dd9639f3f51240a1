// Copyright 2025 Jonas Herzog
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jherzog/microblog/internal/config"
	"github.com/jherzog/microblog/internal/database"
	"github.com/jherzog/microblog/internal/repository"
	"github.com/jherzog/microblog/internal/services/auth"
	"github.com/jherzog/microblog/internal/services/email"
	"github.com/jherzog/microblog/internal/services/hasher"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// openDatabase applies the logging config and opens (and migrates) the
// database named by the parsed flags.
func openDatabase(cmd *cli.Command) (*config.Config, *sqlx.DB, error) {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, db, nil
}

// newAuthService wires the auth service the way the commands need it:
// store, hasher at the configured cost, and a mailer only when SMTP is
// configured.
func newAuthService(cfg *config.Config, repo *repository.Repository) (*auth.Service, error) {
	var mailer auth.Mailer
	if cfg.SMTP.Enabled() {
		svc, err := email.NewService(&cfg.SMTP, cfg.Auth.BaseURL)
		if err != nil {
			return nil, err
		}
		mailer = svc
	}
	return auth.NewService(repo, hasher.New(cfg.Auth.BcryptCost), mailer)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run schema migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					// Open runs pending migrations as a side effect.
					_, db, err := openDatabase(cmd)
					if err != nil {
						return err
					}
					defer db.Close()
					fmt.Println("migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the last migration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, db, err := openDatabase(cmd)
					if err != nil {
						return err
					}
					defer db.Close()
					return database.MigrateDown(db.DB)
				},
			},
			{
				Name:  "reset",
				Usage: "Roll back all migrations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, db, err := openDatabase(cmd)
					if err != nil {
						return err
					}
					defer db.Close()
					return database.MigrateReset(db.DB)
				},
			},
		},
	}
}

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Operator helpers for user accounts",
		Commands: []*cli.Command{
			{
				Name:  "create-user",
				Usage: "Create a user account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "Email address"},
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "password", Required: true, Usage: "Initial password"},
					&cli.BoolFlag{Name: "activated", Usage: "Activate the account immediately"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, db, err := openDatabase(cmd)
					if err != nil {
						return err
					}
					defer db.Close()

					repo := repository.New(db)
					authService, err := newAuthService(cfg, repo)
					if err != nil {
						return err
					}

					user, err := authService.Register(ctx, auth.RegisterParams{
						Email:    cmd.String("email"),
						Name:     cmd.String("name"),
						Password: cmd.String("password"),
					})
					if err != nil {
						return err
					}

					if cmd.Bool("activated") {
						if err := repo.ActivateUser(ctx, user.ID, time.Now().UTC()); err != nil {
							return err
						}
					}

					fmt.Printf("created user %d (%s)\n", user.ID, user.Email)
					return nil
				},
			},
			{
				Name:  "activate",
				Usage: "Activate a user account without the emailed token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "Email address"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, db, err := openDatabase(cmd)
					if err != nil {
						return err
					}
					defer db.Close()

					repo := repository.New(db)
					user, err := repo.GetUserByEmail(ctx, strings.ToLower(cmd.String("email")))
					if err != nil {
						return err
					}
					if user.Activated {
						fmt.Printf("user %d already activated\n", user.ID)
						return nil
					}
					if err := repo.ActivateUser(ctx, user.ID, time.Now().UTC()); err != nil {
						return err
					}
					fmt.Printf("activated user %d\n", user.ID)
					return nil
				},
			},
			{
				Name:  "list-users",
				Usage: "List all user accounts",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, db, err := openDatabase(cmd)
					if err != nil {
						return err
					}
					defer db.Close()

					repo := repository.New(db)
					users, err := repo.ListUsers(ctx)
					if err != nil {
						return err
					}
					for _, u := range users {
						fmt.Printf("%d\t%s\t%s\tactivated=%t\n", u.ID, u.Email, u.Name, u.Activated)
					}
					return nil
				},
			},
		},
	}
}
