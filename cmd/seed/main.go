// Command seed manages reference data for the notes server: categories, tags
// and user accounts with their permissions. It reads the same environment
// (and optional .env file) as the API server.
//
// Usage:
//
//	seed migrate
//	seed category -name Travel [-slug travel]
//	seed tag -label "Road trip"
//	seed user -username editor -password s3cret [-superuser] [-perms notes.add_note,notes.change_note]
//	seed delete-category -slug travel
//	seed delete-tag -slug road-trip
//	seed delete-user -username editor
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/notes/internal/auth"
	"github.com/pkordes/notes/internal/config"
	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/repo"
	"github.com/pkordes/notes/internal/service"
	"github.com/pkordes/notes/migrations"
)

var errUsage = errors.New("usage: seed <migrate|category|tag|user|delete-category|delete-tag|delete-user> [flags]")

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := run(ctx, os.Args[1:], newCommands(pool, cfg), os.Stdout); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(2)
	}
}

// commands is what run dispatches to. Kept as function fields so argument
// handling can be tested without a database.
type commands struct {
	migrate        func(ctx context.Context) ([]int64, error)
	createCategory func(ctx context.Context, name, slug string) (domain.Category, error)
	upsertTag      func(ctx context.Context, label string) (domain.Tag, error)
	createUser     func(ctx context.Context, username, password string, superuser bool, perms []domain.Permission) (domain.User, error)
	deleteCategory func(ctx context.Context, slug string) error
	deleteTag      func(ctx context.Context, slug string) error
	deleteUser     func(ctx context.Context, username string) error
}

func newCommands(pool *pgxpool.Pool, cfg config.Config) commands {
	categories := service.NewCategoryService(repo.NewCategoryRepo(pool))
	tags := service.NewTagService(repo.NewTagRepo(pool), nil)
	users := service.NewAuthService(repo.NewUserRepo(pool), auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL), 0)

	return commands{
		migrate: func(ctx context.Context) ([]int64, error) {
			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()
			return migrations.Up(ctx, db)
		},
		createCategory: categories.Create,
		upsertTag:      tags.UpsertByLabel,
		createUser:     users.CreateUser,
		deleteCategory: categories.DeleteBySlug,
		deleteTag:      tags.DeleteBySlug,
		deleteUser:     users.DeleteUser,
	}
}

func run(ctx context.Context, args []string, cmd commands, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch args[0] {
	case "migrate":
		applied, err := cmd.migrate(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %d migration(s)\n", len(applied))

	case "category":
		name := fs.String("name", "", "category name")
		slug := fs.String("slug", "", "category slug (derived from name when empty)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		c, err := cmd.createCategory(ctx, *name, *slug)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "category %d %s\n", c.ID, c.Slug)

	case "tag":
		label := fs.String("label", "", "tag label")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		t, err := cmd.upsertTag(ctx, *label)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "tag %d %s\n", t.ID, t.Slug)

	case "user":
		username := fs.String("username", "", "login name")
		password := fs.String("password", "", "password")
		superuser := fs.Bool("superuser", false, "grant every permission")
		perms := fs.String("perms", "", "comma-separated permissions")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		parsed, err := parsePermissions(*perms)
		if err != nil {
			return err
		}
		u, err := cmd.createUser(ctx, *username, *password, *superuser, parsed)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "user %d %s\n", u.ID, u.Username)

	case "delete-category", "delete-tag":
		slug := fs.String("slug", "", "slug to delete")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *slug == "" {
			return fmt.Errorf("%s: -slug is required", args[0])
		}
		del := cmd.deleteCategory
		if args[0] == "delete-tag" {
			del = cmd.deleteTag
		}
		if err := del(ctx, *slug); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", *slug)

	case "delete-user":
		username := fs.String("username", "", "login name to delete")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *username == "" {
			return fmt.Errorf("%s: -username is required", args[0])
		}
		if err := cmd.deleteUser(ctx, *username); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted user %s\n", *username)

	default:
		return errUsage
	}
	return nil
}

var knownPermissions = []domain.Permission{domain.PermAddNote, domain.PermChangeNote, domain.PermDeleteNote}

// parsePermissions splits a comma-separated list and rejects unknown names.
func parsePermissions(s string) ([]domain.Permission, error) {
	var out []domain.Permission
	for _, part := range strings.Split(s, ",") {
		p := domain.Permission(strings.TrimSpace(part))
		if p == "" {
			continue
		}
		if !slices.Contains(knownPermissions, p) {
			return nil, fmt.Errorf("unknown permission %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}
