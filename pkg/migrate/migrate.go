package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"strconv"

	"github.com/pressly/goose/v3"
)

// Migrations holds the SQL files for every supported dialect, one directory each.
//
//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var Migrations embed.FS

const (
	DefaultDir   = "pkg/migrate/migrations"
	embeddedRoot = "migrations"
)

// DirFor returns the embedded directory holding the migrations for dialect.
func DirFor(dialect string) (string, error) {
	switch dialect {
	case "", "postgres":
		return path.Join(embeddedRoot, "postgres"), nil
	case "mysql":
		return path.Join(embeddedRoot, "mysql"), nil
	default:
		return "", fmt.Errorf("no migrations for dialect %q", dialect)
	}
}

func prepare(dialect string) (string, error) {
	dir, err := DirFor(dialect)
	if err != nil {
		return "", err
	}
	if dialect == "" {
		dialect = "postgres"
	}
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	return dir, nil
}

// Run executes a goose command (up, down, status, redo, reset) against the embedded migrations.
func Run(ctx context.Context, db *sql.DB, dialect string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dir, err := prepare(dialect)
	if err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	dir, err := prepare(dialect)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}
