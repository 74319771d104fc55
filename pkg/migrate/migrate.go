package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// Run executes a goose command against db. Commands that apply migrations
// refuse to run while dir fails ValidateDir.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	switch command {
	case "up", "up-by-one", "up-to", "redo", "reset":
		if err := ValidateDir(dir); err != nil {
			return fmt.Errorf("validate %s: %w", dir, err)
		}
	}

	if err := setDialect(); err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to targetVersion, which must be
// 0 or the version of a migration in dir.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	target, err := resolveTarget(dir, targetVersion)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("db is required")
	}

	if err := setDialect(); err != nil {
		return err
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		// migrate up to target
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		// migrate down to target
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}

func resolveTarget(dir, targetVersion string) (int64, error) {
	if targetVersion == "" {
		return 0, fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	if target == 0 {
		return 0, nil
	}
	if err := ValidateDir(dir); err != nil {
		return 0, fmt.Errorf("validate %s: %w", dir, err)
	}
	files, _, err := readMigrations(dir)
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		if f.Version == target {
			return target, nil
		}
	}
	return 0, fmt.Errorf("no migration with version %d in %s", target, dir)
}

// SQL migrations target Postgres; sqlite databases are built with AutoMigrate.
func setDialect() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}
