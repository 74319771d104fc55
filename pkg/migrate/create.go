package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const migrationTemplate = `-- %s
-- Tables with deleted_at keep unique indexes partial:
--   CREATE UNIQUE INDEX ... WHERE deleted_at IS NULL;

-- +goose Up
-- +goose StatementBegin
-- up: %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- down: %s
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration named
// <version>_<slug>.sql into dir and returns its path. The version is the
// current UTC time, or one second past the newest migration already in dir.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	s := slug(name)
	if s == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	existing, _, err := readMigrations(dir)
	if err != nil {
		return "", err
	}

	version := strconv.FormatInt(nextVersion(now, existing), 10)
	path := filepath.Join(dir, version+"_"+s+".sql")
	body := fmt.Sprintf(migrationTemplate, s, s, s)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close migration %q: %w", path, err)
	}
	return path, nil
}
