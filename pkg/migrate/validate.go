package migrate

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var (
	createTableRe = regexp.MustCompile(`(?is)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(\w+)\s*\((.*?)\n\);`)
	uniqueIndexRe = regexp.MustCompile(`(?is)CREATE\s+UNIQUE\s+INDEX\s+(?:IF\s+NOT\s+EXISTS\s+)?(\w+)\s+ON\s+(\w+)\s*\((.*?)\)\s*(WHERE\s+[^;]+)?;`)
)

const liveOnly = "where deleted_at is null"

// liveUniqueKeys are the uniqueness rules the services rely on. Each must be
// backed by a partial unique index over live rows once its table exists.
var liveUniqueKeys = map[string][]string{
	"users":     {"lower(user_name)", "lower(email_address)"},
	"sites":     {"code", "user_id, lower(name)"},
	"equipment": {"user_id, serial_number"},
}

type uniqueIndex struct {
	name    string
	table   string
	columns string
	where   string
	file    string
}

// ValidateDir checks every migration in dir and reports all problems at once:
//   - filenames follow <YYYYMMDDHHMMSS>_<name>.sql with unique versions
//   - goose Up/Down markers are present and statement blocks balance
//   - unique indexes on soft-deleted tables are restricted to live rows
//   - the uniqueness keys in liveUniqueKeys exist for tables created here
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	files, bad, err := readMigrations(dir)
	if err != nil {
		return err
	}

	var errs error
	for _, name := range bad {
		errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
	}

	softDeleted := map[string]bool{}
	var indexes []uniqueIndex
	seen := map[int64]string{}

	for _, f := range files {
		if prev, ok := seen[f.Version]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %d in %q and %q", f.Version, prev, f.Name))
		}
		seen[f.Version] = f.Name
		errs = multierr.Append(errs, checkGooseMarkers(f))

		up := upSection(f.Body)
		for _, m := range createTableRe.FindAllStringSubmatch(up, -1) {
			table := strings.ToLower(m[1])
			if _, ok := softDeleted[table]; !ok {
				softDeleted[table] = strings.Contains(strings.ToLower(m[2]), "deleted_at")
			}
		}
		for _, m := range uniqueIndexRe.FindAllStringSubmatch(up, -1) {
			indexes = append(indexes, uniqueIndex{
				name:    m[1],
				table:   strings.ToLower(m[2]),
				columns: squash(m[3]),
				where:   squash(m[4]),
				file:    f.Name,
			})
		}
	}

	for _, idx := range indexes {
		if softDeleted[idx.table] && idx.where != liveOnly {
			errs = multierr.Append(errs, fmt.Errorf("%s: unique index %s on soft-deleted table %s must be %q", idx.file, idx.name, idx.table, "WHERE deleted_at IS NULL"))
		}
	}

	for table, keys := range liveUniqueKeys {
		if _, created := softDeleted[table]; !created {
			continue
		}
		for _, key := range keys {
			if !hasLiveIndex(indexes, table, key) {
				errs = multierr.Append(errs, fmt.Errorf("table %s is missing a live-row unique index on (%s)", table, key))
			}
		}
	}

	return errs
}

func checkGooseMarkers(f migrationFile) error {
	var errs error
	if !strings.Contains(f.Body, "-- +goose Up") {
		errs = multierr.Append(errs, fmt.Errorf("migration %q missing \"-- +goose Up\"", f.Name))
	}
	if !strings.Contains(f.Body, "-- +goose Down") {
		errs = multierr.Append(errs, fmt.Errorf("migration %q missing \"-- +goose Down\"", f.Name))
	}
	if strings.Count(f.Body, "-- +goose StatementBegin") != strings.Count(f.Body, "-- +goose StatementEnd") {
		errs = multierr.Append(errs, fmt.Errorf("migration %q has unbalanced StatementBegin/StatementEnd", f.Name))
	}
	return errs
}

func upSection(body string) string {
	if i := strings.Index(body, "-- +goose Down"); i >= 0 {
		return body[:i]
	}
	return body
}

func hasLiveIndex(indexes []uniqueIndex, table, columns string) bool {
	for _, idx := range indexes {
		if idx.table == table && idx.columns == columns && idx.where == liveOnly {
			return true
		}
	}
	return false
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
