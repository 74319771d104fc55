package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func gooseBody(up string) string {
	return "-- +goose Up\n-- +goose StatementBegin\n" + up + "\n-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n"
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Site Notes!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(filepath.Base(path), "_add_site_notes.sql") {
		t.Fatalf("unexpected filename %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read created migration: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
		t.Fatalf("created migration missing goose headers:\n%s", body)
	}
	if !strings.Contains(body, "WHERE deleted_at IS NULL") {
		t.Fatalf("created migration missing live-row index reminder:\n%s", body)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestCreateSQLMigrationRequiresName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), "  !!  "); err == nil {
		t.Fatal("expected error for name that sanitizes to empty")
	}
}

func TestCreateSQLMigrationVersionsStayIncreasing(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	first, err := createSQLMigration(dir, "add site notes", now)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	// Same clock reading again, and then a clock running behind.
	second, err := createSQLMigration(dir, "add site notes", now)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	third, err := createSQLMigration(dir, "add equipment tags", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("third: %v", err)
	}

	got := []string{filepath.Base(first), filepath.Base(second), filepath.Base(third)}
	want := []string{
		"20260105090000_add_site_notes.sql",
		"20260105090001_add_site_notes.sql",
		"20260105090002_add_equipment_tags.sql",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("migration %d: got %q want %q", i, got[i], want[i])
		}
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Add Site Notes!":       "add_site_notes",
		"  equipment--serials ": "equipment_serials",
		"__x__":                 "x",
		"!!":                    "",
	}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "add_stuff.sql", "-- +goose Up\n-- +goose Down\n")
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260105090000_a.sql", gooseBody("SELECT 1;"))
	writeMigration(t, dir, "20260105090000_b.sql", gooseBody("SELECT 1;"))

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate migration version") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestValidateDirRequiresPartialUniqueOnSoftDeletedTables(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260105090000_create_tags.sql", gooseBody(`CREATE TABLE tags (
    id         UUID PRIMARY KEY,
    label      TEXT NOT NULL,
    deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX ux_tags_label ON tags (label);`))

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "ux_tags_label") {
		t.Fatalf("expected non-partial unique index error, got %v", err)
	}

	writeMigration(t, dir, "20260105090000_create_tags.sql", gooseBody(`CREATE TABLE tags (
    id         UUID PRIMARY KEY,
    label      TEXT NOT NULL,
    deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX ux_tags_label_live ON tags (label) WHERE deleted_at IS NULL;`))
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("partial index should validate: %v", err)
	}
}

func TestValidateDirAllowsPlainUniqueWithoutSoftDelete(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260105090000_create_codes.sql", gooseBody(`CREATE TABLE codes (
    id    UUID PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE UNIQUE INDEX ux_codes_value ON codes (value);`))

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestValidateDirRequiresLiveSiteKeys(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260105090000_create_sites.sql", gooseBody(`CREATE TABLE sites (
    id         UUID PRIMARY KEY,
    user_id    UUID NOT NULL,
    code       TEXT NOT NULL,
    name       TEXT NOT NULL,
    deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX ux_sites_code_live ON sites (code) WHERE deleted_at IS NULL;`))

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "(user_id, lower(name))") {
		t.Fatalf("expected missing owner/name index error, got %v", err)
	}
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "bad name.sql", gooseBody("SELECT 1;"))
	writeMigration(t, dir, "20260105090000_no_down.sql", "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n")

	err := ValidateDir(dir)
	// bad filename, missing Down, unbalanced statement block
	if got := len(multierr.Errors(err)); got != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", got, err)
	}
}

func TestResolveTarget(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260105090000_a.sql", gooseBody("SELECT 1;"))

	if v, err := resolveTarget(dir, "20260105090000"); err != nil || v != 20260105090000 {
		t.Fatalf("resolveTarget existing: %d, %v", v, err)
	}
	if v, err := resolveTarget(dir, "0"); err != nil || v != 0 {
		t.Fatalf("resolveTarget zero: %d, %v", v, err)
	}
	if _, err := resolveTarget(dir, "20260105090001"); err == nil {
		t.Fatal("expected error for unknown version")
	}
	if _, err := resolveTarget(dir, "latest"); err == nil {
		t.Fatal("expected error for non-numeric version")
	}
}
