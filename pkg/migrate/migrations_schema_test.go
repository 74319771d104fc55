package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kitchenequip/equipment-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestSiteMigrationScopesUniquenessToLiveRows(t *testing.T) {
	content := readMigration(t, "create_sites")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS sites",
		"ON sites (code) WHERE deleted_at IS NULL",
		"ON sites (user_id, lower(name)) WHERE deleted_at IS NULL",
		"DROP TABLE IF EXISTS sites",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEquipmentMigrationConstraints(t *testing.T) {
	content := readMigration(t, "create_equipment")
	checks := []string{
		"site_id        BIGINT       REFERENCES sites(id)",
		"CHECK (condition IN ('Working', 'Not Working'))",
		"ON equipment (user_id, serial_number) WHERE deleted_at IS NULL",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCredentialColumnsAreFixedSize(t *testing.T) {
	content := readMigration(t, "create_users")
	for _, sub := range []string{
		"CHECK (octet_length(password_hash) = 32)",
		"CHECK (octet_length(password_salt) = 16)",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRegistrationMigrationAllowsOnePendingPerIdentity(t *testing.T) {
	content := readMigration(t, "create_user_registration_requests")
	for _, sub := range []string{
		"ON user_registration_requests (lower(user_name)) WHERE status = 'Pending'",
		"ON user_registration_requests (lower(email_address)) WHERE status = 'Pending'",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
