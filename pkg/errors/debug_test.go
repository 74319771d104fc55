package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_sites_code_live", TableName: "sites", Message: "duplicate key value"}
	err := Wrap(CodeDependency, fmt.Errorf("insert site: %w", pgErr), "create site")

	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", d.Code)
	}
	if d.DB == nil || d.DB.Driver != "pgx" {
		t.Fatalf("expected pgx diagnostics, got %+v", d.DB)
	}
	if d.DB.Code != "23505" || d.DB.Constraint != "ux_sites_code_live" || d.DB.Table != "sites" || d.DB.Field != "code" {
		t.Fatalf("unexpected db fields %+v", d.DB)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d", len(d.Chain))
	}
}

func TestDumpExtractsPqDiagnostics(t *testing.T) {
	pqErr := &pq.Error{Code: "23505", Constraint: "ux_equipment_owner_serial_live", Table: "equipment"}
	d := Dump(fmt.Errorf("save: %w", pqErr))
	if d.DB == nil || d.DB.Driver != "pq" || d.DB.Code != "23505" {
		t.Fatalf("unexpected pq fields %+v", d.DB)
	}
	if d.DB.Field != "serial_number" {
		t.Fatalf("expected serial_number field, got %q", d.DB.Field)
	}
	if d.Code != "" {
		t.Fatalf("untyped chain should not carry a code, got %s", d.Code)
	}
}

func TestDumpUnknownConstraintFallsBackToColumn(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", TableName: "sites", ColumnName: "address"}
	d := Dump(pgErr)
	if d.DB == nil || d.DB.Field != "address" {
		t.Fatalf("expected column fallback, got %+v", d.DB)
	}
}

func TestDumpParsesSqliteUniqueFailure(t *testing.T) {
	err := fmt.Errorf("create user: %w", fmt.Errorf("UNIQUE constraint failed: users.email_address"))
	d := Dump(err)
	if d.DB == nil || d.DB.Driver != "sqlite" {
		t.Fatalf("expected sqlite diagnostics, got %+v", d.DB)
	}
	if d.DB.Table != "users" || d.DB.Column != "email_address" || d.DB.Field != "email_address" {
		t.Fatalf("unexpected sqlite fields %+v", d.DB)
	}
}

func TestDumpWithoutDatabaseError(t *testing.T) {
	d := Dump(New(CodeValidation, "bad input"))
	if d.DB != nil {
		t.Fatalf("expected no db diagnostics, got %+v", d.DB)
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || len(d.Chain) != 0 || d.DB != nil {
		t.Fatalf("expected empty dump, got %+v", d)
	}
}
