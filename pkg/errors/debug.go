package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain into log-friendly fields.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Messages   []string `json:"messages,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	DB *DBFailure `json:"db,omitempty"`
}

// DBFailure is the database diagnostic found in an error chain. Field names
// the request field a uniqueness violation collided on, when known.
type DBFailure struct {
	Driver     string `json:"driver"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
	Field      string `json:"field,omitempty"`
}

// constraintFields maps the live-row unique indexes to the field they guard.
var constraintFields = map[string]string{
	"ux_users_user_name_live":           "user_name",
	"ux_users_email_address_live":       "email_address",
	"ux_sites_code_live":                "code",
	"ux_sites_owner_name_live":          "name",
	"ux_equipment_owner_serial_live":    "serial_number",
	"ux_registration_pending_user_name": "user_name",
	"ux_registration_pending_email":     "email_address",
}

const sqliteUniquePrefix = "UNIQUE constraint failed: "

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Messages = Messages(err)
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.DB = dbFailure(err)
	return d
}

func dbFailure(err error) *DBFailure {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return withField(&DBFailure{
			Driver:     "pgx",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		})
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return withField(&DBFailure{
			Driver:     "pq",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		})
	}

	// sqlite reports "UNIQUE constraint failed: sites.code[, sites.other]".
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		i := strings.Index(msg, sqliteUniquePrefix)
		if i < 0 {
			continue
		}
		cols := strings.Split(msg[i+len(sqliteUniquePrefix):], ", ")
		f := &DBFailure{Driver: "sqlite", Message: msg[i:]}
		last := strings.TrimSpace(cols[len(cols)-1])
		if table, column, ok := strings.Cut(last, "."); ok {
			f.Table, f.Column, f.Field = table, column, column
		}
		return f
	}
	return nil
}

func withField(f *DBFailure) *DBFailure {
	if field, ok := constraintFields[f.Constraint]; ok {
		f.Field = field
	} else {
		f.Field = f.Column
	}
	return f
}
