package store

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Code classifies a store failure.
type Code string

// Store error codes.
const (
	CodeNotFound   Code = "not_found"
	CodeUnique     Code = "unique_violation"
	CodeForeignKey Code = "foreign_key_violation"
	CodeNotNull    Code = "not_null_violation"
	CodeCheck      Code = "check_violation"
	CodeUnknown    Code = "unknown"
)

// Error is the store-shaped error returned by every Query operation. Column
// is set when the backend names the offending column.
type Error struct {
	Code    Code
	Table   string
	Column  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: %s.%s: %s", e.Code, e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Table, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constraint reports whether the error is an integrity constraint violation.
func (e *Error) Constraint() bool {
	switch e.Code {
	case CodeUnique, CodeForeignKey, CodeNotNull, CodeCheck:
		return true
	}
	return false
}

// IsNotFound reports whether err is a store NotFound error.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == CodeNotFound
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// classify converts a driver error into an *Error. The driver error stays in
// the chain, so errors.Is still matches context cancellation.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	if se, ok := AsError(err); ok {
		return se
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Code: CodeNotFound, Table: table, Message: "no rows matched", Err: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyPostgres(table, pqErr)
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(table, liteErr)
	}
	return &Error{Code: CodeUnknown, Table: table, Message: err.Error(), Err: err}
}

// keyColumns matches the column list in a Postgres constraint detail such as
// `Key (organization_id, code)=(...) already exists.`
var keyColumns = regexp.MustCompile(`Key \(([^)]+)\)=`)

func classifyPostgres(table string, err *pq.Error) *Error {
	se := &Error{Code: CodeUnknown, Table: table, Message: err.Message, Err: err}
	if err.Table != "" {
		se.Table = err.Table
	}
	switch err.Code {
	case "23505":
		se.Code = CodeUnique
	case "23503":
		se.Code = CodeForeignKey
	case "23502":
		se.Code = CodeNotNull
	case "23514":
		se.Code = CodeCheck
	default:
		return se
	}
	se.Column = err.Column
	if se.Column == "" {
		if m := keyColumns.FindStringSubmatch(err.Detail); m != nil {
			se.Column = lastColumn(strings.Split(m[1], ","))
		}
	}
	return se
}

func classifySQLite(table string, err *sqlite.Error) *Error {
	msg := err.Error()
	se := &Error{Code: CodeUnknown, Table: table, Message: msg, Err: err}
	switch err.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		se.Code = CodeUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		se.Code = CodeForeignKey
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		se.Code = CodeNotNull
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		se.Code = CodeCheck
	default:
		if err.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return se
		}
		se.Code = sqliteConstraintCode(msg)
	}
	se.Column = sqliteColumn(msg)
	return se
}

// sqliteConstraintCode classifies a constraint failure reported with the
// primary result code only.
func sqliteConstraintCode(msg string) Code {
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return CodeUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return CodeForeignKey
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return CodeNotNull
	case strings.Contains(msg, "CHECK constraint failed"):
		return CodeCheck
	}
	return CodeUnknown
}

// sqliteColumn extracts the column from messages such as
// "UNIQUE constraint failed: branches.organization_id, branches.code".
// Composite keys report their last column.
func sqliteColumn(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if i := strings.Index(rest, " ("); i >= 0 {
		rest = rest[:i]
	}
	var cols []string
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		_, col, ok := strings.Cut(part, ".")
		if !ok {
			// CHECK failures name the expression, not a column.
			return ""
		}
		cols = append(cols, col)
	}
	return lastColumn(cols)
}

func lastColumn(cols []string) string {
	if len(cols) == 0 {
		return ""
	}
	return strings.TrimSpace(cols[len(cols)-1])
}
