// Package sqlerr specifically handles database driver errors.
//
// It parses error codes from the SQLite and Postgres drivers into a
// driver-neutral Error and converts those into user-facing HTTP errors
// (e.g. a NOT NULL violation becomes a 400 with a field error).
package sqlerr

import (
	"fmt"
	"strings"
)

// Code is a driver-neutral category for a database failure.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
	ConnectionFailure   Code = "connection_failure"
	UndefinedTable      Code = "undefined_table"
)

// Severity mirrors the Postgres severity levels. SQLite errors are
// always SeverityError.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a classified database error. driverErr keeps the original so
// errors.As can still reach *pgconn.PgError or sqlite3.Error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Severity, e.Message, e.DatabaseCode)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a Postgres SQLSTATE onto a Code.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "42P01":
		return UndefinedTable
	}
	if strings.HasPrefix(sqlState, "08") {
		return ConnectionFailure
	}
	return Other
}

// MapSeverity maps a Postgres severity string onto a Severity.
func MapSeverity(severity string) Severity {
	switch Severity(strings.ToUpper(severity)) {
	case SeverityFatal:
		return SeverityFatal
	case SeverityPanic:
		return SeverityPanic
	case SeverityWarning:
		return SeverityWarning
	case SeverityNotice:
		return SeverityNotice
	case SeverityDebug:
		return SeverityDebug
	case SeverityInfo:
		return SeverityInfo
	case SeverityLog:
		return SeverityLog
	default:
		return SeverityError
	}
}
