package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/people-api/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// irregularSingulars covers table names the trailing-"s" rule gets wrong.
var irregularSingulars = map[string]string{
	"people": "person",
}

// sqliteConstraintTarget matches "UNIQUE constraint failed: people.id".
var sqliteConstraintTarget = regexp.MustCompile(`constraint failed: ([A-Za-z0-9_]+)\.([A-Za-z0-9_]+)`)

// ErrCode reports the Code of the first classified database error in the
// chain, or Other.
func ErrCode(err error) Code {
	if sqlErr := Classify(err); sqlErr != nil {
		return sqlErr.Code
	}
	return Other
}

// Classify finds a driver error in err's chain and converts it into an
// *Error. It returns nil when err carries no driver error.
func Classify(err error) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return ConvertPgError(pgerr)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return ConvertSQLiteError(liteErr)
	}

	return nil
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// ConvertSQLiteError converts a go-sqlite3 error into an *Error.
//
// SQLite reports the offending table and column only inside the message,
// so they are recovered from there when present.
func ConvertSQLiteError(src sqlite3.Error) *Error {
	out := &Error{
		Code:         Other,
		Severity:     SeverityError,
		DatabaseCode: fmt.Sprintf("%d", int(src.ExtendedCode)),
		Message:      src.Error(),
		driverErr:    src,
	}

	switch src.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		out.Code = UniqueViolation
	case sqlite3.ErrConstraintNotNull:
		out.Code = NotNullViolation
	case sqlite3.ErrConstraintForeignKey:
		out.Code = ForeignKeyViolation
	case sqlite3.ErrConstraintCheck:
		out.Code = CheckViolation
	default:
		if src.Code == sqlite3.ErrCantOpen {
			out.Code = ConnectionFailure
		} else if strings.HasPrefix(src.Error(), "no such table") {
			out.Code = UndefinedTable
		}
	}

	if m := sqliteConstraintTarget.FindStringSubmatch(src.Error()); len(m) == 3 {
		out.TableName = m[1]
		out.ColumnName = m[2]
	}

	return out
}

// GenerateErrorCode creates an application error code from a table name
// and a violation type, e.g. people + UniqueViolation => PERSON_ALREADY_EXISTS.
//
// These codes are meant for machines (frontend logic, analytics), not humans.
func GenerateErrorCode(tableName string, errType Code) string {
	domain := "RECORD"
	if tableName != "" {
		domain = strings.ToUpper(singularize(tableName))
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces an end-user-facing message; it is
// never used for logs.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing your request"
	}
}

func singularize(tableName string) string {
	lower := strings.ToLower(tableName)
	if s, ok := irregularSingulars[lower]; ok {
		return s
	}
	if strings.HasSuffix(lower, "s") && len(lower) > 1 {
		return lower[:len(lower)-1]
	}
	return lower
}

// getEntityName infers an entity name from table/column data.
//
// Priority rules:
//  1. column ending with "_id" ("owner_id" -> "Owner")
//  2. singularized table name ("people" -> "Person")
//  3. "record"
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		return humanizeText(singularize(tableName))
	}

	return "record"
}

// humanizeText converts snake_case into Title Case ("first_name" -> "First Name").
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a low-level database error into an application-level error.
//
//   - *errs.HTTPError: returned unchanged
//   - foreign key / not null / check violations: 400
//   - ErrNoRows: 404
//   - anything else, unique violations included: 500
//
// Duplicate primary keys are deliberately left as 500 here; callers that
// want a structured conflict convert them before the error reaches this point.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if sqlErr := Classify(err); sqlErr != nil {
		errorCode := GenerateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(userMessage, false, &errorCode, nil)

		case NotNullViolation:
			fieldErrors := []errs.FieldError{
				{
					Field: strings.ToLower(sqlErr.ColumnName),
					Error: "is required",
				},
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors)

		case CheckViolation:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
