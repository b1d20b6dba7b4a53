package sqlerr

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/people-api/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteError provokes a real driver error so messages match what the
// driver produces at runtime.
func sqliteError(t *testing.T, stmts ...string) error {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER NOT NULL CHECK (age >= 0))`)
	require.NoError(t, err)

	for _, stmt := range stmts {
		if _, err = db.Exec(stmt); err != nil {
			return err
		}
	}
	t.Fatalf("expected one of %v to fail", stmts)
	return nil
}

func TestClassifySQLitePrimaryKeyViolation(t *testing.T) {
	err := sqliteError(t,
		`INSERT INTO people (id, name, age) VALUES (1, 'Ann', 30)`,
		`INSERT INTO people (id, name, age) VALUES (1, 'Bob', 40)`,
	)

	sqlErr := Classify(fmt.Errorf("insert person: %w", err))
	require.NotNil(t, sqlErr)
	assert.Equal(t, UniqueViolation, sqlErr.Code)
	assert.Equal(t, "people", sqlErr.TableName)
	assert.Equal(t, "id", sqlErr.ColumnName)
	assert.Equal(t, UniqueViolation, ErrCode(err))
}

func TestClassifySQLiteNotNullViolation(t *testing.T) {
	err := sqliteError(t, `INSERT INTO people (id, name, age) VALUES (1, NULL, 30)`)

	handled := HandleError(err)
	httpErr, ok := handled.(*errs.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "PERSON_REQUIRED", httpErr.Code)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "name", httpErr.Errors[0].Field)
}

func TestClassifySQLiteCheckViolation(t *testing.T) {
	err := sqliteError(t, `INSERT INTO people (id, name, age) VALUES (1, 'Ann', -1)`)
	assert.Equal(t, CheckViolation, ErrCode(err))
}

func TestHandleErrorLeavesDuplicateKeysAsInternal(t *testing.T) {
	err := sqliteError(t,
		`INSERT INTO people (id, name, age) VALUES (7, 'Ann', 30)`,
		`INSERT INTO people (id, name, age) VALUES (7, 'Ann', 30)`,
	)

	handled := HandleError(err)
	httpErr, ok := handled.(*errs.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, "Internal Server Error", httpErr.Message)
}

func TestConvertPgError(t *testing.T) {
	pgErr := &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint \"people_pkey\"",
		TableName:      "people",
		ConstraintName: "people_pkey",
	}

	sqlErr := Classify(fmt.Errorf("wrapped: %w", pgErr))
	require.NotNil(t, sqlErr)
	assert.Equal(t, UniqueViolation, sqlErr.Code)
	assert.Equal(t, SeverityError, sqlErr.Severity)
	assert.Equal(t, "people", sqlErr.TableName)
	assert.ErrorIs(t, sqlErr, pgErr)
}

func TestHandleErrorPassesHTTPErrorsThrough(t *testing.T) {
	original := errs.NewNotFoundError("Person not found", true, nil)
	assert.Same(t, original, HandleError(original))
}

func TestHandleErrorNoRows(t *testing.T) {
	handled := HandleError(fmt.Errorf("get: %w", sql.ErrNoRows))
	httpErr, ok := handled.(*errs.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestHandleErrorUnknown(t *testing.T) {
	handled := HandleError(fmt.Errorf("boom"))
	httpErr, ok := handled.(*errs.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestGenerateErrorCode(t *testing.T) {
	assert.Equal(t, "PERSON_ALREADY_EXISTS", GenerateErrorCode("people", UniqueViolation))
	assert.Equal(t, "USER_NOT_FOUND", GenerateErrorCode("users", ForeignKeyViolation))
	assert.Equal(t, "RECORD_ERROR", GenerateErrorCode("", Other))
}

func TestMapCode(t *testing.T) {
	assert.Equal(t, NotNullViolation, MapCode("23502"))
	assert.Equal(t, ConnectionFailure, MapCode("08006"))
	assert.Equal(t, Other, MapCode("XX000"))
}
