// Package errs defines the error shapes returned to API clients.
//
// Every failure the API reports leaves the process as an *HTTPError,
// serialized to JSON by the global error handler:
//
//   - consistent error shapes for API clients (JSON)
//   - field-level validation errors for malformed payloads
//   - machine-friendly codes (e.g. "PERSON_NOT_FOUND") next to human messages
//   - errors that play nicely with the standard errors package
package errs

import "strings"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "age", "error": "is required" }
type FieldError struct {
	// Field is the payload key the error relates to (e.g. "age").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// HTTPError is the main custom error type for API responses.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: whether clients may show Message to end users verbatim.
//   - Errors: list of per-field errors (validation).
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors"`
}

// Error returns the client-facing message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// It does not compare Code or Status; use errors.As and inspect the fields
// for that.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
	}
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
