package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/people-api/internal/config"
	"github.com/deppfellow/people-api/internal/errs"
	"github.com/deppfellow/people-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(buf *bytes.Buffer) *server.Server {
	logger := zerolog.New(buf)
	return &server.Server{
		Config: config.Default(),
		Logger: &logger,
	}
}

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, errs.HTTPError) {
	t.Helper()

	var logs bytes.Buffer
	global := NewGlobalMiddlewares(newTestServer(&logs))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	global.GlobalErrorHandler(err, c)

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestGlobalErrorHandlerWritesHTTPErrors(t *testing.T) {
	code := "PERSON_NOT_FOUND"
	rec, body := serveError(t, errs.NewNotFoundError("Person not found", true, &code))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PERSON_NOT_FOUND", body.Code)
	assert.Equal(t, "Person not found", body.Message)
	assert.True(t, body.Override)
}

func TestGlobalErrorHandlerRouteNotFound(t *testing.T) {
	rec, body := serveError(t, echo.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", body.Message)
}

func TestGlobalErrorHandlerKeepsEchoStatus(t *testing.T) {
	rec, body := serveError(t, echo.ErrMethodNotAllowed)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body.Code)
}

func TestGlobalErrorHandlerHidesUnknownErrors(t *testing.T) {
	rec, body := serveError(t, fmt.Errorf("disk full at /var/lib/people.sqlite"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body.Message)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestRequestIDGeneratesAndReuses(t *testing.T) {
	e := echo.New()
	var seen string
	h := RequestID()(func(c echo.Context) error {
		seen = GetRequestID(c)
		return nil
	})

	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, "upstream-id", seen)
}

func TestEnhanceContextStoresRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	ce := NewContextEnhancer(newTestServer(&logs))

	e := echo.New()
	h := RequestID()(ce.EnhanceContext()(func(c echo.Context) error {
		GetLogger(c).Info().Msg("from echo context")
		zerolog.Ctx(c.Request().Context()).Info().Msg("from request context")
		return nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/people", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	require.NoError(t, h(e.NewContext(req, httptest.NewRecorder())))

	lines := bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, "req-1", entry["request_id"])
		assert.Equal(t, http.MethodGet, entry["method"])
	}
}

func TestGetLoggerWithoutEnhancerIsNop(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Equal(t, zerolog.Disabled, GetLogger(c).GetLevel())
}
