package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deppfellow/people-api/internal/config"
	"github.com/deppfellow/people-api/internal/errs"
	"github.com/deppfellow/people-api/internal/handler"
	"github.com/deppfellow/people-api/internal/middleware"
	"github.com/deppfellow/people-api/internal/model/person"
	"github.com/deppfellow/people-api/internal/repository"
	"github.com/deppfellow/people-api/internal/server"
	"github.com/deppfellow/people-api/internal/service"
	"github.com/deppfellow/people-api/static"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type PeopleAPISuite struct {
	suite.Suite

	server *server.Server
	router *echo.Echo
}

func TestPeopleAPI(t *testing.T) {
	suite.Run(t, new(PeopleAPISuite))
}

func (s *PeopleAPISuite) SetupTest() {
	s.setup(func(*config.Config) {})
}

func (s *PeopleAPISuite) TearDownTest() {
	s.Require().NoError(s.server.DB.Close())
}

func (s *PeopleAPISuite) setup(configure func(*config.Config)) {
	cfg := config.Default()
	cfg.Primary.Env = "test"
	cfg.Database.SQLitePath = filepath.Join(s.T().TempDir(), "people.sqlite")
	configure(cfg)

	logger := zerolog.Nop()
	srv, err := server.New(cfg, &logger, nil)
	s.Require().NoError(err)

	services, err := service.NewService(srv, repository.NewRepositories(srv))
	s.Require().NoError(err)

	s.server = srv
	s.router = NewRouter(srv, handler.NewHandlers(srv, services, static.FS))
}

func (s *PeopleAPISuite) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *PeopleAPISuite) decodePerson(rec *httptest.ResponseRecorder) person.Person {
	var p person.Person
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func (s *PeopleAPISuite) decodeError(rec *httptest.ResponseRecorder) errs.HTTPError {
	var e errs.HTTPError
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func (s *PeopleAPISuite) createAnn() {
	rec := s.do(http.MethodPost, "/people", `{"id":1,"name":"Ann","age":30,"gender":"F"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *PeopleAPISuite) requireNotFound(rec *httptest.ResponseRecorder) {
	s.Require().Equal(http.StatusNotFound, rec.Code)
	e := s.decodeError(rec)
	s.Equal("PERSON_NOT_FOUND", e.Code)
	s.Equal("Person not found", e.Message)
}

func (s *PeopleAPISuite) TestCreateReadDelete() {
	ann := person.Person{ID: 1, Name: "Ann", Age: 30, Gender: "F"}

	rec := s.do(http.MethodPost, "/people", `{"id":1,"name":"Ann","age":30,"gender":"F"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(ann, s.decodePerson(rec))

	rec = s.do(http.MethodGet, "/people/1", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(ann, s.decodePerson(rec))

	rec = s.do(http.MethodDelete, "/people/1", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(ann, s.decodePerson(rec))

	s.requireNotFound(s.do(http.MethodGet, "/people/1", ""))
}

func (s *PeopleAPISuite) TestReadMissing() {
	s.requireNotFound(s.do(http.MethodGet, "/people/404", ""))
}

func (s *PeopleAPISuite) TestUpdate() {
	s.createAnn()

	rec := s.do(http.MethodPut, "/people/1", `{"id":1,"name":"Anne","age":31,"gender":"X"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(person.Person{ID: 1, Name: "Anne", Age: 31, Gender: "X"}, s.decodePerson(rec))

	rec = s.do(http.MethodGet, "/people/1", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("Anne", s.decodePerson(rec).Name)
}

func (s *PeopleAPISuite) TestUpdateMovesID() {
	s.createAnn()

	rec := s.do(http.MethodPut, "/people/1", `{"id":2,"name":"Ann","age":30,"gender":"F"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(int64(2), s.decodePerson(rec).ID)

	s.requireNotFound(s.do(http.MethodGet, "/people/1", ""))
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/people/2", "").Code)
}

func (s *PeopleAPISuite) TestUpdateMissing() {
	s.requireNotFound(s.do(http.MethodPut, "/people/9", `{"id":9,"name":"Nobody","age":1,"gender":"M"}`))
}

func (s *PeopleAPISuite) TestDeleteMissing() {
	s.requireNotFound(s.do(http.MethodDelete, "/people/9", ""))
}

func (s *PeopleAPISuite) TestListEmpty() {
	rec := s.do(http.MethodGet, "/people", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *PeopleAPISuite) TestListReturnsEveryCreatedRecord() {
	const n = 5
	for i := 1; i <= n; i++ {
		body := fmt.Sprintf(`{"id":%d,"name":"p%d","age":%d,"gender":"F"}`, i, i, 20+i)
		s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/people", body).Code)
	}

	rec := s.do(http.MethodGet, "/people", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var people []person.Person
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &people))
	s.Len(people, n)

	ids := make([]int64, 0, n)
	for _, p := range people {
		ids = append(ids, p.ID)
	}
	s.ElementsMatch([]int64{1, 2, 3, 4, 5}, ids)
}

func (s *PeopleAPISuite) TestTrailingSlashIsAccepted() {
	s.createAnn()

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/people/", "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/people/1/", "").Code)
}

func (s *PeopleAPISuite) TestCreateMissingFields() {
	rec := s.do(http.MethodPost, "/people", `{"id":1,"name":"Ann"}`)
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	e := s.decodeError(rec)
	s.Equal("Validation failed", e.Message)
	s.ElementsMatch([]errs.FieldError{
		{Field: "age", Error: "is required"},
		{Field: "gender", Error: "is required"},
	}, e.Errors)

	s.requireNotFound(s.do(http.MethodGet, "/people/1", ""))
}

func (s *PeopleAPISuite) TestCreateMalformedJSON() {
	rec := s.do(http.MethodPost, "/people", `{"id":1,`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *PeopleAPISuite) TestCreateWrongType() {
	rec := s.do(http.MethodPost, "/people", `{"id":"one","name":"Ann","age":30,"gender":"F"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *PeopleAPISuite) TestNonNumericID() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/people/abc", "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodDelete, "/people/abc", "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/people/abc", `{"id":1,"name":"Ann","age":30,"gender":"F"}`).Code)
}

func (s *PeopleAPISuite) TestUpdateMissingFields() {
	s.createAnn()

	rec := s.do(http.MethodPut, "/people/1", `{"name":"Anne"}`)
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/people/1", "")
	s.Equal("Ann", s.decodePerson(rec).Name)
}

// A payload must never inherit fields bound by an earlier request.
func (s *PeopleAPISuite) TestPayloadsAreNotShared() {
	s.createAnn()

	rec := s.do(http.MethodPost, "/people", `{"name":"Bob","age":40,"gender":"M"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *PeopleAPISuite) TestDuplicateIDIsInternalError() {
	s.createAnn()

	rec := s.do(http.MethodPost, "/people", `{"id":1,"name":"Bob","age":40,"gender":"M"}`)
	s.Require().Equal(http.StatusInternalServerError, rec.Code)

	e := s.decodeError(rec)
	s.Equal("INTERNAL_SERVER_ERROR", e.Code)
	s.Equal("Internal Server Error", e.Message)

	rec = s.do(http.MethodGet, "/people/1", "")
	s.Equal("Ann", s.decodePerson(rec).Name)
}

func (s *PeopleAPISuite) TestDuplicateIDIsConflictWhenRejecting() {
	s.Require().NoError(s.server.DB.Close())
	s.setup(func(cfg *config.Config) { cfg.API.RejectDuplicateIDs = true })

	s.createAnn()

	rec := s.do(http.MethodPost, "/people", `{"id":1,"name":"Bob","age":40,"gender":"M"}`)
	s.Require().Equal(http.StatusConflict, rec.Code)
	s.Equal("PERSON_ALREADY_EXISTS", s.decodeError(rec).Code)
}

func (s *PeopleAPISuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/nope", "")
	s.Require().Equal(http.StatusNotFound, rec.Code)
	s.Equal("Route not found", s.decodeError(rec).Message)
}

func (s *PeopleAPISuite) TestRequestIDIsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/people", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal("abc-123", rec.Header().Get(middleware.RequestIDHeader))
	s.NotEmpty(s.do(http.MethodGet, "/people", "").Header().Get(middleware.RequestIDHeader))
}

func (s *PeopleAPISuite) TestStatus() {
	rec := s.do(http.MethodGet, "/status", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("healthy", body["status"])
	s.Equal("test", body["environment"])
}

func (s *PeopleAPISuite) TestStatusUnhealthyWhenDatabaseIsClosed() {
	s.Require().NoError(s.server.DB.DB.Close())

	rec := s.do(http.MethodGet, "/status", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *PeopleAPISuite) TestMetrics() {
	s.createAnn()
	s.Require().Equal(http.StatusOK, s.do(http.MethodDelete, "/people/1", "").Code)

	rec := s.do(http.MethodGet, "/metrics", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, "people_records_created_total 1")
	s.Contains(body, "people_records_deleted_total 1")
	s.Contains(body, `people_db_query_duration_seconds_count{operation="create_person"} 1`)
}

func (s *PeopleAPISuite) TestDocs() {
	rec := s.do(http.MethodGet, "/docs", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	s.Equal("no-cache", rec.Header().Get("Cache-Control"))

	rec = s.do(http.MethodGet, "/static/openapi.json", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var doc map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
	s.Contains(doc["paths"], "/people/{id}")
}
