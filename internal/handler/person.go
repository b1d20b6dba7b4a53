package handler

import (
	"github.com/deppfellow/people-api/internal/model/person"
	"github.com/deppfellow/people-api/internal/server"
	"github.com/deppfellow/people-api/internal/service"
	"github.com/labstack/echo/v4"
)

// PersonHandler serves the /people routes. Every success is 200 with the
// affected record (or the list) as the body.
type PersonHandler struct {
	Handler
	people *service.PersonService
}

func NewPersonHandler(s *server.Server, people *service.PersonService) *PersonHandler {
	return &PersonHandler{
		Handler: NewHandler(s),
		people:  people,
	}
}

func (h *PersonHandler) CreatePerson(c echo.Context, payload *person.CreatePersonPayload) (*person.Person, error) {
	return h.people.Create(c.Request().Context(), payload.Person())
}

func (h *PersonHandler) GetPerson(c echo.Context, payload *person.GetPersonPayload) (*person.Person, error) {
	return h.people.Get(c.Request().Context(), payload.ID)
}

func (h *PersonHandler) UpdatePerson(c echo.Context, payload *person.UpdatePersonPayload) (*person.Person, error) {
	return h.people.Update(c.Request().Context(), payload.PathID, payload.Fields())
}

func (h *PersonHandler) DeletePerson(c echo.Context, payload *person.DeletePersonPayload) (*person.Person, error) {
	return h.people.Delete(c.Request().Context(), payload.ID)
}

func (h *PersonHandler) ListPeople(c echo.Context, _ *person.ListPeoplePayload) ([]person.Person, error) {
	return h.people.List(c.Request().Context())
}
