package router

import (
	"net/http"

	"github.com/deppfellow/people-api/internal/handler"
	"github.com/deppfellow/people-api/internal/model/person"
	"github.com/labstack/echo/v4"
)

func registerPeopleRoutes(r *echo.Echo, h *handler.Handlers) {
	people := h.People
	base := people.Handler

	group := r.Group("/people")

	group.POST("", handler.Handle(base, people.CreatePerson, http.StatusOK, &person.CreatePersonPayload{}))
	group.GET("", handler.Handle(base, people.ListPeople, http.StatusOK, &person.ListPeoplePayload{}))
	group.GET("/:id", handler.Handle(base, people.GetPerson, http.StatusOK, &person.GetPersonPayload{}))
	group.PUT("/:id", handler.Handle(base, people.UpdatePerson, http.StatusOK, &person.UpdatePersonPayload{}))
	group.DELETE("/:id", handler.Handle(base, people.DeletePerson, http.StatusOK, &person.DeletePersonPayload{}))
}
