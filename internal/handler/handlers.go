// Package handler is the first layer after the router.
//
// It binds and validates requests through the validation package, calls
// the service layer and writes the response. It is the interface between
// the HTTP request and the business logic.
package handler

import (
	"io/fs"

	"github.com/deppfellow/people-api/internal/server"
	"github.com/deppfellow/people-api/internal/service"
)

// Handlers groups all HTTP handlers so router setup passes one value around.
type Handlers struct {
	People  *PersonHandler  // People serves the /people CRUD routes.
	Health  *HealthHandler  // Health serves /status.
	OpenAPI *OpenAPIHandler // OpenAPI serves the docs UI.
}

// NewHandlers constructs the handler container. assets holds the docs UI
// page and the OpenAPI document.
func NewHandlers(s *server.Server, services *service.Services, assets fs.FS) *Handlers {
	return &Handlers{
		People:  NewPersonHandler(s, services.People),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s, assets),
	}
}
