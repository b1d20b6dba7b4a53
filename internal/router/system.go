package router

import (
	"github.com/deppfellow/people-api/internal/handler"
	"github.com/deppfellow/people-api/internal/server"
	"github.com/deppfellow/people-api/static"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerSystemRoutes registers endpoints that are not part of the people
// API: health, metrics, the docs UI and its static assets.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	obs := s.Config.Observability

	if obs.HealthChecks.Enabled {
		r.GET("/status", h.Health.CheckHealth)
	}

	if obs.Metrics.Enabled {
		r.GET(obs.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(s.Metrics, promhttp.HandlerOpts{
			Registry: s.Metrics,
		})))
	}

	// openapi.json and openapi.html.
	r.StaticFS("/static", static.FS)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
