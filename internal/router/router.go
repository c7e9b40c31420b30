package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-times/internal/handler"
)

// RegisterRoutes registers the health check on the provided Echo
// instance.  This endpoint is used by load balancers and monitoring
// systems to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterShowtimes registers the read-only browsing endpoints under
// /v1.  These return stored showtimes and the theater registry and are
// the routes worth caching.
func RegisterShowtimes(e *echo.Echo, s *handler.ShowtimeHandler, d *handler.DeletedHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	// Stored showtimes for one theater over a date-expression range.
	g.GET("/showtimes/:theater", s.GetShowtimes)
	// Known theaters with their last refresh times.
	g.GET("/theaters", s.GetTheaters)
	// Showtimes that vanished from the source on a given day.
	g.GET("/deleted", d.GetDeleted)
}

// RegisterAdmin registers the mutating endpoints: movie visibility and
// the personal planner.  These bypass the response cache.
func RegisterAdmin(e *echo.Echo, m *handler.MovieHandler, p *handler.PlannerHandler) {
	g := e.Group("/v1")
	// Hide or show a movie title on the listing surface.
	g.PUT("/movies/:title/hide", m.HideMovie)
	g.PUT("/movies/:title/show", m.ShowMovie)
	// Personal planner CRUD.
	g.GET("/planner", p.GetPlanner)
	g.POST("/planner", p.AddPlanned)
	g.DELETE("/planner", p.RemovePlanned)
	g.DELETE("/planner/window", p.ClearPlanner)
}
