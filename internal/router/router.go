// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/FaizaanMd/cinema-booking/internal/handler"
)

// RegisterRoutes registers the probes that sit outside the /v1 API.
// ready may be nil, in which case /readyz is not exposed.
func RegisterRoutes(e *echo.Echo, ready *handler.Readiness) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready.Ready)
	}
}

// RegisterCatalog registers the movie catalog.  cache wraps every catalog
// route; pass a pass-through middleware to disable it.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/movies", cache)
	g.GET("", h.ListMovies)
	g.GET("/:id", h.GetMovie)
	g.GET("/:id/seats", h.GetSeats)

	e.GET("/v1/search/movies", h.SearchMovies, cache)
}
