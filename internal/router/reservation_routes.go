package router

// Reservation management is public, as in the rest of the API: anyone
// holding a reservation id can view, cancel or delete it.

import (
	"github.com/labstack/echo/v4"

	"github.com/FaizaanMd/cinema-booking/internal/handler"
)

// RegisterReservations registers /v1/reservations.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/reservations", limiter)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/cancel", h.Cancel)
	g.DELETE("/:id", h.Delete)
}
