package router

import (
	"github.com/labstack/echo/v4"

	"github.com/FaizaanMd/cinema-booking/internal/handler"
	"github.com/FaizaanMd/cinema-booking/internal/middleware"
	"github.com/FaizaanMd/cinema-booking/internal/session"
)

// RegisterBooking registers the booking workflow under /v1/bookings.
// Starting a booking needs no token; every other route requires the
// session token issued by the previous call.  The limiter runs after the
// session is decoded so buckets can be keyed per session.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, codec *session.Codec, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/bookings", middleware.BookingSession(codec), limiter)
	g.GET("", h.Get)
	g.POST("/showtime", h.SelectShowtime)
	g.PUT("/seats", h.UpdateSeats)
	g.POST("/seats/:seat/toggle", h.ToggleSeat)
	g.POST("/proceed", h.Proceed)
	g.POST("/confirm", h.Confirm)

	e.POST("/v1/bookings", h.Start, limiter)
}
