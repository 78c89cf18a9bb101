package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FaizaanMd/cinema-booking/internal/booking"
	"github.com/FaizaanMd/cinema-booking/internal/catalog"
	"github.com/FaizaanMd/cinema-booking/internal/model"
	"github.com/FaizaanMd/cinema-booking/internal/queue"
	"github.com/FaizaanMd/cinema-booking/internal/reservation"
	"github.com/FaizaanMd/cinema-booking/internal/seatmap"
	"github.com/FaizaanMd/cinema-booking/internal/session"
)

// errorResponse translates domain errors into HTTP responses.  Unknown
// errors become 500 and are logged; their text is not sent to the client.
func errorResponse(c echo.Context, err error) error {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid contact details", "fields": verr.Fields})
	case errors.Is(err, catalog.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, reservation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, booking.ErrWrongStep), errors.Is(err, booking.ErrWorkflowClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidShowtime),
		errors.Is(err, booking.ErrEmptySelection),
		errors.Is(err, booking.ErrInvalidSeat),
		errors.Is(err, seatmap.ErrInvalidSeatID),
		errors.Is(err, reservation.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, session.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid booking token"})
	case errors.Is(err, reservation.ErrStoreFailure):
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "reservation service unavailable, please try again"})
	default:
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

const publishTimeout = 5 * time.Second

// publishEvent sends an event for r in the background.  Failures are
// logged here and otherwise ignored.
func publishEvent(p queue.Publisher, t queue.EventType, r model.Reservation) {
	if p == nil {
		return
	}
	ev := queue.NewReservationEvent(t, r, time.Now())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			log.Printf("handler: publish %s for %s: %v", t, r.ID, err)
		}
	}()
}
