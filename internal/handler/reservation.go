package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/FaizaanMd/cinema-booking/internal/model"
	"github.com/FaizaanMd/cinema-booking/internal/queue"
	"github.com/FaizaanMd/cinema-booking/internal/reservation"
)

// ReservationHandler exposes the reservation store: listing, search by
// email, lookup, cancel and delete.  None of these routes are
// authenticated.
type ReservationHandler struct {
	Store  *reservation.Store
	Events queue.Publisher
}

// NewReservationHandler wires the handler.  events may be nil.
func NewReservationHandler(store *reservation.Store, events queue.Publisher) *ReservationHandler {
	if store == nil {
		panic("nil store passed to NewReservationHandler")
	}
	return &ReservationHandler{Store: store, Events: events}
}

// List handles GET /v1/reservations.  With ?email= only that customer's
// reservations are returned; the match ignores case and surrounding
// whitespace.  The summary counts the returned items.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	email, filtered := c.QueryParams()["email"]

	var (
		items []model.Reservation
		err   error
	)
	if filtered {
		q := strings.TrimSpace(email[0])
		if q == "" || !strings.Contains(q, "@") {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Please enter a valid email address"})
		}
		items, err = h.Store.ListByEmail(ctx, q)
	} else {
		items, err = h.Store.ListAll(ctx)
	}
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":   items,
		"summary": reservation.Summarize(items),
	})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	r, err := h.Store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Cancel handles POST /v1/reservations/:id/cancel.  Cancelling an already
// cancelled reservation succeeds and returns it unchanged.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	ok, err := h.Store.Cancel(ctx, id)
	if err != nil {
		return errorResponse(c, err)
	}
	if !ok {
		return errorResponse(c, reservation.ErrNotFound)
	}
	r, err := h.Store.Get(ctx, id)
	if err != nil {
		// deleted between the two calls
		return errorResponse(c, err)
	}
	publishEvent(h.Events, queue.ReservationCancelled, r)
	return c.JSON(http.StatusOK, r)
}

// Delete handles DELETE /v1/reservations/:id.  Returns 204, or 404 when
// the id is unknown.
func (h *ReservationHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	r, err := h.Store.Take(ctx, id)
	if err != nil {
		return errorResponse(c, err)
	}
	publishEvent(h.Events, queue.ReservationDeleted, r)
	return c.NoContent(http.StatusNoContent)
}
