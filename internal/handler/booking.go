package handler

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FaizaanMd/cinema-booking/internal/booking"
	"github.com/FaizaanMd/cinema-booking/internal/catalog"
	"github.com/FaizaanMd/cinema-booking/internal/middleware"
	"github.com/FaizaanMd/cinema-booking/internal/model"
	"github.com/FaizaanMd/cinema-booking/internal/queue"
	"github.com/FaizaanMd/cinema-booking/internal/reservation"
	"github.com/FaizaanMd/cinema-booking/internal/session"
)

// BookingHandler drives the booking workflow over HTTP.  The workflow
// state travels in the session token; every mutating call answers with a
// fresh token that the client must send on the next call.  Submitted
// records sessions that already booked, which closes every earlier token
// of that session too.
type BookingHandler struct {
	Catalog   *catalog.Catalog
	Store     booking.Creator
	Codec     *session.Codec
	Submitted session.Ledger
	Events    queue.Publisher
}

// NewBookingHandler wires the handler.  events may be nil.
func NewBookingHandler(cat *catalog.Catalog, store booking.Creator, codec *session.Codec, submitted session.Ledger, events queue.Publisher) *BookingHandler {
	if cat == nil || store == nil || codec == nil || submitted == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Catalog: cat, Store: store, Codec: codec, Submitted: submitted, Events: events}
}

// bookingView is what clients see of a workflow.
type bookingView struct {
	MovieID       string          `json:"movieId"`
	MovieTitle    string          `json:"movieTitle"`
	Step          booking.Step    `json:"step"`
	Showtimes     []string        `json:"showtimes"`
	Showtime      string          `json:"showtime,omitempty"`
	SelectedSeats []string        `json:"selectedSeats"`
	Price         int             `json:"price"`
	TotalPrice    int             `json:"totalPrice"`
	Rows          []model.SeatRow `json:"rows,omitempty"`
	ReservationID string          `json:"reservationId,omitempty"`
}

type bookingResponse struct {
	Token   string      `json:"token"`
	Expires string      `json:"expiresAt"`
	Booking bookingView `json:"booking"`
}

func viewOf(w *booking.Workflow) (bookingView, error) {
	m := w.Movie()
	st := w.State()
	v := bookingView{
		MovieID:       m.ID,
		MovieTitle:    m.Title,
		Step:          st.Step,
		Showtimes:     m.Showtimes,
		Showtime:      st.Showtime,
		SelectedSeats: st.Seats,
		Price:         m.Price,
		TotalPrice:    w.TotalPrice(),
		ReservationID: st.ReservationID,
	}
	if st.Step != booking.ChoosingShowtime {
		view, err := renderSeats(m, st.Seats)
		if err != nil {
			return bookingView{}, err
		}
		v.Rows = view.Rows
	}
	return v, nil
}

// respond issues a token for w under sessionID and writes the view.
func (h *BookingHandler) respond(c echo.Context, status int, sessionID string, w *booking.Workflow) error {
	view, err := viewOf(w)
	if err != nil {
		return errorResponse(c, err)
	}
	tok, err := h.Codec.Issue(session.Session{ID: sessionID, Booking: w.State()})
	if err != nil {
		return errorResponse(c, err)
	}
	c.Response().Header().Set(middleware.HeaderBookingToken, tok.Token)
	return c.JSON(status, bookingResponse{
		Token:   tok.Token,
		Expires: tok.Exp.Format(time.RFC3339),
		Booking: view,
	})
}

// load restores the workflow from the session set by BookingSession.  A
// token that still looks open is refused once its session has booked.
func (h *BookingHandler) load(c echo.Context) (session.Session, *booking.Workflow, error) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return session.Session{}, nil, session.ErrInvalidToken
	}
	if s.Booking.ReservationID == "" {
		done, err := h.Submitted.Claimed(c.Request().Context(), s.ID)
		if err != nil {
			return session.Session{}, nil, fmt.Errorf("%w: session ledger: %w", reservation.ErrStoreFailure, err)
		}
		if done {
			return session.Session{}, nil, booking.ErrWorkflowClosed
		}
	}
	m, err := h.Catalog.GetMovieByID(s.Booking.MovieID)
	if err != nil {
		return session.Session{}, nil, err
	}
	w, err := booking.Restore(m, s.Booking)
	if err != nil {
		return session.Session{}, nil, err
	}
	return s, w, nil
}

// mutate runs fn against the restored workflow and answers with the new
// state and token.
func (h *BookingHandler) mutate(c echo.Context, fn func(*booking.Workflow) error) error {
	s, w, err := h.load(c)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := fn(w); err != nil {
		return errorResponse(c, err)
	}
	return h.respond(c, http.StatusOK, s.ID, w)
}

// Start handles POST /v1/bookings.  Body: {"movieId": "1"}.
func (h *BookingHandler) Start(c echo.Context) error {
	var body struct {
		MovieID string `json:"movieId"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.MovieID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movieId is required"})
	}
	m, err := h.Catalog.GetMovieByID(strings.TrimSpace(body.MovieID))
	if err != nil {
		return errorResponse(c, err)
	}
	w := booking.New(m)
	return h.respond(c, http.StatusCreated, session.New(w.State()).ID, w)
}

// Get handles GET /v1/bookings.  The token is re-issued so its lifetime
// is extended while the customer is active.
func (h *BookingHandler) Get(c echo.Context) error {
	return h.mutate(c, func(*booking.Workflow) error { return nil })
}

// SelectShowtime handles POST /v1/bookings/showtime.  Body: {"showtime": "6:00 PM"}.
func (h *BookingHandler) SelectShowtime(c echo.Context) error {
	var body struct {
		Showtime string `json:"showtime"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return h.mutate(c, func(w *booking.Workflow) error { return w.SelectShowtime(body.Showtime) })
}

// UpdateSeats handles PUT /v1/bookings/seats.  Body: {"seats": ["A3","A4"]}.
func (h *BookingHandler) UpdateSeats(c echo.Context) error {
	var body struct {
		Seats []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Seats == nil {
		body.Seats = []string{}
	}
	return h.mutate(c, func(w *booking.Workflow) error { return w.UpdateSeats(body.Seats) })
}

// ToggleSeat handles POST /v1/bookings/seats/:seat/toggle.
func (h *BookingHandler) ToggleSeat(c echo.Context) error {
	id := strings.ToUpper(c.Param("seat"))
	return h.mutate(c, func(w *booking.Workflow) error { return w.ToggleSeat(id) })
}

// Proceed handles POST /v1/bookings/proceed.
func (h *BookingHandler) Proceed(c echo.Context) error {
	return h.mutate(c, func(w *booking.Workflow) error { return w.Proceed() })
}

// Confirm handles POST /v1/bookings/confirm.  Body:
// {"name": "...", "email": "...", "phone": "..."}.  On success it returns
// 201 with the reservation and a closed-session token.
func (h *BookingHandler) Confirm(c echo.Context) error {
	var contact booking.Contact
	if err := c.Bind(&contact); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, w, err := h.load(c)
	if err != nil {
		return errorResponse(c, err)
	}
	ctx := c.Request().Context()
	first, err := h.Submitted.Claim(ctx, s.ID, h.Codec.TTL())
	if err != nil {
		return errorResponse(c, fmt.Errorf("%w: session ledger: %w", reservation.ErrStoreFailure, err))
	}
	if !first {
		return errorResponse(c, booking.ErrWorkflowClosed)
	}
	res, err := w.Submit(ctx, contact, h.Store)
	if err != nil {
		if rerr := h.Submitted.Release(ctx, s.ID); rerr != nil {
			log.Printf("handler: release session %s: %v", s.ID, rerr)
		}
		return errorResponse(c, err)
	}
	publishEvent(h.Events, queue.ReservationConfirmed, res)

	tok, err := h.Codec.Issue(session.Session{ID: s.ID, Booking: w.State()})
	if err != nil {
		return errorResponse(c, err)
	}
	c.Response().Header().Set(middleware.HeaderBookingToken, tok.Token)
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res, "token": tok.Token})
}
