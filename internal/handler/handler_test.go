package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FaizaanMd/cinema-booking/internal/booking"
	"github.com/FaizaanMd/cinema-booking/internal/catalog"
	"github.com/FaizaanMd/cinema-booking/internal/config"
	"github.com/FaizaanMd/cinema-booking/internal/handler"
	"github.com/FaizaanMd/cinema-booking/internal/middleware"
	"github.com/FaizaanMd/cinema-booking/internal/model"
	"github.com/FaizaanMd/cinema-booking/internal/queue"
	"github.com/FaizaanMd/cinema-booking/internal/reservation"
	"github.com/FaizaanMd/cinema-booking/internal/router"
	"github.com/FaizaanMd/cinema-booking/internal/session"
)

// recorder collects published events.
type recorder struct {
	events chan queue.ReservationEvent
}

func (r *recorder) Publish(_ context.Context, ev queue.ReservationEvent) error {
	r.events <- ev
	return nil
}

func (r *recorder) next(t *testing.T) queue.ReservationEvent {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return queue.ReservationEvent{}
	}
}

type app struct {
	e      *echo.Echo
	store  *reservation.Store
	events *recorder
}

func newApp(t *testing.T) *app {
	t.Helper()
	cat := catalog.Default()
	store := reservation.NewStore(reservation.NewMemoryStorage(),
		reservation.WithIDGenerator(reservation.NewSequence("bk-", 0)),
		reservation.WithClock(func() time.Time { return time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, store.Seed(context.Background(), reservation.DemoReservations()...))

	codec := session.NewCodec("test-secret", time.Minute)
	events := &recorder{events: make(chan queue.ReservationEvent, 8)}
	off := middleware.NewRedisCache(config.CacheConfig{}, nil)

	e := echo.New()
	router.RegisterRoutes(e, &handler.Readiness{Checks: map[string]handler.Check{
		"memory": func(context.Context) error { return nil },
	}})
	router.RegisterCatalog(e, handler.NewCatalogHandler(cat), off)
	router.RegisterBooking(e, handler.NewBookingHandler(cat, store, codec, session.NewMemoryLedger(), events), codec, off)
	router.RegisterReservations(e, handler.NewReservationHandler(store, events), off)
	return &app{e: e, store: store, events: events}
}

func (a *app) do(method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(middleware.HeaderBookingToken, token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type bookingBody struct {
	Token   string `json:"token"`
	Expires string `json:"expiresAt"`
	Booking struct {
		MovieID       string          `json:"movieId"`
		Step          booking.Step    `json:"step"`
		Showtime      string          `json:"showtime"`
		SelectedSeats []string        `json:"selectedSeats"`
		TotalPrice    int             `json:"totalPrice"`
		Rows          []model.SeatRow `json:"rows"`
	} `json:"booking"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReadiness(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = a.do(http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"memory":"ok"}}`, rec.Body.String())
}

func TestReadiness_FailingCheck(t *testing.T) {
	e := echo.New()
	router.RegisterRoutes(e, &handler.Readiness{Checks: map[string]handler.Check{
		"mysql": func(context.Context) error { return errors.New("connection refused") },
		"redis": func(context.Context) error { return nil },
	}})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"mysql":"connection refused","redis":"ok"}}`, rec.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/v1/movies", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Items []model.Movie `json:"items"`
	}](t, rec)
	require.Len(t, list.Items, 4)
	assert.Equal(t, "1", list.Items[0].ID)

	rec = a.do(http.MethodGet, "/v1/movies/2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Top Gun: Maverick", decode[model.Movie](t, rec).Title)

	rec = a.do(http.MethodGet, "/v1/movies/99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"movie not found"}`, rec.Body.String())
}

func TestSeatsPreview(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/v1/movies/1/seats?selected=a3,A4,A1,A3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[struct {
		Price         int             `json:"price"`
		Rows          []model.SeatRow `json:"rows"`
		SelectedSeats []string        `json:"selectedSeats"`
		TotalPrice    int             `json:"totalPrice"`
	}](t, rec)
	assert.Equal(t, 250, view.Price)
	require.Len(t, view.Rows, 10)
	assert.Equal(t, "A", view.Rows[0].Label)
	assert.Equal(t, model.SeatReserved, view.Rows[0].Seats[0].Status)
	assert.Equal(t, model.SeatSelected, view.Rows[0].Seats[2].Status)
	assert.Equal(t, []string{"A3", "A4"}, view.SelectedSeats)
	assert.Equal(t, 500, view.TotalPrice)

	rec = a.do(http.MethodGet, "/v1/movies/1/seats?selected=Z1", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMovies(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/v1/search/movies?genre=action&page_size=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[struct {
		Data     []model.Movie `json:"data"`
		Total    int           `json:"total"`
		Page     int           `json:"page"`
		PageSize int           `json:"page_size"`
	}](t, rec)
	assert.Len(t, res.Data, 2)
	assert.GreaterOrEqual(t, res.Total, 2)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 2, res.PageSize)

	rec = a.do(http.MethodGet, "/v1/search/movies?title=nothing-matches", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total":0,"page":1,"page_size":20}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/search/movies?page=461168601842738792", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total":4,"page":461168601842738792,"page_size":20}`, rec.Body.String())
}

func TestBookingFlow(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/v1/bookings", `{"movieId":"1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b := decode[bookingBody](t, rec)
	assert.Equal(t, booking.ChoosingShowtime, b.Booking.Step)
	assert.Empty(t, b.Booking.Rows)
	assert.Equal(t, b.Token, rec.Header().Get(middleware.HeaderBookingToken))
	_, err := time.Parse(time.RFC3339, b.Expires)
	require.NoError(t, err)

	rec = a.do(http.MethodPost, "/v1/bookings/seats/A3/toggle", "", b.Token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/v1/bookings/showtime", `{"showtime":"6:00 PM"}`, b.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b = decode[bookingBody](t, rec)
	assert.Equal(t, booking.ChoosingSeats, b.Booking.Step)
	assert.Len(t, b.Booking.Rows, 10)

	rec = a.do(http.MethodPost, "/v1/bookings/proceed", "", b.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"please select at least one seat"}`, rec.Body.String())

	for _, seat := range []string{"A3", "a4"} {
		rec = a.do(http.MethodPost, "/v1/bookings/seats/"+seat+"/toggle", "", b.Token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		b = decode[bookingBody](t, rec)
	}
	assert.Equal(t, []string{"A3", "A4"}, b.Booking.SelectedSeats)
	assert.Equal(t, 500, b.Booking.TotalPrice)

	// reserved seats ignore clicks
	rec = a.do(http.MethodPost, "/v1/bookings/seats/A1/toggle", "", b.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"A3", "A4"}, decode[bookingBody](t, rec).Booking.SelectedSeats)

	rec = a.do(http.MethodPost, "/v1/bookings/seats/Z9/toggle", "", b.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/v1/bookings/proceed", "", b.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	b = decode[bookingBody](t, rec)
	assert.Equal(t, booking.Confirming, b.Booking.Step)

	rec = a.do(http.MethodPost, "/v1/bookings/confirm", `{"name":"J","email":"nope","phone":"12"}`, b.Token)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	verr := decode[struct {
		Fields []booking.FieldError `json:"fields"`
	}](t, rec)
	assert.Len(t, verr.Fields, 3)

	rec = a.do(http.MethodPost, "/v1/bookings/confirm",
		`{"name":"Asha Rao","email":"asha@example.com","phone":"9876543210"}`, b.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	done := decode[struct {
		Reservation model.Reservation `json:"reservation"`
		Token       string            `json:"token"`
	}](t, rec)
	r := done.Reservation
	assert.Equal(t, "bk-001", r.ID)
	assert.Equal(t, "Avatar: The Way of Water", r.MovieTitle)
	assert.Equal(t, "6:00 PM", r.Showtime)
	assert.Equal(t, []string{"A3", "A4"}, r.Seats)
	assert.Equal(t, 500, r.TotalPrice)
	assert.Equal(t, "2024-02-01", r.BookingDate)
	assert.Equal(t, model.StatusConfirmed, r.Status)

	ev := a.events.next(t)
	assert.Equal(t, queue.ReservationConfirmed, ev.Type)
	assert.Equal(t, "bk-001", ev.ReservationID)

	rec = a.do(http.MethodPost, "/v1/bookings/confirm",
		`{"name":"Asha Rao","email":"asha@example.com","phone":"9876543210"}`, done.Token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	stored, err := a.store.Get(context.Background(), "bk-001")
	require.NoError(t, err)
	assert.Equal(t, r, stored)
}

func TestBooking_OlderTokensClosedAfterConfirm(t *testing.T) {
	a := newApp(t)
	contact := `{"name":"Asha Rao","email":"asha@example.com","phone":"9876543210"}`

	b := decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings", `{"movieId":"1"}`, ""))
	b = decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings/showtime", `{"showtime":"6:00 PM"}`, b.Token))
	seats := decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings/seats/A3/toggle", "", b.Token))
	ready := decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings/proceed", "", seats.Token))
	require.Equal(t, booking.Confirming, ready.Booking.Step)

	rec := a.do(http.MethodPost, "/v1/bookings/confirm", contact, ready.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	done := decode[struct {
		Token string `json:"token"`
	}](t, rec)
	a.events.next(t)

	rec = a.do(http.MethodPost, "/v1/bookings/confirm", contact, ready.Token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"booking already submitted"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/v1/bookings/seats/A4/toggle", "", seats.Token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// the closed token still shows the finished booking
	rec = a.do(http.MethodGet, "/v1/bookings", "", done.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	all, err := a.store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
	_, err = a.store.Get(context.Background(), "bk-002")
	assert.ErrorIs(t, err, reservation.ErrNotFound)
}

func TestBooking_FailedConfirmCanRetry(t *testing.T) {
	a := newApp(t)

	b := decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings", `{"movieId":"1"}`, ""))
	b = decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings/showtime", `{"showtime":"6:00 PM"}`, b.Token))
	b = decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings/seats/A3/toggle", "", b.Token))
	b = decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings/proceed", "", b.Token))

	rec := a.do(http.MethodPost, "/v1/bookings/confirm", `{"name":"","email":"x","phone":"1"}`, b.Token)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(http.MethodGet, "/v1/bookings", "", b.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodPost, "/v1/bookings/confirm",
		`{"name":"Asha Rao","email":"asha@example.com","phone":"9876543210"}`, b.Token)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a.events.next(t)
}

func TestBooking_ReplaceSeats(t *testing.T) {
	a := newApp(t)

	b := decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings", `{"movieId":"2"}`, ""))
	b = decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings/showtime", `{"showtime":"7:00 PM"}`, b.Token))

	rec := a.do(http.MethodPut, "/v1/bookings/seats", `{"seats":["C3","C4","C5"]}`, b.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b = decode[bookingBody](t, rec)
	assert.Equal(t, 660, b.Booking.TotalPrice)

	rec = a.do(http.MethodPut, "/v1/bookings/seats", `{"seats":["A3"]}`, b.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/v1/bookings", "", b.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"C3", "C4", "C5"}, decode[bookingBody](t, rec).Booking.SelectedSeats)
}

func TestBooking_Errors(t *testing.T) {
	a := newApp(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		token  string
		want   int
	}{
		{"missing token", http.MethodGet, "/v1/bookings", "", "", http.StatusUnauthorized},
		{"garbage token", http.MethodPost, "/v1/bookings/proceed", "", "not-a-token", http.StatusUnauthorized},
		{"missing movie id", http.MethodPost, "/v1/bookings", `{}`, "", http.StatusBadRequest},
		{"unknown movie", http.MethodPost, "/v1/bookings", `{"movieId":"42"}`, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(tt.method, tt.target, tt.body, tt.token)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBooking_BearerToken(t *testing.T) {
	a := newApp(t)
	b := decode[bookingBody](t, a.do(http.MethodPost, "/v1/bookings", `{"movieId":"3"}`, ""))

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/showtime", strings.NewReader(`{"showtime":"8:00 PM"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+b.Token)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "8:00 PM", decode[bookingBody](t, rec).Booking.Showtime)
}

func TestReservations_ListAndSummary(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/v1/reservations", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Items   []model.Reservation `json:"items"`
		Summary reservation.Summary `json:"summary"`
	}](t, rec)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "res-001", list.Items[0].ID)
	assert.Equal(t, "res-002", list.Items[1].ID)
	assert.Equal(t, reservation.Summary{Total: 2, Confirmed: 2}, list.Summary)
}

func TestReservations_ByEmail(t *testing.T) {
	a := newApp(t)

	tests := []struct {
		name  string
		query string
		want  int
		ids   []string
	}{
		{"exact", "?email=jane.smith@example.com", http.StatusOK, []string{"res-002"}},
		{"case and space", "?email=%20JOHN.DOE@Example.com%20", http.StatusOK, []string{"res-001"}},
		{"no match", "?email=nobody@example.com", http.StatusOK, []string{}},
		{"blank", "?email=", http.StatusBadRequest, nil},
		{"not an email", "?email=john", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, "/v1/reservations"+tt.query, "", "")
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.ids == nil {
				return
			}
			list := decode[struct {
				Items []model.Reservation `json:"items"`
			}](t, rec)
			ids := make([]string, 0, len(list.Items))
			for _, r := range list.Items {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestReservations_CancelAndDelete(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/v1/reservations/res-002", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 660, decode[model.Reservation](t, rec).TotalPrice)

	rec = a.do(http.MethodPost, "/v1/reservations/res-002/cancel", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusCancelled, decode[model.Reservation](t, rec).Status)
	assert.Equal(t, queue.ReservationCancelled, a.events.next(t).Type)

	rec = a.do(http.MethodPost, "/v1/reservations/res-002/cancel", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	a.events.next(t)

	rec = a.do(http.MethodGet, "/v1/reservations", "", "")
	summary := decode[struct {
		Summary reservation.Summary `json:"summary"`
	}](t, rec).Summary
	assert.Equal(t, reservation.Summary{Total: 2, Confirmed: 1, Cancelled: 1}, summary)

	rec = a.do(http.MethodDelete, "/v1/reservations/res-001", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	ev := a.events.next(t)
	assert.Equal(t, queue.ReservationDeleted, ev.Type)
	assert.Equal(t, "res-001", ev.ReservationID)

	for _, tt := range []struct{ method, target string }{
		{http.MethodGet, "/v1/reservations/res-001"},
		{http.MethodDelete, "/v1/reservations/res-001"},
		{http.MethodPost, "/v1/reservations/res-001/cancel"},
	} {
		rec = a.do(tt.method, tt.target, "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tt.method+" "+tt.target)
		assert.JSONEq(t, `{"error":"reservation not found"}`, rec.Body.String())
	}

	// the deleted event describes the row that was removed
	rec = a.do(http.MethodDelete, "/v1/reservations/res-002", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	ev = a.events.next(t)
	assert.Equal(t, queue.ReservationDeleted, ev.Type)
	assert.Equal(t, "res-002", ev.ReservationID)
	assert.Equal(t, 660, ev.TotalPrice)
	assert.NotEmpty(t, ev.Seats)
}
