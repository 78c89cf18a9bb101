package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FaizaanMd/cinema-booking/internal/catalog"
	"github.com/FaizaanMd/cinema-booking/internal/model"
	"github.com/FaizaanMd/cinema-booking/internal/reservation"
)

func smallMovie() model.Movie {
	return model.Movie{
		ID:        "m1",
		Title:     "Test Movie",
		Poster:    "poster.jpg",
		Showtimes: []string{"10:00 AM", "6:00 PM"},
		Price:     250,
		SeatingLayout: model.SeatingLayout{
			Rows:          3,
			SeatsPerRow:   4,
			ReservedSeats: []string{"A1"},
		},
	}
}

var goodContact = Contact{Name: "Jo", Email: "jo@example.com", Phone: "9876543210"}

type creatorMock struct {
	mock.Mock
}

func (m *creatorMock) Create(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Reservation), args.Error(1)
}

func toSeats(t *testing.T, w *Workflow, showtime string) {
	t.Helper()
	require.NoError(t, w.SelectShowtime(showtime))
}

func TestNew_StartsAtShowtime(t *testing.T) {
	w := New(smallMovie())
	assert.Equal(t, ChoosingShowtime, w.Step())
	assert.Empty(t, w.SelectedSeats())
	assert.Equal(t, 0, w.TotalPrice())
}

func TestSelectShowtime(t *testing.T) {
	w := New(smallMovie())

	err := w.SelectShowtime("11:00 PM")
	assert.ErrorIs(t, err, ErrInvalidShowtime)
	assert.Equal(t, ChoosingShowtime, w.Step())

	require.NoError(t, w.SelectShowtime("6:00 PM"))
	assert.Equal(t, ChoosingSeats, w.Step())
	assert.Equal(t, "6:00 PM", w.Showtime())

	require.NoError(t, w.ToggleSeat("B2"))
	require.NoError(t, w.SelectShowtime("10:00 AM"))
	assert.Equal(t, "10:00 AM", w.Showtime())
	assert.Equal(t, []string{"B2"}, w.SelectedSeats())

	require.NoError(t, w.Proceed())
	assert.ErrorIs(t, w.SelectShowtime("6:00 PM"), ErrWrongStep)
}

func TestToggleSeat_ReservedSeatRejected(t *testing.T) {
	w := New(smallMovie())
	toSeats(t, w, "10:00 AM")

	require.NoError(t, w.ToggleSeat("A1"))
	require.NoError(t, w.ToggleSeat("A2"))

	assert.Equal(t, []string{"A2"}, w.SelectedSeats())
	assert.Equal(t, 250, w.TotalPrice())
}

func TestToggleSeat_OutsideHall(t *testing.T) {
	w := New(smallMovie())
	toSeats(t, w, "10:00 AM")
	assert.ErrorIs(t, w.ToggleSeat("D1"), ErrInvalidSeat)
	assert.ErrorIs(t, w.ToggleSeat("A5"), ErrInvalidSeat)
	assert.Empty(t, w.SelectedSeats())
}

func TestToggleSeat_WrongStep(t *testing.T) {
	w := New(smallMovie())
	assert.ErrorIs(t, w.ToggleSeat("A2"), ErrWrongStep)
	assert.ErrorIs(t, w.UpdateSeats([]string{"A2"}), ErrWrongStep)
	assert.ErrorIs(t, w.Proceed(), ErrWrongStep)
}

func TestUpdateSeats(t *testing.T) {
	w := New(smallMovie())
	toSeats(t, w, "10:00 AM")

	tests := []struct {
		name string
		sel  []string
		err  error
	}{
		{"valid", []string{"C4", "A2"}, nil},
		{"empty", []string{}, nil},
		{"reserved", []string{"A1"}, ErrInvalidSeat},
		{"duplicate", []string{"B1", "B1"}, ErrInvalidSeat},
		{"outside", []string{"Z1"}, ErrInvalidSeat},
		{"garbage", []string{"seat"}, ErrInvalidSeat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := w.SelectedSeats()
			err := w.UpdateSeats(tt.sel)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, before, w.SelectedSeats())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sel, w.SelectedSeats())
			assert.Equal(t, 250*len(tt.sel), w.TotalPrice())
		})
	}
}

func TestProceed_EmptySelection(t *testing.T) {
	w := New(smallMovie())
	toSeats(t, w, "10:00 AM")

	assert.ErrorIs(t, w.Proceed(), ErrEmptySelection)
	assert.Equal(t, ChoosingSeats, w.Step())

	require.NoError(t, w.ToggleSeat("B3"))
	require.NoError(t, w.Proceed())
	assert.Equal(t, Confirming, w.Step())
	assert.ErrorIs(t, w.ToggleSeat("B4"), ErrWrongStep)
}

func TestSubmit_CreatesReservation(t *testing.T) {
	ctx := context.Background()
	movie, err := catalog.Default().GetMovieByID("2")
	require.NoError(t, err)
	store := reservation.NewStore(reservation.NewMemoryStorage())

	w := New(movie)
	require.NoError(t, w.SelectShowtime("7:00 PM"))
	require.NoError(t, w.UpdateSeats([]string{"C3", "C4", "C5"}))
	require.NoError(t, w.Proceed())

	res, err := w.Submit(ctx, goodContact, store)
	require.NoError(t, err)
	assert.Equal(t, 660, res.TotalPrice)
	assert.Equal(t, "Top Gun: Maverick", res.MovieTitle)
	assert.Equal(t, []string{"C3", "C4", "C5"}, res.Seats)
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.Equal(t, res.ID, w.State().ReservationID)

	stored, err := store.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res, stored)

	_, err = w.Submit(ctx, goodContact, store)
	assert.ErrorIs(t, err, ErrWorkflowClosed)
	assert.ErrorIs(t, w.SelectShowtime("7:00 PM"), ErrWorkflowClosed)
}

func TestSubmit_ValidationError(t *testing.T) {
	w := New(smallMovie())
	toSeats(t, w, "10:00 AM")
	require.NoError(t, w.ToggleSeat("B1"))
	require.NoError(t, w.Proceed())

	creator := new(creatorMock)
	_, err := w.Submit(context.Background(), Contact{Name: "J", Email: "nope", Phone: "12ab"}, creator)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []FieldError{
		{Field: "name", Message: "Name must be at least 2 characters"},
		{Field: "email", Message: "Please enter a valid email address"},
		{Field: "phone", Message: "Phone number must contain only digits"},
	}, verr.Fields)
	assert.Equal(t, Confirming, w.Step())
	creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_StoreFailureKeepsConfirming(t *testing.T) {
	ctx := context.Background()
	w := New(smallMovie())
	toSeats(t, w, "6:00 PM")
	require.NoError(t, w.UpdateSeats([]string{"B1", "B2"}))
	require.NoError(t, w.Proceed())

	want := model.CreateReservationRequest{
		MovieID:       "m1",
		MovieTitle:    "Test Movie",
		MoviePoster:   "poster.jpg",
		Showtime:      "6:00 PM",
		Seats:         []string{"B1", "B2"},
		CustomerName:  goodContact.Name,
		CustomerEmail: goodContact.Email,
		CustomerPhone: goodContact.Phone,
		TotalPrice:    500,
	}
	creator := new(creatorMock)
	creator.On("Create", ctx, want).Return(model.Reservation{}, errors.New("disk full")).Once()
	creator.On("Create", ctx, want).Return(model.Reservation{ID: "res-9"}, nil).Once()

	_, err := w.Submit(ctx, goodContact, creator)
	assert.ErrorIs(t, err, reservation.ErrStoreFailure)
	assert.Equal(t, Confirming, w.Step())
	assert.False(t, w.State().Closed())

	res, err := w.Submit(ctx, goodContact, creator)
	require.NoError(t, err)
	assert.Equal(t, "res-9", res.ID)
	assert.True(t, w.State().Closed())
	creator.AssertExpectations(t)
}

func TestContactValidate(t *testing.T) {
	tests := []struct {
		name   string
		c      Contact
		fields []string
	}{
		{"ok", goodContact, nil},
		{"short phone", Contact{Name: "Jo", Email: "jo@example.com", Phone: "12345"}, []string{"phone"}},
		{"signed phone", Contact{Name: "Jo", Email: "jo@example.com", Phone: "+919876543210"}, []string{"phone"}},
		{"empty", Contact{}, []string{"name", "email", "phone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestStateRestoreRoundTrip(t *testing.T) {
	movie := smallMovie()
	w := New(movie)
	toSeats(t, w, "6:00 PM")
	require.NoError(t, w.UpdateSeats([]string{"C1", "B2"}))

	st := w.State()
	r, err := Restore(movie, st)
	require.NoError(t, err)
	assert.Equal(t, st, r.State())
	assert.Equal(t, 500, r.TotalPrice())
}

func TestRestore_RejectsBadState(t *testing.T) {
	movie := smallMovie()
	tests := map[string]State{
		"other movie":        {MovieID: "m2", Step: ChoosingShowtime},
		"unknown step":       {MovieID: "m1", Step: "paying"},
		"seats too early":    {MovieID: "m1", Step: ChoosingShowtime, Seats: []string{"B1"}},
		"unknown showtime":   {MovieID: "m1", Step: ChoosingSeats, Showtime: "3:00 AM"},
		"reserved seat":      {MovieID: "m1", Step: ChoosingSeats, Showtime: "6:00 PM", Seats: []string{"A1"}},
		"empty confirmation": {MovieID: "m1", Step: Confirming, Showtime: "6:00 PM"},
	}
	for name, st := range tests {
		_, err := Restore(movie, st)
		assert.ErrorIs(t, err, ErrInvalidState, name)
	}
}
