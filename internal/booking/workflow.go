// Package booking implements the per-customer booking flow for a single
// movie: pick a showtime, pick seats, then submit contact details.
//
// A Workflow is owned by one session and is not safe for concurrent use.
// Its State can be serialised (see internal/session) and later restored,
// which is how the HTTP layer carries a booking across requests.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/FaizaanMd/cinema-booking/internal/model"
	"github.com/FaizaanMd/cinema-booking/internal/reservation"
	"github.com/FaizaanMd/cinema-booking/internal/seatmap"
)

// Step is the current stage of a booking.
type Step string

const (
	ChoosingShowtime Step = "showtime"
	ChoosingSeats    Step = "seats"
	Confirming       Step = "booking"
)

func (s Step) valid() bool {
	switch s {
	case ChoosingShowtime, ChoosingSeats, Confirming:
		return true
	}
	return false
}

// Creator persists a finished booking.  *reservation.Store satisfies it.
type Creator interface {
	Create(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error)
}

// State is the serialisable snapshot of a Workflow.
type State struct {
	MovieID       string   `json:"movieId"`
	Step          Step     `json:"step"`
	Showtime      string   `json:"showtime,omitempty"`
	Seats         []string `json:"seats"`
	ReservationID string   `json:"reservationId,omitempty"`
}

// Closed reports whether the booking was already submitted.
func (s State) Closed() bool { return s.ReservationID != "" }

// Workflow is the booking state machine.
//
// Transitions:
//
//	showtime --SelectShowtime--> seats --Proceed--> booking --Submit--> closed
//	seats --SelectShowtime--> seats (selection kept)
type Workflow struct {
	movie    model.Movie
	reserved seatmap.Set
	step     Step
	showtime string
	seats    []string
	closedAs string
}

// New starts a booking for movie at the showtime step.
func New(movie model.Movie) *Workflow {
	return &Workflow{
		movie:    movie,
		reserved: seatmap.NewSet(movie.SeatingLayout.ReservedSeats...),
		step:     ChoosingShowtime,
		seats:    []string{},
	}
}

// Restore rebuilds a Workflow from a snapshot taken by State.  The snapshot
// is checked against movie so a tampered or stale state cannot smuggle in
// an unknown showtime or a reserved seat.
func Restore(movie model.Movie, st State) (*Workflow, error) {
	if st.MovieID != movie.ID {
		return nil, fmt.Errorf("%w: movie %q does not match %q", ErrInvalidState, st.MovieID, movie.ID)
	}
	if !st.Step.valid() {
		return nil, fmt.Errorf("%w: unknown step %q", ErrInvalidState, st.Step)
	}
	w := New(movie)
	if st.Step == ChoosingShowtime {
		if st.Showtime != "" || len(st.Seats) > 0 {
			return nil, fmt.Errorf("%w: selection before showtime", ErrInvalidState)
		}
		return w, nil
	}
	if !movie.HasShowtime(st.Showtime) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, ErrInvalidShowtime)
	}
	if err := w.checkSeats(st.Seats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if st.Step == Confirming && len(st.Seats) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, ErrEmptySelection)
	}
	w.step = st.Step
	w.showtime = st.Showtime
	w.seats = append([]string{}, st.Seats...)
	w.closedAs = st.ReservationID
	return w, nil
}

// State returns a snapshot of w.
func (w *Workflow) State() State {
	return State{
		MovieID:       w.movie.ID,
		Step:          w.step,
		Showtime:      w.showtime,
		Seats:         append([]string{}, w.seats...),
		ReservationID: w.closedAs,
	}
}

// Movie is the movie being booked.
func (w *Workflow) Movie() model.Movie { return w.movie }

// Step is the current step.
func (w *Workflow) Step() Step { return w.step }

// Showtime is the chosen showtime, empty until one is selected.
func (w *Workflow) Showtime() string { return w.showtime }

// SelectedSeats returns a copy of the selected seat ids.
func (w *Workflow) SelectedSeats() []string { return append([]string{}, w.seats...) }

// TotalPrice is the movie price times the number of selected seats.
func (w *Workflow) TotalPrice() int {
	return w.movie.Price * len(w.seats)
}

// SelectShowtime records the showtime and moves to seat selection.  It may
// be called again while choosing seats; the seat selection is kept.
func (w *Workflow) SelectShowtime(t string) error {
	if err := w.open(); err != nil {
		return err
	}
	if w.step == Confirming {
		return fmt.Errorf("%w: showtime is fixed once confirming", ErrWrongStep)
	}
	if !w.movie.HasShowtime(t) {
		return fmt.Errorf("%w: %q", ErrInvalidShowtime, t)
	}
	w.showtime = t
	w.step = ChoosingSeats
	return nil
}

// UpdateSeats replaces the selection with sel.
func (w *Workflow) UpdateSeats(sel []string) error {
	if err := w.expect(ChoosingSeats); err != nil {
		return err
	}
	if err := w.checkSeats(sel); err != nil {
		return err
	}
	w.seats = append([]string{}, sel...)
	return nil
}

// ToggleSeat adds or removes one seat.  Reserved seats are ignored.
func (w *Workflow) ToggleSeat(id string) error {
	if err := w.expect(ChoosingSeats); err != nil {
		return err
	}
	if !seatmap.InLayout(id, w.movie.SeatingLayout) {
		return fmt.Errorf("%w: %s is not in the hall", ErrInvalidSeat, id)
	}
	w.seats = seatmap.Toggle(id, w.seats, w.reserved)
	return nil
}

// Proceed moves to the confirm step.  At least one seat must be selected.
func (w *Workflow) Proceed() error {
	if err := w.expect(ChoosingSeats); err != nil {
		return err
	}
	if len(w.seats) == 0 {
		return ErrEmptySelection
	}
	w.step = Confirming
	return nil
}

// Submit validates contact and hands the booking to creator.  A store
// failure leaves the workflow at the confirm step so the customer can
// retry.  After a successful submit the workflow is closed.
func (w *Workflow) Submit(ctx context.Context, contact Contact, creator Creator) (model.Reservation, error) {
	if err := w.expect(Confirming); err != nil {
		return model.Reservation{}, err
	}
	if err := contact.Validate(); err != nil {
		return model.Reservation{}, err
	}
	res, err := creator.Create(ctx, model.CreateReservationRequest{
		MovieID:       w.movie.ID,
		MovieTitle:    w.movie.Title,
		MoviePoster:   w.movie.Poster,
		Showtime:      w.showtime,
		Seats:         append([]string{}, w.seats...),
		CustomerName:  contact.Name,
		CustomerEmail: contact.Email,
		CustomerPhone: contact.Phone,
		TotalPrice:    w.TotalPrice(),
	})
	if err != nil {
		if errors.Is(err, reservation.ErrStoreFailure) {
			return model.Reservation{}, err
		}
		return model.Reservation{}, fmt.Errorf("%w: %w", reservation.ErrStoreFailure, err)
	}
	w.closedAs = res.ID
	return res, nil
}

func (w *Workflow) open() error {
	if w.closedAs != "" {
		return fmt.Errorf("%w: reservation %s", ErrWorkflowClosed, w.closedAs)
	}
	return nil
}

func (w *Workflow) expect(step Step) error {
	if err := w.open(); err != nil {
		return err
	}
	if w.step != step {
		return fmt.Errorf("%w: at %q, need %q", ErrWrongStep, w.step, step)
	}
	return nil
}

func (w *Workflow) checkSeats(sel []string) error {
	seen := make(map[string]struct{}, len(sel))
	for _, id := range sel {
		if !seatmap.InLayout(id, w.movie.SeatingLayout) {
			return fmt.Errorf("%w: %s is not in the hall", ErrInvalidSeat, id)
		}
		if w.reserved.Has(id) {
			return fmt.Errorf("%w: %s is reserved", ErrInvalidSeat, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidSeat, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
