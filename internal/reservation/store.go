// Package reservation holds confirmed and cancelled reservations.  The
// Store owns id assignment, booking dates and ordering; the Storage it
// wraps only persists rows.
package reservation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/FaizaanMd/cinema-booking/internal/model"
)

// Storage persists reservation rows.  List and FindByEmail return rows in
// insertion order; Store applies the display ordering on top.
type Storage interface {
	Insert(ctx context.Context, r model.Reservation) error
	List(ctx context.Context) ([]model.Reservation, error)
	FindByEmail(ctx context.Context, email string) ([]model.Reservation, error)
	Get(ctx context.Context, id string) (model.Reservation, bool, error)
	UpdateStatus(ctx context.Context, id string, status model.ReservationStatus) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// Summary counts reservations by status.
type Summary struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

// Store is the reservation service used by the booking workflow and the
// HTTP handlers.  It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	storage Storage
	ids     IDGenerator
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUID based generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock replaces time.Now when stamping booking dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore wraps storage.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{storage: storage, ids: UUIDGenerator(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create assigns an id, stamps today's UTC date, marks the reservation
// confirmed and persists it.  The seat list must be non-empty and free of
// duplicates; no other business fields are checked here.
func (s *Store) Create(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	if err := checkRequest(req); err != nil {
		return model.Reservation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := model.Reservation{
		ID:            s.ids.NewID(),
		MovieID:       req.MovieID,
		MovieTitle:    req.MovieTitle,
		MoviePoster:   req.MoviePoster,
		Showtime:      req.Showtime,
		Seats:         append([]string(nil), req.Seats...),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		TotalPrice:    req.TotalPrice,
		BookingDate:   s.now().UTC().Format(model.DateLayout),
		Status:        model.StatusConfirmed,
	}
	if err := s.storage.Insert(ctx, r); err != nil {
		return model.Reservation{}, fmt.Errorf("%w: insert: %w", ErrStoreFailure, err)
	}
	return r, nil
}

// Seed inserts rs exactly as given, keeping their ids, dates and status.
// It is used for demo data at startup.
func (s *Store) Seed(ctx context.Context, rs ...model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rs {
		if err := s.storage.Insert(ctx, r); err != nil {
			return fmt.Errorf("%w: seed %s: %w", ErrStoreFailure, r.ID, err)
		}
	}
	return nil
}

// ListAll returns every reservation, newest booking date first.  Rows
// sharing a date keep insertion order.
func (s *Store) ListAll(ctx context.Context) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStoreFailure, err)
	}
	sortByDateDesc(rs)
	return rs, nil
}

// ListByEmail returns the reservations whose customer email matches email
// after trimming and ignoring case, ordered like ListAll.  A blank email
// yields an empty list.
func (s *Store) ListByEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return []model.Reservation{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, err := s.storage.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: find by email: %w", ErrStoreFailure, err)
	}
	sortByDateDesc(rs)
	return rs, nil
}

// Get returns the reservation with id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok, err := s.storage.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("%w: get: %w", ErrStoreFailure, err)
	}
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// Cancel marks the reservation cancelled.  It reports false when no such
// reservation exists.  Cancelling twice is harmless.
func (s *Store) Cancel(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.storage.UpdateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		return false, fmt.Errorf("%w: cancel: %w", ErrStoreFailure, err)
	}
	return ok, nil
}

// Delete removes the reservation.  It reports false when no such
// reservation exists.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.storage.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: delete: %w", ErrStoreFailure, err)
	}
	return ok, nil
}

// Take removes the reservation and returns it as it was at removal, or
// ErrNotFound.  Lookup and removal run under one lock, so a concurrent
// Cancel lands either before (and shows in the result) or after (and
// finds nothing).
func (s *Store) Take(ctx context.Context, id string) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok, err := s.storage.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("%w: get: %w", ErrStoreFailure, err)
	}
	if ok {
		ok, err = s.storage.Remove(ctx, id)
		if err != nil {
			return model.Reservation{}, fmt.Errorf("%w: delete: %w", ErrStoreFailure, err)
		}
	}
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// Summarize counts rs by status.
func Summarize(rs []model.Reservation) Summary {
	sum := Summary{Total: len(rs)}
	for _, r := range rs {
		switch r.Status {
		case model.StatusConfirmed:
			sum.Confirmed++
		case model.StatusCancelled:
			sum.Cancelled++
		}
	}
	return sum
}

func checkRequest(req model.CreateReservationRequest) error {
	if len(req.Seats) == 0 {
		return fmt.Errorf("%w: no seats", ErrInvalidRequest)
	}
	seen := make(map[string]struct{}, len(req.Seats))
	for _, id := range req.Seats {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: seat %s listed twice", ErrInvalidRequest, id)
		}
		seen[id] = struct{}{}
	}
	if req.TotalPrice < 0 {
		return fmt.Errorf("%w: negative total", ErrInvalidRequest)
	}
	return nil
}

// BookingDate is YYYY-MM-DD so string order is date order.
func sortByDateDesc(rs []model.Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].BookingDate > rs[j].BookingDate
	})
}
