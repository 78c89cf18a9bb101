// Package queue moves reservation lifecycle events over RabbitMQ: a
// publisher used by the HTTP handlers and a background consumer that
// appends each event to logs/reservations.log.
package queue

import (
	"time"

	"github.com/FaizaanMd/cinema-booking/internal/model"
)

// EventType names a reservation lifecycle change.
type EventType string

const (
	ReservationConfirmed EventType = "reservation.confirmed"
	ReservationCancelled EventType = "reservation.cancelled"
	ReservationDeleted   EventType = "reservation.deleted"
)

// ReservationEvent is published after a reservation is created, cancelled
// or deleted.  It carries enough of the reservation for consumers to log
// or notify without reading the store.
type ReservationEvent struct {
	Type          EventType `json:"type"`
	ReservationID string    `json:"reservation_id"`
	MovieID       string    `json:"movie_id"`
	MovieTitle    string    `json:"movie_title"`
	Showtime      string    `json:"showtime"`
	Seats         []string  `json:"seats"`
	CustomerEmail string    `json:"customer_email"`
	TotalPrice    int       `json:"total_price"`
	BookingDate   string    `json:"booking_date"`
	OccurredAt    string    `json:"occurred_at"`
}

// NewReservationEvent builds an event of type t for r.
func NewReservationEvent(t EventType, r model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          t,
		ReservationID: r.ID,
		MovieID:       r.MovieID,
		MovieTitle:    r.MovieTitle,
		Showtime:      r.Showtime,
		Seats:         append([]string(nil), r.Seats...),
		CustomerEmail: r.CustomerEmail,
		TotalPrice:    r.TotalPrice,
		BookingDate:   r.BookingDate,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
