package model

// DateLayout is the calendar-date format used for Reservation.BookingDate.
// Dates in this format sort lexically in chronological order.
const DateLayout = "2006-01-02"

// ReservationStatus is the lifecycle state of a reservation.  The only
// transition is confirmed → cancelled.
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation records a completed booking.  Movie title and poster are
// denormalized at creation time so the record stays readable even if the
// catalog changes.
//
// Fields:
//  ID            – unique, immutable identifier assigned by the store.
//  Seats         – seat identifiers in selection order; never edited.
//  TotalPrice    – movie price × len(Seats) at creation; never recomputed.
//  BookingDate   – creation date (YYYY-MM-DD, UTC), no time of day.
//  Status        – confirmed or cancelled.
type Reservation struct {
	ID            string            `json:"id"`
	MovieID       string            `json:"movieId"`
	MovieTitle    string            `json:"movieTitle"`
	MoviePoster   string            `json:"moviePoster"`
	Showtime      string            `json:"showtime"`
	Seats         []string          `json:"seats"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerPhone string            `json:"customerPhone"`
	TotalPrice    int               `json:"totalPrice"`
	BookingDate   string            `json:"bookingDate"`
	Status        ReservationStatus `json:"status"`
}

// CreateReservationRequest carries every Reservation field except the ones
// the store assigns (ID, BookingDate, Status).
type CreateReservationRequest struct {
	MovieID       string   `json:"movieId"`
	MovieTitle    string   `json:"movieTitle"`
	MoviePoster   string   `json:"moviePoster"`
	Showtime      string   `json:"showtime"`
	Seats         []string `json:"seats"`
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail"`
	CustomerPhone string   `json:"customerPhone"`
	TotalPrice    int      `json:"totalPrice"`
}

// Clone returns a copy of r that shares no slices with it.
func (r Reservation) Clone() Reservation {
	out := r
	out.Seats = append([]string(nil), r.Seats...)
	return out
}
