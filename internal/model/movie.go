package model

// Movie is a catalog entry.  Movies are read-only: the booking flow reads
// the price, showtimes and seating layout but never mutates them.
//
// Fields:
//  ID            – catalog key.
//  Title         – display title, copied onto reservations.
//  Poster        – poster URL, copied onto reservations.
//  Showtimes     – ordered, opaque time labels (e.g. "2:00 PM").
//  Price         – per-seat price in whole currency units.
//  SeatingLayout – grid dimensions and the seats sold outside this system.
type Movie struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Synopsis      string        `json:"synopsis"`
	Poster        string        `json:"poster"`
	Duration      string        `json:"duration"`
	Genre         []string      `json:"genre"`
	Rating        string        `json:"rating"`
	Showtimes     []string      `json:"showtimes"`
	Price         int           `json:"price"`
	SeatingLayout SeatingLayout `json:"seatingLayout"`
}

// SeatingLayout describes the theatre grid for a movie.  Rows and
// SeatsPerRow are always positive; ReservedSeats holds seat identifiers
// such as "B5".
type SeatingLayout struct {
	Rows          int      `json:"rows"`
	SeatsPerRow   int      `json:"seatsPerRow"`
	ReservedSeats []string `json:"reservedSeats"`
}

// HasShowtime reports whether t is one of the movie's showtime labels.
func (m Movie) HasShowtime(t string) bool {
	for _, s := range m.Showtimes {
		if s == t {
			return true
		}
	}
	return false
}

// ReservedSet returns the layout's reserved seats as a lookup set.
func (l SeatingLayout) ReservedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(l.ReservedSeats))
	for _, id := range l.ReservedSeats {
		set[id] = struct{}{}
	}
	return set
}
