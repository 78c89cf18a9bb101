package model

// SeatStatus is the derived display state of a seat.  It is never stored:
// Reserved wins over Selected, Selected wins over Available.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatSelected  SeatStatus = "selected"
	SeatReserved  SeatStatus = "reserved"
)

// Seat is one cell of a rendered seat grid.
//
// Fields:
//  ID     – seat identifier such as "C5".
//  Number – 1-based column number shown on the seat.
//  Status – derived status for the current selection.
type Seat struct {
	ID     string     `json:"id"`
	Number int        `json:"number"`
	Status SeatStatus `json:"status"`
}

// SeatRow groups the seats of one grid row under its letter label.
type SeatRow struct {
	Label string `json:"label"`
	Seats []Seat `json:"seats"`
}
