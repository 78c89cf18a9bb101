// Package seatmap computes seat identifiers and seat status over a fixed
// theatre grid.  Everything here is a pure function of its inputs: no
// state is kept between calls, so the functions are safe to call in any
// order and from any goroutine.
package seatmap

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/FaizaanMd/cinema-booking/internal/model"
)

// MaxRows is the number of rows addressable with a single letter.
const MaxRows = 26

// ErrRowOutOfRange is returned when a row or column index cannot be
// expressed as a seat identifier.
var ErrRowOutOfRange = errors.New("seat position out of range")

// ErrInvalidSeatID is returned by ParseSeatID for malformed identifiers.
var ErrInvalidSeatID = errors.New("invalid seat id")

// Set is a lookup set of seat identifiers.
type Set map[string]struct{}

// NewSet builds a Set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.  A nil set is empty.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// ComputeSeatID converts a zero-based row and seat index into an
// identifier such as "A5" (row 0, col 4).  Rows beyond 'Z' are not
// supported.
func ComputeSeatID(row, col int) (string, error) {
	if row < 0 || row >= MaxRows || col < 0 {
		return "", fmt.Errorf("%w: row=%d col=%d", ErrRowOutOfRange, row, col)
	}
	return rowLabel(row) + strconv.Itoa(col+1), nil
}

// ParseSeatID is the inverse of ComputeSeatID.
func ParseSeatID(id string) (row, col int, err error) {
	if len(id) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatID, id)
	}
	row, ok := rowIndex(id[0])
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatID, id)
	}
	num := id[1:]
	// reject "A05" and "A+5" so that parsing stays a bijection
	if num[0] < '1' || num[0] > '9' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatID, id)
	}
	n, convErr := strconv.Atoi(num)
	if convErr != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatID, id)
	}
	return row, n - 1, nil
}

// InLayout reports whether id addresses a seat inside layout's grid.
func InLayout(id string, layout model.SeatingLayout) bool {
	row, col, err := ParseSeatID(id)
	if err != nil {
		return false
	}
	return row < layout.Rows && col < layout.SeatsPerRow
}

// Status derives the display status of a seat.  Reserved takes
// precedence over Selected.
func Status(id string, reserved, selected Set) model.SeatStatus {
	switch {
	case reserved.Has(id):
		return model.SeatReserved
	case selected.Has(id):
		return model.SeatSelected
	default:
		return model.SeatAvailable
	}
}

// Toggle flips id in the selection.  Reserved seats leave the selection
// untouched; otherwise id is removed when present and appended when not,
// so the result keeps click order rather than grid order.  Applying
// Toggle twice with the same id yields the original selection.
func Toggle(id string, selected []string, reserved Set) []string {
	if reserved.Has(id) {
		return selected
	}
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// Grid renders the full layout with each seat's status for the given
// selection.
func Grid(layout model.SeatingLayout, selected []string) ([]model.SeatRow, error) {
	if layout.Rows > MaxRows {
		return nil, fmt.Errorf("%w: %d rows", ErrRowOutOfRange, layout.Rows)
	}
	reserved := NewSet(layout.ReservedSeats...)
	sel := NewSet(selected...)
	rows := make([]model.SeatRow, 0, layout.Rows)
	for r := 0; r < layout.Rows; r++ {
		row := model.SeatRow{Label: rowLabel(r), Seats: make([]model.Seat, 0, layout.SeatsPerRow)}
		for c := 0; c < layout.SeatsPerRow; c++ {
			id, err := ComputeSeatID(r, c)
			if err != nil {
				return nil, err
			}
			row.Seats = append(row.Seats, model.Seat{ID: id, Number: c + 1, Status: Status(id, reserved, sel)})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowLabel converts a zero-based index below MaxRows to its letter.
func rowLabel(i int) string {
	return string(rune('A' + i))
}

// rowIndex converts an upper-case row letter back to its index.
func rowIndex(ch byte) (int, bool) {
	if ch < 'A' || ch > 'Z' {
		return -1, false
	}
	return int(ch - 'A'), true
}
