package booking

import (
	"errors"
	"strings"
)

var (
	ErrInvalidShowtime = errors.New("showtime not offered for this movie")
	ErrEmptySelection  = errors.New("please select at least one seat")
	ErrInvalidSeat     = errors.New("seat cannot be selected")
	ErrWrongStep       = errors.New("operation not allowed at this booking step")
	ErrWorkflowClosed  = errors.New("booking already submitted")
	ErrInvalidState    = errors.New("invalid booking state")
)

// FieldError describes one rejected contact field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned by Submit when the contact details are
// rejected.  Fields lists every failing field, in declaration order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "invalid contact details: " + strings.Join(msgs, "; ")
}
