package reservation

import "errors"

// ErrNotFound is returned when no reservation has the requested id.
var ErrNotFound = errors.New("reservation not found")

// ErrInvalidRequest is returned by Create for malformed requests (no
// seats, duplicate seats or a negative total).
var ErrInvalidRequest = errors.New("invalid reservation request")

// ErrStoreFailure wraps every error coming from the storage backend.
// Callers treat it as retryable and show a generic message.
var ErrStoreFailure = errors.New("reservation store failure")

// ErrDuplicateID is returned by a Storage when an id is already taken.
var ErrDuplicateID = errors.New("duplicate reservation id")
