package reservation

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces reservation ids.  Implementations must never return
// the same id twice; the store does not detect collisions.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// NewID calls f.
func (f IDGeneratorFunc) NewID() string { return f() }

// UUIDGenerator returns ids of the form "res-<uuid v4>".
func UUIDGenerator() IDGenerator {
	return IDGeneratorFunc(func() string { return "res-" + uuid.NewString() })
}

// Sequence is a monotonic counter generator.  The first id is
// prefix+"001" when started at zero.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      uint64
}

// NewSequence returns a Sequence that continues after start.
func NewSequence(prefix string, start uint64) *Sequence {
	return &Sequence{prefix: prefix, n: start}
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%03d", s.prefix, s.n)
}
