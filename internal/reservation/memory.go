package reservation

import (
	"context"
	"strings"
	"sync"

	"github.com/FaizaanMd/cinema-booking/internal/model"
)

// MemoryStorage keeps reservations in a slice in insertion order.  It is
// the default backend and the one used in tests; its contents are lost
// when the process exits.
type MemoryStorage struct {
	mu    sync.RWMutex
	items []model.Reservation
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (m *MemoryStorage) Insert(_ context.Context, r model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(r.ID) >= 0 {
		return ErrDuplicateID
	}
	m.items = append(m.items, r.Clone())
	return nil
}

func (m *MemoryStorage) List(_ context.Context) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Reservation, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *MemoryStorage) FindByEmail(_ context.Context, email string) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Reservation, 0)
	for _, r := range m.items {
		if strings.EqualFold(r.CustomerEmail, email) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStorage) Get(_ context.Context, id string) (model.Reservation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(id)
	if i < 0 {
		return model.Reservation{}, false, nil
	}
	return m.items[i].Clone(), true, nil
}

func (m *MemoryStorage) UpdateStatus(_ context.Context, id string, status model.ReservationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return false, nil
	}
	m.items[i].Status = status
	return true, nil
}

func (m *MemoryStorage) Remove(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return false, nil
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return true, nil
}

func (m *MemoryStorage) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}
