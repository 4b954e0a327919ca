package booking

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("booking not found")
	ErrConflict = errors.New("booking version conflict")
)

// Store persists bookings. Update is optimistic: it matches on the version
// the caller read and reports false when another writer got there first.
type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, b *Booking, expectedVersion int) (bool, error)
	ActiveByPhone(ctx context.Context, phone string) (*Booking, error)
}

// MemoryStore keeps bookings in process memory. Used in tests and when no
// database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]Booking)}
}

func (s *MemoryStore) Create(ctx context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = *b
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, b *Booking, expectedVersion int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[b.ID]
	if !ok {
		return false, ErrNotFound
	}
	if cur.Version != expectedVersion {
		return false, nil
	}
	s.bookings[b.ID] = *b
	return true, nil
}

func (s *MemoryStore) ActiveByPhone(ctx context.Context, phone string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Booking
	for id := range s.bookings {
		b := s.bookings[id]
		if b.Phone != phone || !b.Active() {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			cp := b
			latest = &cp
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}
