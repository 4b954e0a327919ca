package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/ai"
	"dispatch/internal/trip"
)

var (
	ErrInvalidState = errors.New("invalid booking state transition")
	ErrBadRequest   = errors.New("bad booking request")
)

// Service implements the booking lifecycle over a Store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create opens a new pending booking from extracted slots. tripRes, when
// present, is stored as the resolution snapshot taken at booking time.
func (s *Service) Create(ctx context.Context, phone string, slots *ai.BookingSlots, tripRes *trip.Resolution) (*Booking, error) {
	if phone == "" || slots == nil {
		return nil, ErrBadRequest
	}
	now := time.Now()
	b := &Booking{
		ID:        uuid.NewString(),
		Phone:     phone,
		Slots:     *slots,
		Trip:      tripRes,
		Status:    StatusPending,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// The clear sentinel makes no sense on a fresh booking; store no
	// luggage at all.
	if b.Slots.Luggage != nil && *b.Slots.Luggage == ai.LuggageCleared {
		b.Slots.Luggage = nil
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// ActiveByPhone finds the caller's most recent open booking, used when a
// known number calls back to change details.
func (s *Service) ActiveByPhone(ctx context.Context, phone string) (*Booking, error) {
	return s.store.ActiveByPhone(ctx, phone)
}

// ApplyUpdate merges newly extracted slots into an open booking.
func (s *Service) ApplyUpdate(ctx context.Context, id string, upd *ai.BookingSlots) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Active() {
		return nil, ErrInvalidState
	}
	expected := b.Version
	b.ApplyUpdate(upd)
	ok, err := s.store.Update(ctx, b, expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return b, nil
}

// Confirm moves a pending booking to confirmed.
func (s *Service) Confirm(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, StatusConfirmed)
}

// Complete closes out a confirmed booking.
func (s *Service) Complete(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, StatusCompleted)
}

// Cancel withdraws an open booking.
func (s *Service) Cancel(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id string, to Status) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, to) {
		return nil, ErrInvalidState
	}
	expected := b.Version
	b.Status = to
	b.Version++
	b.UpdatedAt = time.Now()
	ok, err := s.store.Update(ctx, b, expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return b, nil
}
