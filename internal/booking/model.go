// Package booking persists the dispatcher-side booking lifecycle: slots
// captured from a call, merged updates from later calls, and a small status
// machine.
package booking

import (
	"strings"
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/trip"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Booking is the stored aggregate. Slots always hold the merged current
// state; updates never null out a field unless the caller explicitly
// cleared it.
type Booking struct {
	ID    string          `json:"id"`
	Phone string          `json:"phone"`
	Slots ai.BookingSlots `json:"slots"`
	// Trip is the resolution snapshot taken when the booking was opened,
	// kept for the dispatcher's reference. Slot updates do not refresh it.
	Trip      *trip.Resolution `json:"trip,omitempty"`
	Status    Status           `json:"status"`
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// AllowedTransitions is the booking state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Active reports whether the booking can still be changed.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// ApplyUpdate forward-merges extracted slots into the booking: non-nil
// fields overwrite, nil fields keep their prior value, and the luggage
// clear sentinel removes the stored value instead of being stored itself.
func (b *Booking) ApplyUpdate(upd *ai.BookingSlots) {
	if upd == nil {
		return
	}
	if upd.PickupLocation != nil {
		b.Slots.PickupLocation = upd.PickupLocation
	}
	if upd.DropoffLocation != nil {
		b.Slots.DropoffLocation = upd.DropoffLocation
	}
	if upd.PickupTime != nil {
		b.Slots.PickupTime = upd.PickupTime
	}
	if upd.Passengers != nil {
		b.Slots.Passengers = upd.Passengers
	}
	if upd.Luggage != nil {
		if strings.EqualFold(*upd.Luggage, ai.LuggageCleared) {
			b.Slots.Luggage = nil
		} else {
			b.Slots.Luggage = upd.Luggage
		}
	}
	if upd.SpecialRequests != nil {
		b.Slots.SpecialRequests = upd.SpecialRequests
	}
	b.Version++
	b.UpdatedAt = time.Now()
}
