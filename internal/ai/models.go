// Package ai extracts structured booking slots from call transcripts. Two
// implementations share one contract: a Gemini-backed extractor governed
// by a strict rule prompt, and a deterministic rule-based parser used as
// the fallback when the model call fails.
package ai

import "time"

// Intent describes what the caller is doing with the booking.
type Intent string

const (
	IntentNewBooking    Intent = "new_booking"
	IntentUpdateBooking Intent = "update_booking"
)

// Confidence is the extractor's self-reported certainty. Callers should
// treat "low" as a cue to ask a clarifying question rather than book.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Sentinel slot values. These are distinct from null: null always means
// "not mentioned / unchanged".
const (
	// PickupCurrentLocation marks a GPS self-reference ("my location",
	// "here") rather than a spoken address.
	PickupCurrentLocation = "CURRENT_LOCATION"
	// LuggageCleared marks an explicit removal ("no luggage").
	LuggageCleared = "NO_LUGGAGE"
	// TimeASAP is the literal used when the caller wants a car now.
	TimeASAP = "ASAP"
)

// BookingSlots is one extraction result. Every populated string field is
// the caller's exact words (minus a single leading article) or a sentinel
// above — never normalized, spell-corrected or geocoded here. Nil means
// the field was not mentioned; in update mode that reads as "unchanged",
// and forward-merging into the existing booking is the caller's job.
type BookingSlots struct {
	PickupLocation  *string    `json:"pickup_location,omitempty"`
	DropoffLocation *string    `json:"dropoff_location,omitempty"`
	PickupTime      *string    `json:"pickup_time,omitempty"` // "2006-01-02 15:04" or "ASAP"
	Passengers      *int       `json:"number_of_passengers,omitempty"`
	Luggage         *string    `json:"luggage,omitempty"`
	SpecialRequests *string    `json:"special_requests,omitempty"`
	Intent          Intent     `json:"intent"`
	Confidence      Confidence `json:"confidence"`
}

// Mode selects between a fresh extraction and an update against an
// existing booking.
type Mode string

const (
	ModeNew    Mode = "new"
	ModeUpdate Mode = "update"
)

// Request is one extraction call.
type Request struct {
	Transcript string
	Mode       Mode
	// Existing supplies prior booking state in update mode. It is context
	// only: the extractor must never re-emit unchanged values from it.
	Existing *BookingSlots
	// ReferenceTime anchors relative time phrases ("tomorrow at 9").
	ReferenceTime time.Time
	// CityHint is the caller's likely city, when known (phone-derived).
	CityHint string
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
