package ai

import "context"

// Extractor converts a transcript into booking slots. Implementations must
// uphold the non-hallucination rules: verbatim-or-null fields, both sides
// populated when both appear in one utterance, null (never "ASAP") when no
// time phrase is present, and null for untouched fields in update mode.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*BookingSlots, error)
}
