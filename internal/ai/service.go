package ai

import (
	"context"
	"log"
)

// Service fronts the extractors: the model-backed primary first, the
// deterministic rule extractor when the model call fails or returns
// garbage. Extraction as a whole therefore never errors out for a
// well-formed request.
type Service struct {
	primary  Extractor
	fallback Extractor
}

// NewService wires the extractor chain. primary may be nil (no model
// configured), in which case the rule extractor serves everything.
func NewService(primary Extractor, fallback *RuleExtractor) *Service {
	return &Service{primary: primary, fallback: fallback}
}

func (s *Service) Extract(ctx context.Context, req Request) (*BookingSlots, error) {
	if s.primary != nil {
		slots, err := s.primary.Extract(ctx, req)
		if err == nil {
			return slots, nil
		}
		log.Printf("ai: primary extractor failed, degrading to rule extractor: %v", err)
	}
	return s.fallback.Extract(ctx, req)
}
