package ai

import (
	"context"
	"errors"
	"testing"
)

type stubExtractor struct {
	slots *BookingSlots
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, req Request) (*BookingSlots, error) {
	s.calls++
	return s.slots, s.err
}

func TestService_UsesPrimaryWhenItSucceeds(t *testing.T) {
	primary := &stubExtractor{slots: &BookingSlots{
		DropoffLocation: strPtr("airport"),
		Intent:          IntentNewBooking,
		Confidence:      ConfidenceHigh,
	}}
	svc := NewService(primary, NewRuleExtractor())

	slots, err := svc.Extract(context.Background(), Request{Transcript: "gibberish the rules cannot parse"})
	if err != nil {
		t.Fatal(err)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1", primary.calls)
	}
	wantStr(t, "dropoff_location", slots.DropoffLocation, "airport")
}

func TestService_DegradesToRulesWhenPrimaryFails(t *testing.T) {
	primary := &stubExtractor{err: errors.New("quota exceeded")}
	svc := NewService(primary, NewRuleExtractor())

	slots, err := svc.Extract(context.Background(), Request{
		Transcript:    "from 52A David Road to the airport",
		Mode:          ModeNew,
		ReferenceTime: refTime,
	})
	if err != nil {
		t.Fatalf("degraded extraction should not error: %v", err)
	}
	wantStr(t, "pickup_location", slots.PickupLocation, "52A David Road")
	wantStr(t, "dropoff_location", slots.DropoffLocation, "airport")
}

func TestService_NilPrimaryGoesStraightToRules(t *testing.T) {
	svc := NewService(nil, NewRuleExtractor())

	slots, err := svc.Extract(context.Background(), Request{
		Transcript:    "take me to the train station",
		Mode:          ModeNew,
		ReferenceTime: refTime,
	})
	if err != nil {
		t.Fatal(err)
	}
	wantStr(t, "dropoff_location", slots.DropoffLocation, "train station")
}
