package booking

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/ai"
	"dispatch/internal/trip"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func newBooking(t *testing.T, svc *Service) *Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), "+442476112233", &ai.BookingSlots{
		PickupLocation:  strPtr("52A David Road"),
		DropoffLocation: strPtr("Coventry station"),
		PickupTime:      strPtr("2026-03-10 17:00"),
		Passengers:      intPtr(2),
		Luggage:         strPtr("two suitcases"),
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return b
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(NewMemoryStore())
	b := newBooking(t, svc)

	if b.ID == "" {
		t.Fatal("booking has no ID")
	}
	if b.Status != StatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}

	got, err := svc.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *got.Slots.PickupLocation != "52A David Road" {
		t.Errorf("pickup = %q", *got.Slots.PickupLocation)
	}
}

func TestApplyUpdate_ForwardMerge(t *testing.T) {
	svc := NewService(NewMemoryStore())
	b := newBooking(t, svc)

	upd, err := svc.ApplyUpdate(context.Background(), b.ID, &ai.BookingSlots{
		DropoffLocation: strPtr("Birmingham airport"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if *upd.Slots.DropoffLocation != "Birmingham airport" {
		t.Errorf("dropoff = %q, want the updated value", *upd.Slots.DropoffLocation)
	}
	// Untouched fields survive the merge.
	if upd.Slots.PickupLocation == nil || *upd.Slots.PickupLocation != "52A David Road" {
		t.Error("pickup was lost by an unrelated update")
	}
	if upd.Slots.Passengers == nil || *upd.Slots.Passengers != 2 {
		t.Error("passengers were lost by an unrelated update")
	}
	if upd.Version != b.Version+1 {
		t.Errorf("version = %d, want %d", upd.Version, b.Version+1)
	}
}

func TestApplyUpdate_LuggageClearSentinel(t *testing.T) {
	svc := NewService(NewMemoryStore())
	b := newBooking(t, svc)

	upd, err := svc.ApplyUpdate(context.Background(), b.ID, &ai.BookingSlots{
		Luggage: strPtr(ai.LuggageCleared),
	})
	if err != nil {
		t.Fatal(err)
	}
	if upd.Slots.Luggage != nil {
		t.Errorf("luggage = %q, want cleared", *upd.Slots.Luggage)
	}

	// A nil luggage field in a later update leaves it cleared, not
	// resurrected.
	upd, err = svc.ApplyUpdate(context.Background(), b.ID, &ai.BookingSlots{
		Passengers: intPtr(3),
	})
	if err != nil {
		t.Fatal(err)
	}
	if upd.Slots.Luggage != nil {
		t.Error("luggage came back after an unrelated update")
	}
}

func TestCreate_ClearSentinelStoredAsNoLuggage(t *testing.T) {
	svc := NewService(NewMemoryStore())
	b, err := svc.Create(context.Background(), "+442476112233", &ai.BookingSlots{
		PickupLocation: strPtr("52A David Road"),
		Luggage:        strPtr(ai.LuggageCleared),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.Slots.Luggage != nil {
		t.Errorf("luggage = %q, want nil on a fresh booking", *b.Slots.Luggage)
	}
}

func TestCreate_KeepsTripSnapshot(t *testing.T) {
	svc := NewService(NewMemoryStore())
	res := &trip.Resolution{
		InferredArea: trip.InferredArea{City: "Coventry", Confidence: trip.ConfidenceHigh},
		Distance:     &trip.Distance{Miles: 2.4, DurationText: "9 mins"},
	}
	b, err := svc.Create(context.Background(), "+442476112233", &ai.BookingSlots{
		PickupLocation: strPtr("52A David Road"),
	}, res)
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Trip == nil || got.Trip.InferredArea.City != "Coventry" {
		t.Fatalf("trip snapshot not stored: %+v", got.Trip)
	}

	// Slot updates leave the snapshot as taken at booking time.
	upd, err := svc.ApplyUpdate(context.Background(), b.ID, &ai.BookingSlots{
		DropoffLocation: strPtr("Birmingham airport"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if upd.Trip == nil || upd.Trip.Distance == nil || upd.Trip.Distance.Miles != 2.4 {
		t.Error("trip snapshot changed by a slot update")
	}
}

func TestLifecycleTransitions(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()
	b := newBooking(t, svc)

	if _, err := svc.Complete(ctx, b.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("complete from pending = %v, want ErrInvalidState", err)
	}

	if _, err := svc.Confirm(ctx, b.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Complete(ctx, b.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Terminal states accept no further changes.
	if _, err := svc.Cancel(ctx, b.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("cancel after completion = %v, want ErrInvalidState", err)
	}
	if _, err := svc.ApplyUpdate(ctx, b.ID, &ai.BookingSlots{Passengers: intPtr(4)}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("update after completion = %v, want ErrInvalidState", err)
	}
}

func TestCancel(t *testing.T) {
	svc := NewService(NewMemoryStore())
	b := newBooking(t, svc)

	got, err := svc.Cancel(context.Background(), b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestActiveByPhone(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()
	b := newBooking(t, svc)

	got, err := svc.ActiveByPhone(ctx, "+442476112233")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != b.ID {
		t.Errorf("active booking = %s, want %s", got.ID, b.ID)
	}

	if _, err := svc.Cancel(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ActiveByPhone(ctx, "+442476112233"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cancelled booking still reported active: %v", err)
	}
}

func TestStoreUpdate_StaleVersionRejected(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()
	b := newBooking(t, svc)

	// Writing against a version that has already moved on must not win.
	stale := *b
	stale.Version++
	if ok, err := store.Update(ctx, &stale, b.Version); err != nil || !ok {
		t.Fatalf("first update: ok=%v err=%v", ok, err)
	}
	if ok, err := store.Update(ctx, &stale, b.Version); err != nil {
		t.Fatal(err)
	} else if ok {
		t.Error("stale update was accepted")
	}
}

func TestMissingBooking(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get = %v, want ErrNotFound", err)
	}
}
