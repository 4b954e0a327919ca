package geocode

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/geo"
)

// fakeProvider is a scriptable Provider recording call counts per capability.
type fakeProvider struct {
	autocompleteCalls int
	detailsCalls      int
	textSearchCalls   int
	globalSearchCalls int // TextSearch invocations with a nil bias
	nearbyCalls       int

	predictions []Prediction
	detail      *Detail
	detailErr   error
	candidates  []Candidate
	// searchQueue, when non-empty, scripts successive TextSearch results
	// ahead of the default candidates list.
	searchQueue [][]Candidate
	searchErr   error
}

func (f *fakeProvider) Autocomplete(_ context.Context, _ string, _ geo.Point, _ uint) ([]Prediction, error) {
	f.autocompleteCalls++
	return f.predictions, nil
}

func (f *fakeProvider) Details(_ context.Context, _ string) (*Detail, error) {
	f.detailsCalls++
	return f.detail, f.detailErr
}

func (f *fakeProvider) TextSearch(_ context.Context, _ string, bias *geo.Point, _ uint) ([]Candidate, error) {
	f.textSearchCalls++
	if bias == nil {
		f.globalSearchCalls++
	}
	if len(f.searchQueue) > 0 {
		head := f.searchQueue[0]
		f.searchQueue = f.searchQueue[1:]
		return head, f.searchErr
	}
	return f.candidates, f.searchErr
}

func (f *fakeProvider) Nearby(_ context.Context, _ geo.Point, _ uint, _, _ string) ([]Candidate, error) {
	f.nearbyCalls++
	return f.candidates, nil
}

var coventryBias = geo.Point{Lat: 52.4068, Lng: -1.5197}

func newTestResolver(p Provider) *Resolver {
	return NewResolver(p, NewMemoryCache(), DefaultResolverConfig())
}

func TestResolve_HouseAddressTier(t *testing.T) {
	p := &fakeProvider{
		predictions: []Prediction{{PlaceID: "pl1", Description: "10 High Street, Coventry"}},
		detail: &Detail{
			FormattedAddress: "10 High St, Coventry CV1 1AA, UK",
			Lat:              52.408, Lng: -1.510,
			City: "Coventry", Postcode: "CV1 1AA", Country: "GB",
		},
	}
	loc, err := newTestResolver(p).Resolve(context.Background(), Query{
		Text: "10 High Street", Bias: coventryBias, StrictLocal: true, Country: "GB",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.City != "Coventry" || loc.Postcode != "CV1 1AA" || loc.Country != "GB" {
		t.Errorf("details not applied: %+v", loc)
	}
	if loc.RawInput != "10 High Street" {
		t.Errorf("RawInput = %q, want verbatim query", loc.RawInput)
	}
	if p.autocompleteCalls != 1 || p.detailsCalls != 1 {
		t.Errorf("call counts: autocomplete=%d details=%d", p.autocompleteCalls, p.detailsCalls)
	}
	if p.textSearchCalls != 0 {
		t.Errorf("text search should not run when the house tier hits, got %d calls", p.textSearchCalls)
	}
}

func TestResolve_NamedPlaceTierForVenues(t *testing.T) {
	p := &fakeProvider{
		candidates: []Candidate{{
			PlaceID: "pl2", Name: "Coventry Railway Station",
			FormattedAddress: "Station Square, Coventry", Lat: 52.4009, Lng: -1.5136,
		}},
		detail: &Detail{
			FormattedAddress: "Station Square, Coventry CV1 2FL, UK",
			Lat:              52.4009, Lng: -1.5136,
			City: "Coventry", Postcode: "CV1 2FL", Country: "GB",
		},
	}
	loc, err := newTestResolver(p).Resolve(context.Background(), Query{
		Text: "train station", Bias: coventryBias, StrictLocal: true, Country: "GB",
	})
	if err != nil || loc == nil {
		t.Fatalf("Resolve() = %v, %v", loc, err)
	}
	if p.autocompleteCalls != 0 {
		t.Errorf("non-digit query should skip the house tier")
	}
	if loc.City != "Coventry" {
		t.Errorf("City = %q, want Coventry", loc.City)
	}
}

func TestResolve_DetailsUpgradeFailureKeepsRawResult(t *testing.T) {
	p := &fakeProvider{
		candidates: []Candidate{{
			PlaceID: "pl3", Name: "Tesco", FormattedAddress: "Cross Cheaping, Coventry",
			Lat: 52.409, Lng: -1.511,
		}},
		detailErr: errors.New("quota exceeded"),
	}
	loc, err := newTestResolver(p).Resolve(context.Background(), Query{
		Text: "Tesco", Bias: coventryBias, StrictLocal: true, Country: "GB",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if loc == nil {
		t.Fatal("raw tier result should still be returned when the upgrade fails")
	}
	if loc.City != "" || loc.Postcode != "" {
		t.Errorf("failed upgrade must not fabricate components: %+v", loc)
	}
	if loc.Lat == 0 || loc.Lng == 0 {
		t.Errorf("raw coordinates lost: %+v", loc)
	}
}

func TestResolve_StrictNeverFallsThroughToGlobal(t *testing.T) {
	p := &fakeProvider{} // every tier comes back empty
	loc, err := newTestResolver(p).Resolve(context.Background(), Query{
		Text: "10 Nowhere Lane", Bias: coventryBias, StrictLocal: true, Country: "GB",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if loc != nil {
		t.Fatalf("expected nil location, got %+v", loc)
	}
	if p.globalSearchCalls != 0 {
		t.Errorf("strict query ran %d unbiased global searches; must never do that", p.globalSearchCalls)
	}
	// house tier + named tier + loose tier each got one biased attempt
	if p.textSearchCalls != 2 {
		t.Errorf("expected 2 biased text searches (named + loose), got %d", p.textSearchCalls)
	}
}

func TestResolve_LooseLocalRejectsDistantResults(t *testing.T) {
	// Named tier finds nothing; the loose tier's provider match is ~90km
	// away and the post-hoc distance check must reject it.
	p := &fakeProvider{
		searchQueue: [][]Candidate{
			nil, // named-place tier
			{{
				PlaceID: "pl4", Name: "High Street", FormattedAddress: "High St, London",
				Lat: 51.51, Lng: -0.12,
			}}, // loose-local tier
		},
	}
	loc, err := newTestResolver(p).Resolve(context.Background(), Query{
		Text: "High Street", Bias: coventryBias, StrictLocal: true, Country: "GB",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if loc != nil {
		t.Fatalf("distant loose-local result must be rejected, got %+v", loc)
	}
}

func TestResolve_GlobalTierForDropoffs(t *testing.T) {
	p := &fakeProvider{
		candidates: []Candidate{{
			PlaceID: "pl5", Name: "Heathrow Airport",
			FormattedAddress: "Longford, Hounslow", Lat: 51.47, Lng: -0.4543,
		}},
		detail: &Detail{
			FormattedAddress: "Heathrow Airport, Longford TW6, UK",
			Lat:              51.47, Lng: -0.4543,
			City: "Hounslow", Postcode: "TW6", Country: "GB",
		},
	}
	// No bias point at all: biased tiers don't apply, global still works.
	loc, err := newTestResolver(p).Resolve(context.Background(), Query{
		Text: "Heathrow Airport", StrictLocal: false, Country: "GB",
	})
	if err != nil || loc == nil {
		t.Fatalf("Resolve() = %v, %v", loc, err)
	}
	if p.globalSearchCalls != 1 {
		t.Errorf("expected exactly one global search, got %d", p.globalSearchCalls)
	}
	if loc.Country != "GB" {
		t.Errorf("Country = %q, want GB", loc.Country)
	}
}

func TestResolve_GlobalTierRejectsForeignCountry(t *testing.T) {
	p := &fakeProvider{
		candidates: []Candidate{{
			PlaceID: "pl6", Name: "Paris", FormattedAddress: "Paris, France",
			Lat: 48.8566, Lng: 2.3522,
		}},
		detail: &Detail{
			FormattedAddress: "Paris, France", Lat: 48.8566, Lng: 2.3522,
			City: "Paris", Country: "FR",
		},
	}
	loc, err := newTestResolver(p).Resolve(context.Background(), Query{
		Text: "Paris", StrictLocal: false, Country: "GB",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if loc != nil {
		t.Fatalf("foreign-country result must be rejected, got %+v", loc)
	}
}

func TestResolve_SecondCallServedFromCache(t *testing.T) {
	p := &fakeProvider{
		candidates: []Candidate{{
			PlaceID: "pl7", Name: "Belgrade Theatre",
			FormattedAddress: "Belgrade Square, Coventry", Lat: 52.4093, Lng: -1.5142,
		}},
		detail: &Detail{
			FormattedAddress: "Belgrade Square, Coventry CV1 1GS, UK",
			Lat:              52.4093, Lng: -1.5142,
			City: "Coventry", Postcode: "CV1 1GS", Country: "GB",
		},
	}
	r := newTestResolver(p)
	q := Query{Text: "Belgrade Theatre", Bias: coventryBias, CityHint: "Coventry", StrictLocal: true, Country: "GB"}

	first, err := r.Resolve(context.Background(), q)
	if err != nil || first == nil {
		t.Fatalf("first Resolve() = %v, %v", first, err)
	}
	second, err := r.Resolve(context.Background(), q)
	if err != nil || second == nil {
		t.Fatalf("second Resolve() = %v, %v", second, err)
	}
	if p.textSearchCalls != 1 {
		t.Errorf("second call hit the provider: %d searches across two invocations", p.textSearchCalls)
	}
	if second.FormattedAddress != first.FormattedAddress {
		t.Errorf("cache returned a different location: %q vs %q", second.FormattedAddress, first.FormattedAddress)
	}
}

func TestResolve_CacheKeyIncludesStrictFlag(t *testing.T) {
	p := &fakeProvider{
		candidates: []Candidate{{
			PlaceID: "pl8", Name: "High Street", FormattedAddress: "High St, Coventry",
			Lat: 52.408, Lng: -1.51,
		}},
		detail: &Detail{FormattedAddress: "High St, Coventry", Lat: 52.408, Lng: -1.51, City: "Coventry", Country: "GB"},
	}
	r := newTestResolver(p)
	if _, err := r.Resolve(context.Background(), Query{Text: "High Street", Bias: coventryBias, StrictLocal: true, Country: "GB"}); err != nil {
		t.Fatal(err)
	}
	searchesAfterStrict := p.textSearchCalls
	if _, err := r.Resolve(context.Background(), Query{Text: "High Street", Bias: coventryBias, StrictLocal: false, Country: "GB"}); err != nil {
		t.Fatal(err)
	}
	if p.textSearchCalls == searchesAfterStrict {
		t.Error("strict and non-strict resolutions must not share a cache entry")
	}
}

func TestResolve_EmptyQuery(t *testing.T) {
	p := &fakeProvider{}
	loc, err := newTestResolver(p).Resolve(context.Background(), Query{Text: "   ", Bias: coventryBias})
	if err != nil || loc != nil {
		t.Fatalf("Resolve(blank) = %v, %v; want nil, nil", loc, err)
	}
	if p.textSearchCalls+p.autocompleteCalls != 0 {
		t.Error("blank query must not reach the provider")
	}
}
