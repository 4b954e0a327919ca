package nearby

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/geo"
	"dispatch/internal/geocode"
)

type fakeProvider struct {
	gotKeyword   string
	gotPlaceType string
	cands        []geocode.Candidate
	err          error
}

func (f *fakeProvider) Autocomplete(ctx context.Context, input string, bias geo.Point, radius uint) ([]geocode.Prediction, error) {
	return nil, nil
}

func (f *fakeProvider) Details(ctx context.Context, placeID string) (*geocode.Detail, error) {
	return nil, errors.New("not used")
}

func (f *fakeProvider) TextSearch(ctx context.Context, query string, bias *geo.Point, radius uint) ([]geocode.Candidate, error) {
	return nil, nil
}

func (f *fakeProvider) Nearby(ctx context.Context, bias geo.Point, radius uint, keyword, placeType string) ([]geocode.Candidate, error) {
	f.gotKeyword = keyword
	f.gotPlaceType = placeType
	return f.cands, f.err
}

var coventry = geo.Point{Lat: 52.4068, Lng: -1.5197}

func TestSearch_MapsKeywordToPlaceType(t *testing.T) {
	tests := []struct {
		query    string
		wantType string
	}{
		{"nearest pharmacy", "pharmacy"},
		{"chemist", "pharmacy"},
		{"where's the closest cash machine", "atm"},
		{"petrol station", "gas_station"},
		{"train station", "train_station"},
		{"car park", "parking"},
	}
	for _, tt := range tests {
		p := &fakeProvider{}
		if _, err := NewService(p).Search(context.Background(), tt.query, coventry); err != nil {
			t.Fatalf("Search(%q) error = %v", tt.query, err)
		}
		if p.gotPlaceType != tt.wantType {
			t.Errorf("Search(%q) place type = %q, want %q", tt.query, p.gotPlaceType, tt.wantType)
		}
	}
}

func TestSearch_UnknownCategoryFallsBackToKeyword(t *testing.T) {
	p := &fakeProvider{}
	if _, err := NewService(p).Search(context.Background(), "vegan bakery", coventry); err != nil {
		t.Fatal(err)
	}
	if p.gotPlaceType != "" {
		t.Errorf("place type = %q, want empty for an unmapped category", p.gotPlaceType)
	}
	if p.gotKeyword != "vegan bakery" {
		t.Errorf("keyword = %q, want the raw query", p.gotKeyword)
	}
}

func TestSearch_ResultsCarryDistance(t *testing.T) {
	p := &fakeProvider{cands: []geocode.Candidate{
		{Name: "Boots", FormattedAddress: "12 Cross Cheaping, Coventry", Lat: 52.409, Lng: -1.510},
		{Name: "Lloyds Pharmacy", FormattedAddress: "Far Gosford St, Coventry", Lat: 52.406, Lng: -1.494},
	}}
	places, err := NewService(p).Search(context.Background(), "pharmacy", coventry)
	if err != nil {
		t.Fatal(err)
	}
	if len(places) != 2 {
		t.Fatalf("got %d places, want 2", len(places))
	}
	if places[0].Name != "Boots" {
		t.Errorf("name = %q", places[0].Name)
	}
	if places[0].DistanceKm <= 0 || places[0].DistanceKm > 2 {
		t.Errorf("distance = %.2f km, want a sub-2km figure", places[0].DistanceKm)
	}
}

func TestSearch_LimitsResults(t *testing.T) {
	var cands []geocode.Candidate
	for i := 0; i < 12; i++ {
		cands = append(cands, geocode.Candidate{Name: "Place", Lat: 52.4, Lng: -1.5})
	}
	places, err := NewService(&fakeProvider{cands: cands}).Search(context.Background(), "cafe", coventry)
	if err != nil {
		t.Fatal(err)
	}
	if len(places) != 5 {
		t.Errorf("got %d places, want the 5-result cap", len(places))
	}
}

func TestSearch_NoLocation(t *testing.T) {
	if _, err := NewService(&fakeProvider{}).Search(context.Background(), "pharmacy", geo.Point{}); !errors.Is(err, ErrNoLocation) {
		t.Errorf("error = %v, want ErrNoLocation", err)
	}
}
