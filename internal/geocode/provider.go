package geocode

import (
	"context"
	"time"

	"dispatch/internal/geo"
)

// Prediction is one autocomplete suggestion. Predictions carry no
// coordinates; a place-details call is needed to geocode them.
type Prediction struct {
	PlaceID     string
	Description string
}

// Candidate is one place-search result.
type Candidate struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Lat              float64
	Lng              float64
}

// Detail is the richer record returned by a place-details lookup.
type Detail struct {
	FormattedAddress string
	Lat              float64
	Lng              float64
	City             string
	Postcode         string
	Country          string // ISO alpha-2
}

// Provider is the places backend consumed by the resolver tiers. Implemented
// by GoogleProvider in production and by fakes in tests.
type Provider interface {
	// Autocomplete returns address-typed suggestions near the bias point.
	Autocomplete(ctx context.Context, input string, bias geo.Point, radiusMeters uint) ([]Prediction, error)
	// Details upgrades a place ID to a full record with address components.
	Details(ctx context.Context, placeID string) (*Detail, error)
	// TextSearch runs a free-text place search. A nil bias searches globally.
	TextSearch(ctx context.Context, query string, bias *geo.Point, radiusMeters uint) ([]Candidate, error)
	// Nearby searches for places of a given type around the bias point.
	Nearby(ctx context.Context, bias geo.Point, radiusMeters uint, keyword, placeType string) ([]Candidate, error)
}

// RouteEstimate is a routed distance/duration between two points.
type RouteEstimate struct {
	Meters       int
	Miles        float64
	Duration     time.Duration
	DurationText string
}

// Distancer computes routed driving distance between two coordinates.
type Distancer interface {
	DrivingDistance(ctx context.Context, origin, dest geo.Point) (*RouteEstimate, error)
}
