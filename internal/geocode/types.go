// Package geocode resolves free-text location strings to geocoded places
// through a tiered strategy chain over an external places provider.
package geocode

import (
	"strings"

	"dispatch/internal/geo"
)

// Location is a geocoded place. Every field is either the caller's verbatim
// input (RawInput) or copied from provider response data; nothing here is
// invented or corrected locally.
type Location struct {
	RawInput         string  `json:"raw_input"`
	FormattedAddress string  `json:"formatted_address"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	City             string  `json:"city,omitempty"`
	Postcode         string  `json:"postcode,omitempty"`
	Country          string  `json:"country,omitempty"` // ISO 3166-1 alpha-2
}

// Point returns the location's coordinates.
func (l *Location) Point() geo.Point {
	return geo.Point{Lat: l.Lat, Lng: l.Lng}
}

// Query is a single resolution request.
type Query struct {
	Text     string
	Bias     geo.Point
	CityHint string
	// StrictLocal restricts resolution to the vicinity of the bias point.
	// Pickups are resolved strictly; dropoffs may be far away.
	StrictLocal bool
	Country     string // ISO alpha-2 of the serviced country, e.g. "GB"
}

func normalizeQuery(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
