// Package nearby answers ad hoc "nearest X" queries by mapping spoken
// category keywords to provider place types. It is independent of the trip
// flow; results are informational, never booked against.
package nearby

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/geo"
	"dispatch/internal/geocode"
)

// ErrNoLocation is returned when a search has no coordinates to anchor to.
var ErrNoLocation = errors.New("nearby: no search location")

// placeTypes maps spoken keywords to provider place types. Keywords the
// table does not know fall back to a keyword search with no type filter.
var placeTypes = map[string]string{
	"pharmacy":       "pharmacy",
	"chemist":        "pharmacy",
	"atm":            "atm",
	"cash machine":   "atm",
	"cashpoint":      "atm",
	"bank":           "bank",
	"hospital":       "hospital",
	"a&e":            "hospital",
	"doctor":         "doctor",
	"gp":             "doctor",
	"dentist":        "dentist",
	"petrol station": "gas_station",
	"petrol":         "gas_station",
	"gas station":    "gas_station",
	"supermarket":    "supermarket",
	"grocery":        "supermarket",
	"shop":           "store",
	"restaurant":     "restaurant",
	"cafe":           "cafe",
	"coffee":         "cafe",
	"pub":            "bar",
	"bar":            "bar",
	"hotel":          "lodging",
	"train station":  "train_station",
	"railway station": "train_station",
	"bus station":    "bus_station",
	"airport":        "airport",
	"police":         "police",
	"post office":    "post_office",
	"parking":        "parking",
	"car park":       "parking",
	"cinema":         "movie_theater",
	"church":         "church",
	"mosque":         "mosque",
	"park":           "park",
}

// Place is one search result with its straight-line distance from the
// search point.
type Place struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distance_km"`
}

// Service runs nearby-category searches against a places provider.
type Service struct {
	provider     geocode.Provider
	radiusMeters uint
	limit        int
}

func NewService(provider geocode.Provider) *Service {
	return &Service{provider: provider, radiusMeters: 5000, limit: 5}
}

// Search finds places matching the spoken query around the given point.
// The query is matched against the keyword table longest-entry-first so
// "petrol station" wins over "station" fragments inside it.
func (s *Service) Search(ctx context.Context, query string, around geo.Point) ([]Place, error) {
	if around.IsZero() {
		return nil, ErrNoLocation
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("nearby: empty query")
	}

	keyword, placeType := classify(query)
	cands, err := s.provider.Nearby(ctx, around, s.radiusMeters, keyword, placeType)
	if err != nil {
		return nil, fmt.Errorf("nearby search for %q: %w", query, err)
	}

	places := make([]Place, 0, len(cands))
	for _, c := range cands {
		if len(places) == s.limit {
			break
		}
		name := c.Name
		if name == "" {
			name = c.FormattedAddress
		}
		places = append(places, Place{
			Name:       name,
			Address:    c.FormattedAddress,
			Lat:        c.Lat,
			Lng:        c.Lng,
			DistanceKm: geo.HaversineKm(around.Lat, around.Lng, c.Lat, c.Lng),
		})
	}
	return places, nil
}

// classify picks the place type for a query. Longer table keys are
// preferred so multi-word categories beat their fragments.
func classify(query string) (keyword, placeType string) {
	bestLen := 0
	for key, pt := range placeTypes {
		if len(key) > bestLen && containsPhrase(query, key) {
			keyword, placeType, bestLen = key, pt, len(key)
		}
	}
	if placeType == "" {
		// Unknown category: pass the raw query through as a keyword.
		return query, ""
	}
	return keyword, placeType
}

func containsPhrase(text, phrase string) bool {
	i := strings.Index(text, phrase)
	for i >= 0 {
		end := i + len(phrase)
		startOK := i == 0 || text[i-1] == ' '
		endOK := end == len(text) || text[end] == ' '
		if startOK && endOK {
			return true
		}
		next := strings.Index(text[i+1:], phrase)
		if next < 0 {
			return false
		}
		i += 1 + next
	}
	return false
}
