package trip

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/fare"
	"dispatch/internal/geo"
	"dispatch/internal/geocode"
)

// Confidence grades how sure the resolver is about the inferred area.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Config holds the trip-level operating parameters.
type Config struct {
	Country             string // ISO alpha-2 of the serviced country
	DefaultCity         string // bias fallback when no other signal exists
	MaxTripMiles        float64
	NearestCityCutoffKm float64
	// RoadFactor inflates straight-line distance when the distance matrix
	// is unavailable; FallbackSpeedMph turns that into a duration.
	RoadFactor       float64
	FallbackSpeedMph float64
	ResolveTimeout   time.Duration
}

// DefaultConfig returns the standard UK service-area parameters.
func DefaultConfig() Config {
	return Config{
		Country:             "GB",
		DefaultCity:         "Coventry",
		MaxTripMiles:        200,
		NearestCityCutoffKm: 30,
		RoadFactor:          1.3,
		FallbackSpeedMph:    25,
		ResolveTimeout:      5 * time.Second,
	}
}

// Geocoder resolves one free-text location string. Implemented by
// geocode.Resolver in production.
type Geocoder interface {
	Resolve(ctx context.Context, q geocode.Query) (*geocode.Location, error)
}

// Request is one trip-resolution call. CityHint typically comes from phone
// classification; CallerCoords is zero when the caller's position is unknown.
type Request struct {
	PickupText   string
	DropoffText  string
	CityHint     string
	CallerCoords geo.Point
	Passengers   int
}

// InferredArea is the resolver's best guess at the caller's city.
type InferredArea struct {
	City       string     `json:"city,omitempty"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}

// Distance is a trip distance/duration, routed when the distance matrix
// answered and estimated from straight-line geometry otherwise. The two are
// told apart by the duration_text format.
type Distance struct {
	Meters          int     `json:"meters"`
	Miles           float64 `json:"miles"`
	DurationSeconds int     `json:"duration_seconds"`
	DurationText    string  `json:"duration_text"`
}

// Resolution is the outcome of one trip-resolution call. Partial results
// are normal: a failing side is nulled and explained in Error while the
// surviving side is kept, because the conversation with the caller has to
// continue either way.
type Resolution struct {
	Pickup       *geocode.Location `json:"pickup,omitempty"`
	Dropoff      *geocode.Location `json:"dropoff,omitempty"`
	InferredArea InferredArea      `json:"inferred_area"`
	Distance     *Distance         `json:"distance,omitempty"`
	FareEstimate *fare.Estimate    `json:"fare_estimate,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Resolver orchestrates geocoding, territory validation, routing and fare
// estimation for a trip. Stateless across calls; safe for concurrent use.
type Resolver struct {
	geocoder  Geocoder
	distancer geocode.Distancer // may be nil: straight-line fallback only
	fares     fare.Config
	cfg       Config
}

func NewResolver(geocoder Geocoder, distancer geocode.Distancer, fares fare.Config, cfg Config) *Resolver {
	return &Resolver{geocoder: geocoder, distancer: distancer, fares: fares, cfg: cfg}
}

// Resolve runs the full trip pipeline. It never returns an error: every
// failure mode degrades to a partial Resolution with Error set.
func (r *Resolver) Resolve(ctx context.Context, req Request) *Resolution {
	res := &Resolution{}
	var errs []string

	biasCity, biasPoint, biasSource := r.inferBias(req)

	pickupText := strings.TrimSpace(req.PickupText)
	dropoffText := strings.TrimSpace(req.DropoffText)

	// The GPS sentinel short-circuits geocoding: the caller's coordinates
	// are the pickup, there is nothing to look up.
	gpsPickup := strings.EqualFold(pickupText, ai.PickupCurrentLocation)
	if gpsPickup {
		if req.CallerCoords.IsZero() {
			errs = append(errs, "pickup at caller's current location requested but no coordinates are available")
		} else {
			res.Pickup = r.locationFromCoords(req.CallerCoords)
		}
	}

	var wg sync.WaitGroup
	if pickupText != "" && !gpsPickup {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.Pickup = r.resolveSide(ctx, pickupText, biasPoint, biasCity, true)
		}()
	}
	if dropoffText != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.Dropoff = r.resolveSide(ctx, dropoffText, biasPoint, biasCity, false)
		}()
	}
	wg.Wait()

	if pickupText != "" && !gpsPickup && res.Pickup == nil {
		errs = append(errs, fmt.Sprintf("could not resolve pickup location %q", pickupText))
	}
	if dropoffText != "" && res.Dropoff == nil {
		errs = append(errs, fmt.Sprintf("could not resolve dropoff location %q", dropoffText))
	}

	res.InferredArea = r.inferArea(req, biasCity, biasSource, res.Pickup, res.Dropoff)

	// Territory validation is per side: one rejected address must not take
	// the other down with it.
	if res.Pickup != nil && !r.inTerritory(res.Pickup) {
		errs = append(errs, fmt.Sprintf("pickup %q is outside the serviced country", res.Pickup.FormattedAddress))
		res.Pickup = nil
	}
	if res.Dropoff != nil && !r.inTerritory(res.Dropoff) {
		errs = append(errs, fmt.Sprintf("dropoff %q is outside the serviced country", res.Dropoff.FormattedAddress))
		res.Dropoff = nil
	}

	if res.Pickup != nil && res.Dropoff != nil {
		res.Distance = r.tripDistance(ctx, res.Pickup.Point(), res.Dropoff.Point())
		if res.Distance.Miles > r.cfg.MaxTripMiles {
			// The figure stays visible; only the quote is withheld.
			errs = append(errs, fmt.Sprintf("trip distance %.0f miles exceeds the %.0f mile limit", res.Distance.Miles, r.cfg.MaxTripMiles))
		} else {
			est := r.fares.Estimate(res.Distance.Miles, req.Passengers)
			res.FareEstimate = &est
		}
	}

	res.Error = strings.Join(errs, "; ")
	return res
}

// inferBias picks the geographic prior for geocoding: explicit hint, then a
// city named in the request text, then caller coordinates, then the default
// service area.
func (r *Resolver) inferBias(req Request) (city string, point geo.Point, source string) {
	if req.CityHint != "" {
		if c, ok := FindCity(req.CityHint); ok {
			return c.Name, c.Center, "caller city hint"
		}
	}
	if c, ok := ScanText(req.PickupText, req.DropoffText); ok {
		return c.Name, c.Center, "city named in the request"
	}
	if !req.CallerCoords.IsZero() {
		if c, km, ok := NearestCity(req.CallerCoords, r.cfg.NearestCityCutoffKm); ok {
			return c.Name, req.CallerCoords, fmt.Sprintf("caller coordinates %.0f km from %s", km, c.Name)
		}
		return "", req.CallerCoords, "caller coordinates"
	}
	if c, ok := FindCity(r.cfg.DefaultCity); ok {
		return c.Name, c.Center, "default service area"
	}
	return "", geo.Point{}, "no geographic signal"
}

// resolveSide geocodes one side of the trip. Pickups are strict (must stay
// near the bias point); dropoffs may legitimately be far away. Geocoder
// errors degrade to a resolution miss.
func (r *Resolver) resolveSide(ctx context.Context, text string, bias geo.Point, cityHint string, strict bool) *geocode.Location {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ResolveTimeout)
	defer cancel()

	loc, err := r.geocoder.Resolve(ctx, geocode.Query{
		Text:        text,
		Bias:        bias,
		CityHint:    cityHint,
		StrictLocal: strict,
		Country:     r.cfg.Country,
	})
	if err != nil {
		log.Printf("trip: geocoding %q failed: %v", text, err)
		return nil
	}
	return loc
}

func (r *Resolver) locationFromCoords(p geo.Point) *geocode.Location {
	loc := &geocode.Location{
		RawInput:         ai.PickupCurrentLocation,
		FormattedAddress: "Caller's current location",
		Lat:              p.Lat,
		Lng:              p.Lng,
	}
	if c, _, ok := NearestCity(p, r.cfg.NearestCityCutoffKm); ok {
		loc.City = c.Name
		loc.Country = c.Country
	}
	return loc
}

// inferArea grades the caller's likely city. Agreement between resolved
// addresses, or between the hint and a resolved address, is high
// confidence; a single resolved city is medium; everything below that is a
// low-confidence guess.
func (r *Resolver) inferArea(req Request, biasCity, biasSource string, pickup, dropoff *geocode.Location) InferredArea {
	hintCity := strings.TrimSpace(req.CityHint)
	if c, ok := FindCity(hintCity); ok {
		hintCity = c.Name
	}
	pCity := cityOf(pickup)
	dCity := cityOf(dropoff)

	switch {
	case pCity != "" && dCity != "" && strings.EqualFold(pCity, dCity):
		return InferredArea{City: pCity, Confidence: ConfidenceHigh, Reason: "pickup and dropoff resolved to the same city"}
	case hintCity != "" && strings.EqualFold(hintCity, pCity):
		return InferredArea{City: pCity, Confidence: ConfidenceHigh, Reason: "caller hint matches the resolved pickup"}
	case hintCity != "" && strings.EqualFold(hintCity, dCity):
		return InferredArea{City: dCity, Confidence: ConfidenceHigh, Reason: "caller hint matches the resolved dropoff"}
	case pCity != "":
		return InferredArea{City: pCity, Confidence: ConfidenceMedium, Reason: "pickup resolved to a city"}
	case dCity != "":
		return InferredArea{City: dCity, Confidence: ConfidenceMedium, Reason: "dropoff resolved to a city"}
	case hintCity != "":
		return InferredArea{City: hintCity, Confidence: ConfidenceLow, Reason: "caller hint only"}
	case biasCity != "":
		return InferredArea{City: biasCity, Confidence: ConfidenceLow, Reason: biasSource}
	default:
		return InferredArea{Confidence: ConfidenceLow, Reason: "no geographic signal"}
	}
}

// inTerritory checks a resolved location against the serviced country. Any
// one passing signal is enough: ISO country code, national postcode format,
// or membership in the known-city table. A location carrying none of the
// three identity fields passes — nothing contradicts the service area, and
// local-tier results with a failed details upgrade would otherwise be
// discarded despite being physically nearby.
func (r *Resolver) inTerritory(loc *geocode.Location) bool {
	if loc.Country == "" && loc.Postcode == "" && loc.City == "" {
		return true
	}
	if strings.EqualFold(loc.Country, r.cfg.Country) && loc.Country != "" {
		return true
	}
	if ValidPostcode(r.cfg.Country, loc.Postcode) {
		return true
	}
	if c, ok := FindCity(loc.City); ok && c.Country == r.cfg.Country {
		return true
	}
	return false
}

// tripDistance asks the distance matrix for a routed figure and falls back
// to inflated straight-line distance when the provider is unavailable. The
// fallback is marked by its "approx." duration text.
func (r *Resolver) tripDistance(ctx context.Context, origin, dest geo.Point) *Distance {
	if r.distancer != nil {
		ctx, cancel := context.WithTimeout(ctx, r.cfg.ResolveTimeout)
		defer cancel()
		if est, err := r.distancer.DrivingDistance(ctx, origin, dest); err == nil {
			return &Distance{
				Meters:          est.Meters,
				Miles:           est.Miles,
				DurationSeconds: int(est.Duration.Seconds()),
				DurationText:    est.DurationText,
			}
		} else {
			log.Printf("trip: distance matrix failed, estimating from straight-line distance: %v", err)
		}
	}

	km := geo.DistanceKm(origin, dest) * r.cfg.RoadFactor
	meters := geo.MetersFromKm(km)
	miles := geo.MilesFromMeters(meters)
	hours := miles / r.cfg.FallbackSpeedMph
	secs := int(hours * 3600)
	return &Distance{
		Meters:          int(meters),
		Miles:           miles,
		DurationSeconds: secs,
		DurationText:    fmt.Sprintf("approx. %.0f mins", hours*60),
	}
}

func cityOf(loc *geocode.Location) string {
	if loc == nil {
		return ""
	}
	return loc.City
}
