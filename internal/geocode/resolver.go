package geocode

import (
	"context"
	"log"
	"strings"
	"unicode"

	"dispatch/internal/geo"
)

// ResolverConfig holds the search radii. These are tunable operating
// parameters, not invariants.
type ResolverConfig struct {
	// LocalRadiusMeters bounds the house-address and named-place tiers.
	LocalRadiusMeters uint
	// LooseRadiusMeters bounds the wider strict-only fallback search.
	LooseRadiusMeters uint
	// LooseAcceptKm rejects loose-tier results further than this from the
	// bias point even when the provider returned them.
	LooseAcceptKm float64
}

// DefaultResolverConfig returns the standard radii.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		LocalRadiusMeters: 5000,
		LooseRadiusMeters: 8000,
		LooseAcceptKm:     10,
	}
}

// strategy is one resolution tier. Tiers are tried in order; the first
// non-nil result wins.
type strategy interface {
	name() string
	applies(q Query) bool
	resolve(ctx context.Context, q Query) (*Location, error)
}

// Resolver turns a free-text location string into a geocoded Location via
// an ordered chain of strategies sharing one cache.
type Resolver struct {
	provider   Provider
	cache      Cache
	strategies []strategy
}

// NewResolver builds a resolver with the standard four tiers:
// house-address, named-place, loose-local (strict queries only) and
// global (non-strict queries only).
func NewResolver(provider Provider, cache Cache, cfg ResolverConfig) *Resolver {
	r := &Resolver{provider: provider, cache: cache}
	r.strategies = []strategy{
		&houseAddressTier{provider: provider, radius: cfg.LocalRadiusMeters},
		&namedPlaceTier{provider: provider, radius: cfg.LocalRadiusMeters},
		&looseLocalTier{provider: provider, radius: cfg.LooseRadiusMeters, acceptKm: cfg.LooseAcceptKm},
		&globalTier{provider: provider},
	}
	return r
}

// Resolve runs the query through the tier chain. A nil Location with a nil
// error means no tier found a match; callers treat that as a resolution
// miss, not a failure. Tier-level provider errors are logged and degrade
// to the next tier.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Location, error) {
	raw := strings.TrimSpace(q.Text)
	q.Text = normalizeQuery(raw)
	if q.Text == "" {
		return nil, nil
	}

	key := NewCacheKey(q.Text, q.CityHint, q.StrictLocal)
	if loc, ok := r.cache.Get(ctx, key); ok {
		return loc, nil
	}

	for _, s := range r.strategies {
		if !s.applies(q) {
			continue
		}
		loc, err := s.resolve(ctx, q)
		if err != nil {
			log.Printf("geocode: %s tier failed for %q: %v", s.name(), q.Text, err)
			continue
		}
		if loc == nil {
			continue
		}
		loc.RawInput = raw
		r.cache.Set(ctx, key, loc)
		return loc, nil
	}
	return nil, nil
}

// upgradeFromDetails fills in address components from a place-details call.
// Best effort: a raw tier result without components is lower quality but
// still worth returning, so failures leave loc untouched.
func upgradeFromDetails(ctx context.Context, provider Provider, loc *Location, placeID string) {
	if placeID == "" {
		return
	}
	det, err := provider.Details(ctx, placeID)
	if err != nil {
		log.Printf("geocode: details upgrade failed for %s: %v", placeID, err)
		return
	}
	if det.FormattedAddress != "" {
		loc.FormattedAddress = det.FormattedAddress
	}
	loc.City = det.City
	loc.Postcode = det.Postcode
	loc.Country = det.Country
}

func locationFromCandidate(c Candidate) *Location {
	addr := c.FormattedAddress
	if addr == "" {
		addr = c.Name
	} else if c.Name != "" && !strings.Contains(strings.ToLower(addr), strings.ToLower(c.Name)) {
		addr = c.Name + ", " + addr
	}
	return &Location{FormattedAddress: addr, Lat: c.Lat, Lng: c.Lng}
}

// houseAddressTier handles queries that start with a house number, using an
// address-typed autocomplete lookup pinned to a small radius around the
// bias point.
type houseAddressTier struct {
	provider Provider
	radius   uint
}

func (t *houseAddressTier) name() string { return "house-address" }

func (t *houseAddressTier) applies(q Query) bool {
	if q.Bias.IsZero() {
		return false
	}
	for _, r := range q.Text {
		return unicode.IsDigit(r)
	}
	return false
}

func (t *houseAddressTier) resolve(ctx context.Context, q Query) (*Location, error) {
	preds, err := t.provider.Autocomplete(ctx, q.Text, q.Bias, t.radius)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return nil, nil
	}
	// Predictions carry no coordinates, so the details call is mandatory
	// here; on failure the named-place tier still gets its turn.
	det, err := t.provider.Details(ctx, preds[0].PlaceID)
	if err != nil {
		return nil, err
	}
	return &Location{
		FormattedAddress: det.FormattedAddress,
		Lat:              det.Lat,
		Lng:              det.Lng,
		City:             det.City,
		Postcode:         det.Postcode,
		Country:          det.Country,
	}, nil
}

// namedPlaceTier runs a free-text search biased to the local radius. It is
// always attempted so named venues ("the train station") resolve even when
// the query happens to start with a digit.
type namedPlaceTier struct {
	provider Provider
	radius   uint
}

func (t *namedPlaceTier) name() string { return "named-place" }

func (t *namedPlaceTier) applies(q Query) bool { return !q.Bias.IsZero() }

func (t *namedPlaceTier) resolve(ctx context.Context, q Query) (*Location, error) {
	cands, err := t.provider.TextSearch(ctx, q.Text, &q.Bias, t.radius)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}
	loc := locationFromCandidate(cands[0])
	upgradeFromDetails(ctx, t.provider, loc, cands[0].PlaceID)
	return loc, nil
}

// looseLocalTier widens the search for strict (pickup) queries, with a
// post-hoc straight-line distance check: the provider may return matches
// from the wrong town, and a pickup silently relocated to the wrong city
// is worse than no pickup at all. A strict query that fails here is done —
// it never falls through to the global tier.
type looseLocalTier struct {
	provider Provider
	radius   uint
	acceptKm float64
}

func (t *looseLocalTier) name() string { return "loose-local" }

func (t *looseLocalTier) applies(q Query) bool { return q.StrictLocal && !q.Bias.IsZero() }

func (t *looseLocalTier) resolve(ctx context.Context, q Query) (*Location, error) {
	cands, err := t.provider.TextSearch(ctx, q.Text, &q.Bias, t.radius)
	if err != nil {
		return nil, err
	}
	for _, c := range cands {
		if geo.HaversineKm(q.Bias.Lat, q.Bias.Lng, c.Lat, c.Lng) > t.acceptKm {
			continue
		}
		loc := locationFromCandidate(c)
		upgradeFromDetails(ctx, t.provider, loc, c.PlaceID)
		return loc, nil
	}
	return nil, nil
}

// globalTier is the unconstrained search used for non-strict (dropoff)
// queries: destinations may legitimately be an airport or a city far away.
// Results resolving to a different country than the serviced one are
// rejected.
type globalTier struct {
	provider Provider
}

func (t *globalTier) name() string { return "global" }

func (t *globalTier) applies(q Query) bool { return !q.StrictLocal }

func (t *globalTier) resolve(ctx context.Context, q Query) (*Location, error) {
	query := q.Text
	if suffix := countrySuffix(q.Country); suffix != "" {
		query += ", " + suffix
	}
	cands, err := t.provider.TextSearch(ctx, query, nil, 0)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}
	loc := locationFromCandidate(cands[0])
	upgradeFromDetails(ctx, t.provider, loc, cands[0].PlaceID)
	if loc.Country != "" && q.Country != "" && loc.Country != q.Country {
		return nil, nil
	}
	return loc, nil
}

func countrySuffix(iso string) string {
	switch iso {
	case "GB":
		return "UK"
	case "NL":
		return "Netherlands"
	default:
		return iso
	}
}
