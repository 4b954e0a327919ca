package geocode

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"dispatch/internal/geo"
)

// GoogleProvider implements Provider and Distancer over the Google Maps
// Platform (Places autocomplete/details/text search and Distance Matrix).
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider with the given API key.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Autocomplete(ctx context.Context, input string, bias geo.Point, radiusMeters uint) ([]Prediction, error) {
	r := &maps.PlaceAutocompleteRequest{
		Input:        input,
		Location:     &maps.LatLng{Lat: bias.Lat, Lng: bias.Lng},
		Radius:       radiusMeters,
		StrictBounds: true,
		Types:        maps.AutocompletePlaceTypeAddress,
	}
	resp, err := p.client.PlaceAutocomplete(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places autocomplete error: %w", err)
	}
	preds := make([]Prediction, 0, len(resp.Predictions))
	for _, pr := range resp.Predictions {
		preds = append(preds, Prediction{PlaceID: pr.PlaceID, Description: pr.Description})
	}
	return preds, nil
}

func (p *GoogleProvider) Details(ctx context.Context, placeID string) (*Detail, error) {
	r := &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometry,
			maps.PlaceDetailsFieldMaskAddressComponent,
		},
	}
	resp, err := p.client.PlaceDetails(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("place details error: %w", err)
	}

	d := &Detail{
		FormattedAddress: resp.FormattedAddress,
		Lat:              resp.Geometry.Location.Lat,
		Lng:              resp.Geometry.Location.Lng,
	}
	for _, comp := range resp.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "postal_town", "locality":
				if d.City == "" {
					d.City = comp.LongName
				}
			case "postal_code":
				d.Postcode = comp.LongName
			case "country":
				d.Country = strings.ToUpper(comp.ShortName)
			}
		}
	}
	return d, nil
}

func (p *GoogleProvider) TextSearch(ctx context.Context, query string, bias *geo.Point, radiusMeters uint) ([]Candidate, error) {
	r := &maps.TextSearchRequest{Query: query}
	if bias != nil {
		r.Location = &maps.LatLng{Lat: bias.Lat, Lng: bias.Lng}
		r.Radius = radiusMeters
	}
	resp, err := p.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places text search error: %w", err)
	}
	return candidatesFromResults(resp.Results), nil
}

func (p *GoogleProvider) Nearby(ctx context.Context, bias geo.Point, radiusMeters uint, keyword, placeType string) ([]Candidate, error) {
	r := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: bias.Lat, Lng: bias.Lng},
		Radius:   radiusMeters,
		Keyword:  keyword,
		Type:     maps.PlaceType(placeType),
	}
	resp, err := p.client.NearbySearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places nearby search error: %w", err)
	}
	return candidatesFromResults(resp.Results), nil
}

// DrivingDistance queries the Distance Matrix API for a routed estimate.
func (p *GoogleProvider) DrivingDistance(ctx context.Context, origin, dest geo.Point) (*RouteEstimate, error) {
	o := maps.LatLng{Lat: origin.Lat, Lng: origin.Lng}
	d := maps.LatLng{Lat: dest.Lat, Lng: dest.Lng}
	r := &maps.DistanceMatrixRequest{
		Origins:      []string{o.String()},
		Destinations: []string{d.String()},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsImperial,
	}
	resp, err := p.client.DistanceMatrix(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("distance matrix error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("distance matrix returned no elements")
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return nil, fmt.Errorf("distance matrix element status %s", el.Status)
	}
	return &RouteEstimate{
		Meters:       el.Distance.Meters,
		Miles:        geo.MilesFromMeters(float64(el.Distance.Meters)),
		Duration:     el.Duration,
		DurationText: fmt.Sprintf("%.0f mins", el.Duration.Minutes()),
	}, nil
}

func candidatesFromResults(results []maps.PlacesSearchResult) []Candidate {
	out := make([]Candidate, 0, len(results))
	for _, res := range results {
		out = append(out, Candidate{
			PlaceID:          res.PlaceID,
			Name:             res.Name,
			FormattedAddress: res.FormattedAddress,
			Lat:              res.Geometry.Location.Lat,
			Lng:              res.Geometry.Location.Lng,
		})
	}
	return out
}
