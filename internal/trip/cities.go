// Package trip orchestrates address resolution for a whole trip: it infers
// the caller's likely area, resolves pickup and dropoff, validates both
// against the serviced territory and derives a routed distance and fare.
package trip

import (
	"regexp"
	"strings"

	"dispatch/internal/geo"
)

// City is one entry in the known-city table. The table doubles as the
// bias-point source and as the city leg of nationality validation.
type City struct {
	Name    string
	Country string // ISO 3166-1 alpha-2
	Center  geo.Point
	Aliases []string
}

var knownCities = []City{
	{Name: "Coventry", Country: "GB", Center: geo.Point{Lat: 52.4068, Lng: -1.5197}, Aliases: []string{"cov"}},
	{Name: "Birmingham", Country: "GB", Center: geo.Point{Lat: 52.4862, Lng: -1.8904}, Aliases: []string{"brum"}},
	{Name: "London", Country: "GB", Center: geo.Point{Lat: 51.5074, Lng: -0.1278}},
	{Name: "Leamington Spa", Country: "GB", Center: geo.Point{Lat: 52.2852, Lng: -1.5201}, Aliases: []string{"leamington", "royal leamington spa"}},
	{Name: "Warwick", Country: "GB", Center: geo.Point{Lat: 52.2819, Lng: -1.5849}},
	{Name: "Rugby", Country: "GB", Center: geo.Point{Lat: 52.3709, Lng: -1.2650}},
	{Name: "Nuneaton", Country: "GB", Center: geo.Point{Lat: 52.5230, Lng: -1.4684}},
	{Name: "Kenilworth", Country: "GB", Center: geo.Point{Lat: 52.3410, Lng: -1.5660}},
	{Name: "Solihull", Country: "GB", Center: geo.Point{Lat: 52.4118, Lng: -1.7776}},
	{Name: "Bedworth", Country: "GB", Center: geo.Point{Lat: 52.4790, Lng: -1.4689}},
	{Name: "Amsterdam", Country: "NL", Center: geo.Point{Lat: 52.3676, Lng: 4.9041}},
	{Name: "Rotterdam", Country: "NL", Center: geo.Point{Lat: 51.9244, Lng: 4.4777}},
	{Name: "The Hague", Country: "NL", Center: geo.Point{Lat: 52.0705, Lng: 4.3007}, Aliases: []string{"den haag", "'s-gravenhage"}},
	{Name: "Utrecht", Country: "NL", Center: geo.Point{Lat: 52.0907, Lng: 5.1214}},
	{Name: "Eindhoven", Country: "NL", Center: geo.Point{Lat: 51.4416, Lng: 5.4697}},
}

// FindCity looks up a city by canonical name or alias, case-insensitively.
func FindCity(name string) (City, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return City{}, false
	}
	for _, c := range knownCities {
		if strings.ToLower(c.Name) == name {
			return c, true
		}
		for _, a := range c.Aliases {
			if a == name {
				return c, true
			}
		}
	}
	return City{}, false
}

// ScanText searches free text for a known city name or alias at word
// boundaries. First match across the inputs wins.
func ScanText(texts ...string) (City, bool) {
	for _, text := range texts {
		lower := strings.ToLower(text)
		if lower == "" {
			continue
		}
		for _, c := range knownCities {
			if containsWord(lower, strings.ToLower(c.Name)) {
				return c, true
			}
			for _, a := range c.Aliases {
				if containsWord(lower, a) {
					return c, true
				}
			}
		}
	}
	return City{}, false
}

// NearestCity returns the closest table entry to p, rejecting anything
// further than maxKm away.
func NearestCity(p geo.Point, maxKm float64) (City, float64, bool) {
	var best City
	bestKm := maxKm
	found := false
	for _, c := range knownCities {
		km := geo.DistanceKm(p, c.Center)
		if km <= bestKm {
			best, bestKm, found = c, km, true
		}
	}
	return best, bestKm, found
}

var (
	ukPostcodeRe = regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}$`)
	nlPostcodeRe = regexp.MustCompile(`(?i)^\d{4}\s*[A-Z]{2}$`)
)

// ValidPostcode reports whether postcode matches the national format of the
// given ISO country code.
func ValidPostcode(country, postcode string) bool {
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return false
	}
	switch country {
	case "GB":
		return ukPostcodeRe.MatchString(postcode)
	case "NL":
		return nlPostcodeRe.MatchString(postcode)
	default:
		return false
	}
}

func containsWord(text, phrase string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(phrase)
		startOK := i == 0 || !isWordChar(text[i-1])
		endOK := end == len(text) || !isWordChar(text[end])
		if startOK && endOK {
			return true
		}
		from = i + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
