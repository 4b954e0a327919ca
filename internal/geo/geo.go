// Package geo contains pure geographic computation helpers shared by the
// address resolver and trip orchestration.
package geo

import "math"

const (
	earthRadiusKm = 6371.0
	metersPerMile = 1609.344
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point carries no coordinate.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceKm is HaversineKm over two Points.
func DistanceKm(a, b Point) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// MilesFromMeters converts a distance in meters to statute miles.
func MilesFromMeters(m float64) float64 {
	return m / metersPerMile
}

// MetersFromKm converts kilometres to meters.
func MetersFromKm(km float64) float64 {
	return km * 1000
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
