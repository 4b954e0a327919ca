// Package fare computes deterministic fare estimates from trip distance
// and passenger count. No I/O; every figure in the result is derived from
// the inputs and the configured rates.
package fare

import "math"

// Config holds the tunable rate card.
type Config struct {
	Currency           string
	BaseCharge         float64
	PerMile            float64
	PassengerThreshold int     // headcount above which the surcharge applies
	PassengerSurcharge float64 // flat amount per passenger over the threshold
}

// DefaultConfig is the standard UK rate card.
func DefaultConfig() Config {
	return Config{
		Currency:           "GBP",
		BaseCharge:         3.50,
		PerMile:            1.80,
		PassengerThreshold: 4,
		PassengerSurcharge: 2.50,
	}
}

// Breakdown itemises how the total was reached.
type Breakdown struct {
	BaseCharge         float64 `json:"base_charge"`
	DistanceCharge     float64 `json:"distance_charge"`
	PassengerSurcharge float64 `json:"passenger_surcharge"`
}

// Estimate is a quoted fare.
type Estimate struct {
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Breakdown Breakdown `json:"breakdown"`
}

// Estimate quotes a fare for the given distance and headcount. The final
// amount is rounded to the nearest half currency unit; the breakdown
// carries the unrounded components.
func (c Config) Estimate(distanceMiles float64, passengers int) Estimate {
	if distanceMiles < 0 {
		distanceMiles = 0
	}
	if passengers < 1 {
		passengers = 1
	}

	distanceCharge := distanceMiles * c.PerMile

	var surcharge float64
	if passengers > c.PassengerThreshold {
		surcharge = float64(passengers-c.PassengerThreshold) * c.PassengerSurcharge
	}

	total := roundToHalf(c.BaseCharge + distanceCharge + surcharge)

	return Estimate{
		Amount:   total,
		Currency: c.Currency,
		Breakdown: Breakdown{
			BaseCharge:         c.BaseCharge,
			DistanceCharge:     distanceCharge,
			PassengerSurcharge: surcharge,
		},
	}
}

func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
