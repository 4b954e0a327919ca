// Package config loads env-driven settings with sensible defaults for the
// HTTP server, backing stores, providers and the fare rate card.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		// DSN may be empty: bookings then live in process memory.
		DSN string
	}
	Redis struct {
		// Addr may be empty: the geocode cache then lives in process memory.
		Addr          string
		CacheTTLHours int
	}
	Maps struct {
		APIKey string
	}
	AI struct {
		// GeminiKey may be empty: extraction then runs on rules alone.
		GeminiKey string
	}
	Service struct {
		Country      string // ISO alpha-2
		DefaultCity  string
		MaxTripMiles float64
	}
	Fare struct {
		Currency           string
		BaseCharge         float64
		PerMile            float64
		PassengerThreshold int
		PassengerSurcharge float64
	}
}

func Load() (Config, error) {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("DISPATCH_HTTP_ADDR", ":8080")
	cfg.DB.DSN = envOrDefault("DISPATCH_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("DISPATCH_REDIS_ADDR", "")
	cfg.Redis.CacheTTLHours = envOrDefaultInt("DISPATCH_CACHE_TTL_HOURS", 24)
	cfg.Maps.APIKey = envOrError("GOOGLE_MAPS_API_KEY")
	cfg.AI.GeminiKey = envOrDefault("GEMINI_API_KEY", "")
	cfg.Service.Country = envOrDefault("DISPATCH_COUNTRY", "GB")
	cfg.Service.DefaultCity = envOrDefault("DISPATCH_DEFAULT_CITY", "Coventry")
	cfg.Service.MaxTripMiles = envOrDefaultFloat("DISPATCH_MAX_TRIP_MILES", 200)
	cfg.Fare.Currency = envOrDefault("DISPATCH_FARE_CURRENCY", "GBP")
	cfg.Fare.BaseCharge = envOrDefaultFloat("DISPATCH_FARE_BASE", 3.50)
	cfg.Fare.PerMile = envOrDefaultFloat("DISPATCH_FARE_PER_MILE", 1.80)
	cfg.Fare.PassengerThreshold = envOrDefaultInt("DISPATCH_FARE_PASSENGER_THRESHOLD", 4)
	cfg.Fare.PassengerSurcharge = envOrDefaultFloat("DISPATCH_FARE_PASSENGER_SURCHARGE", 2.50)
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrError(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	panic("environment variable " + key + " is required")
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}
