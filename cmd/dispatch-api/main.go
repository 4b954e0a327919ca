// Entry point; loads config, wires the resolver stack and starts the HTTP
// server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/booking"
	"dispatch/internal/config"
	"dispatch/internal/fare"
	"dispatch/internal/geocode"
	httptransport "dispatch/internal/http"
	"dispatch/internal/infra"
	"dispatch/internal/nearby"
	"dispatch/internal/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := geocode.NewGoogleProvider(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	var cache geocode.Cache = geocode.NewMemoryCache()
	if cfg.Redis.Addr != "" {
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		cache = geocode.NewRedisCache(redisClient, time.Duration(cfg.Redis.CacheTTLHours)*time.Hour)
	}
	geocoder := geocode.NewResolver(provider, cache, geocode.DefaultResolverConfig())

	fareCfg := fare.Config{
		Currency:           cfg.Fare.Currency,
		BaseCharge:         cfg.Fare.BaseCharge,
		PerMile:            cfg.Fare.PerMile,
		PassengerThreshold: cfg.Fare.PassengerThreshold,
		PassengerSurcharge: cfg.Fare.PassengerSurcharge,
	}
	tripCfg := trip.DefaultConfig()
	tripCfg.Country = cfg.Service.Country
	tripCfg.DefaultCity = cfg.Service.DefaultCity
	tripCfg.MaxTripMiles = cfg.Service.MaxTripMiles
	tripResolver := trip.NewResolver(geocoder, provider, fareCfg, tripCfg)

	var primary ai.Extractor
	if cfg.AI.GeminiKey != "" {
		gem, err := ai.NewGeminiExtractor(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer gem.Close()
		primary = gem
	} else {
		log.Print("GEMINI_API_KEY not set; extraction runs on rules alone")
	}
	extract := ai.NewService(primary, ai.NewRuleExtractor())

	var store booking.Store = booking.NewMemoryStore()
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		store = booking.NewPostgresStore(dbPool)
	} else {
		log.Print("DISPATCH_DB_DSN not set; bookings held in memory")
	}

	server := httptransport.NewServer(httptransport.ServerDeps{
		Trip:     tripResolver,
		Extract:  extract,
		Nearby:   nearby.NewService(provider),
		Bookings: booking.NewService(store),
	})

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: server.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("dispatch-api listening on %s", cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
