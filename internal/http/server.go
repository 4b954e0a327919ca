package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/ai"
	"dispatch/internal/booking"
	"dispatch/internal/http/middleware"
	"dispatch/internal/nearby"
	"dispatch/internal/trip"
)

type ServerDeps struct {
	Trip     *trip.Resolver
	Extract  *ai.Service
	Nearby   *nearby.Service
	Bookings *booking.Service
}

type Server struct {
	trip     *trip.Resolver
	extract  *ai.Service
	nearby   *nearby.Service
	bookings *booking.Service
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		trip:     deps.Trip,
		extract:  deps.Extract,
		nearby:   deps.Nearby,
		bookings: deps.Bookings,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.POST("/api/trip/resolve", s.handleTripResolve)
	r.POST("/api/extract", s.handleExtract)
	r.POST("/api/nearby", s.handleNearby)

	r.POST("/api/bookings", s.handleCreateBooking)
	r.GET("/api/bookings/active", s.handleActiveBooking)
	r.GET("/api/bookings/:id", s.handleGetBooking)
	r.POST("/api/bookings/:id/update", s.handleUpdateBooking)
	r.POST("/api/bookings/:id/confirm", s.handleConfirmBooking)
	r.POST("/api/bookings/:id/complete", s.handleCompleteBooking)
	r.POST("/api/bookings/:id/cancel", s.handleCancelBooking)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
