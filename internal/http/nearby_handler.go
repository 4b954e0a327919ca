package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/geo"
	"dispatch/internal/nearby"
	"dispatch/internal/trip"
)

type nearbyReq struct {
	Query    string     `json:"query"`
	Coords   *geo.Point `json:"coords"`
	CityHint string     `json:"city_hint"`
}

func (s *Server) handleNearby(c *gin.Context) {
	var req nearbyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Query == "" {
		writeError(c, http.StatusBadRequest, "query required")
		return
	}

	var around geo.Point
	if req.Coords != nil {
		around = *req.Coords
	} else if city, ok := trip.FindCity(req.CityHint); ok {
		around = city.Center
	}

	places, err := s.nearby.Search(c.Request.Context(), req.Query, around)
	if err != nil {
		if errors.Is(err, nearby.ErrNoLocation) {
			writeError(c, http.StatusBadRequest, "coords or a known city_hint required")
			return
		}
		writeError(c, http.StatusBadGateway, "nearby search failed")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"places": places})
}
