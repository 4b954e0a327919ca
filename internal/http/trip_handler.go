package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/geo"
	"dispatch/internal/phone"
	"dispatch/internal/trip"
)

type tripResolveReq struct {
	PickupInput    string     `json:"pickup_input"`
	DropoffInput   string     `json:"dropoff_input"`
	CallerPhone    string     `json:"caller_phone"`
	CallerCityHint string     `json:"caller_city_hint"`
	CallerCoords   *geo.Point `json:"caller_coords"`
	Passengers     int        `json:"passengers"`
}

func (s *Server) handleTripResolve(c *gin.Context) {
	var req tripResolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.PickupInput == "" && req.DropoffInput == "" {
		writeError(c, http.StatusBadRequest, "pickup_input or dropoff_input required")
		return
	}

	hint := req.CallerCityHint
	if hint == "" && req.CallerPhone != "" {
		// Landline area codes are the cheapest geographic prior we have.
		hint = phone.Classify(req.CallerPhone).City
	}

	var coords geo.Point
	if req.CallerCoords != nil {
		coords = *req.CallerCoords
	}

	res := s.trip.Resolve(c.Request.Context(), trip.Request{
		PickupText:   req.PickupInput,
		DropoffText:  req.DropoffInput,
		CityHint:     hint,
		CallerCoords: coords,
		Passengers:   req.Passengers,
	})
	writeJSON(c, http.StatusOK, res)
}
