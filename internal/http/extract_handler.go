package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/ai"
	"dispatch/internal/phone"
)

type extractReq struct {
	Transcript  string           `json:"transcript"`
	Mode        string           `json:"mode"` // "new" (default) or "update"
	Existing    *ai.BookingSlots `json:"existing_booking"`
	CallerPhone string           `json:"caller_phone"`
	// ReferenceTime is RFC3339; defaults to now. Tests and replayed calls
	// pass it explicitly so relative phrases stay deterministic.
	ReferenceTime string `json:"reference_time"`
}

type extractResp struct {
	Slots    *ai.BookingSlots `json:"slots"`
	CityHint string           `json:"city_hint,omitempty"`
}

func (s *Server) handleExtract(c *gin.Context) {
	var req extractReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Transcript == "" {
		writeError(c, http.StatusBadRequest, "transcript required")
		return
	}

	mode := ai.ModeNew
	switch req.Mode {
	case "", string(ai.ModeNew):
	case string(ai.ModeUpdate):
		mode = ai.ModeUpdate
	default:
		writeError(c, http.StatusBadRequest, "mode must be \"new\" or \"update\"")
		return
	}

	refTime := time.Now()
	if req.ReferenceTime != "" {
		t, err := time.Parse(time.RFC3339, req.ReferenceTime)
		if err != nil {
			writeError(c, http.StatusBadRequest, "reference_time must be RFC3339")
			return
		}
		refTime = t
	}

	var hint string
	if req.CallerPhone != "" {
		hint = phone.Classify(req.CallerPhone).City
	}

	slots, err := s.extract.Extract(c.Request.Context(), ai.Request{
		Transcript:    req.Transcript,
		Mode:          mode,
		Existing:      req.Existing,
		ReferenceTime: refTime,
		CityHint:      hint,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "extraction failed")
		return
	}
	writeJSON(c, http.StatusOK, extractResp{Slots: slots, CityHint: hint})
}
