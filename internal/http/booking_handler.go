package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/ai"
	"dispatch/internal/trip"
)

type createBookingReq struct {
	Phone string           `json:"phone"`
	Slots *ai.BookingSlots `json:"slots"`
	// Trip carries the resolution the caller already ran for these slots,
	// stored on the booking as a snapshot.
	Trip *trip.Resolution `json:"trip"`
}

func (s *Server) handleCreateBooking(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := s.bookings.Create(c.Request.Context(), req.Phone, req.Slots, req.Trip)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (s *Server) handleGetBooking(c *gin.Context) {
	b, err := s.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (s *Server) handleActiveBooking(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		writeError(c, http.StatusBadRequest, "phone required")
		return
	}
	b, err := s.bookings.ActiveByPhone(c.Request.Context(), phone)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (s *Server) handleUpdateBooking(c *gin.Context) {
	var slots ai.BookingSlots
	if err := c.ShouldBindJSON(&slots); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := s.bookings.ApplyUpdate(c.Request.Context(), c.Param("id"), &slots)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (s *Server) handleConfirmBooking(c *gin.Context) {
	b, err := s.bookings.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (s *Server) handleCompleteBooking(c *gin.Context) {
	b, err := s.bookings.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (s *Server) handleCancelBooking(c *gin.Context) {
	b, err := s.bookings.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}
