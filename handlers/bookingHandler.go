package handlers

import (
	"ClinicQueue/services"
	"time"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service *services.BookingService
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// GetAvailableSlots returns today's open 30-minute slots.
func (h *BookingHandler) GetAvailableSlots(c *gin.Context) {
	slots, err := h.service.AvailableSlots(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"available_slots": formatSlotList(slots)})
}

// CreateBooking books a same-day appointment.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), req, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, appointment)
}
