package handlers

import (
	"ClinicQueue/services"
	"time"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	service *services.AppointmentService
}

func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// GetQueue returns today's queue in scheduled order, no-shows excluded.
func (h *AppointmentHandler) GetQueue(c *gin.Context) {
	queue, err := h.service.Queue(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, queue)
}

// ListAppointments returns appointments in the [start, end) query range.
// Both bounds are RFC 3339; they default to today.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	now := time.Now()
	start := now.Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid start time"})
			return
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid end time"})
			return
		}
		end = parsed
	}

	appointments, err := h.service.ListByRange(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, appointments)
}

func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment, err := h.service.GetByID(c.Request.Context(), c.Param("appointment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, appointment)
}

// CheckIn marks a booked appointment as arrived.
func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	appointment, err := h.service.CheckIn(c.Request.Context(), c.Param("appointment_id"), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, appointment)
}

// StartConsultation moves an arrived appointment into consultation.
func (h *AppointmentHandler) StartConsultation(c *gin.Context) {
	appointment, err := h.service.StartConsultation(c.Request.Context(), c.Param("appointment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, appointment)
}

// EndConsultation completes the active consultation.
func (h *AppointmentHandler) EndConsultation(c *gin.Context) {
	appointment, err := h.service.EndConsultation(c.Request.Context(), c.Param("appointment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, appointment)
}

// MarkNoShow marks a waiting appointment as a no-show.
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	appointment, err := h.service.MarkNoShow(c.Request.Context(), c.Param("appointment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, appointment)
}

// MarkLate flags a booked appointment as running late.
func (h *AppointmentHandler) MarkLate(c *gin.Context) {
	appointment, err := h.service.MarkLate(c.Request.Context(), c.Param("appointment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, appointment)
}

// EnsurePatient resolves or creates the patient linked to an appointment.
func (h *AppointmentHandler) EnsurePatient(c *gin.Context) {
	patientID, err := h.service.EnsurePatient(c.Request.Context(), c.Param("appointment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"patient_id": patientID})
}
