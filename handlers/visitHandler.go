package handlers

import (
	"ClinicQueue/services"
	"time"

	"github.com/gin-gonic/gin"
)

type VisitHandler struct {
	service *services.VisitService
}

func NewVisitHandler(service *services.VisitService) *VisitHandler {
	return &VisitHandler{service: service}
}

// SaveConsultation writes the consultation record and its prescriptions for
// a patient in one transaction.
func (h *VisitHandler) SaveConsultation(c *gin.Context) {
	var data services.ConsultationData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	visit, err := h.service.SaveConsultation(c.Request.Context(), c.Param("patient_id"), data, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, visit)
}

// GetVisitHistory returns a patient's visits, newest first.
func (h *VisitHandler) GetVisitHistory(c *gin.Context) {
	visits, err := h.service.ListByPatient(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, visits)
}
