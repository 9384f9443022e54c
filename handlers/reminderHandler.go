package handlers

import (
	"ClinicQueue/services"
	"time"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	service *services.ReminderService
}

func NewReminderHandler(service *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{service: service}
}

// RunSweep performs one reminder sweep. Meant to be hit by an external
// scheduler every few minutes.
func (h *ReminderHandler) RunSweep(c *gin.Context) {
	report, err := h.service.Run(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, report)
}
