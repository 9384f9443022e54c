package handlers

import (
	"ClinicQueue/services"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

type SettingHandler struct {
	service *services.SettingService
}

func NewSettingHandler(service *services.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

// GetSetting returns the JSON document stored under a settings key.
func (h *SettingHandler) GetSetting(c *gin.Context) {
	value, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"setting_key": c.Param("key"), "setting_value": json.RawMessage(value)})
}

// UpdateSetting replaces the JSON document stored under a settings key.
func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		SettingValue json.RawMessage `json:"setting_value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.SettingValue) == 0 {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.Update(c.Request.Context(), c.Param("key"), string(req.SettingValue)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(200)
}
