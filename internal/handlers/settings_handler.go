package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Show returns the current reminder settings
func (h *SettingsHandler) Show(c *gin.Context) {
	settings := h.settingsService.Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Update applies a partial settings update. Omitted fields keep their value.
func (h *SettingsHandler) Update(c *gin.Context) {
	var patch models.ReminderSettingsPatch
	if err := BindNestedOrFlat(c, "settings", &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), &patch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
