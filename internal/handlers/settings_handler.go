package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegetransit/bus-pass-backend/internal/models"
	"github.com/collegetransit/bus-pass-backend/internal/services"
)

// SettingsHandler handles the admin settings endpoints
type SettingsHandler struct {
	settingsService *services.SettingsService
	logger          logrus.FieldLogger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *services.SettingsService, logger logrus.FieldLogger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, logger: logger}
}

// GetSettings handles GET /admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get admin settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PATCH /admin/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.settingsService.Update(c.Request.Context(), &req); err != nil {
		if strings.Contains(err.Error(), "invalid goDate") || strings.Contains(err.Error(), "invalid returnDate") ||
			strings.Contains(err.Error(), "cannot be negative") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to update admin settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
