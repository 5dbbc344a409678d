// internal/handler/settings.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"directorassist/internal/models"
	"directorassist/internal/repository"
)

// SettingsHandler gère les endpoints des réglages
type SettingsHandler struct {
	settingsRepo repository.SettingsRepositoryInterface
}

// NewSettingsHandler crée une nouvelle instance du handler des réglages
func NewSettingsHandler(settingsRepo repository.SettingsRepositoryInterface) *SettingsHandler {
	return &SettingsHandler{
		settingsRepo: settingsRepo,
	}
}

// ListSettings retourne tous les réglages
func (h *SettingsHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingsRepo.GetAll()
	if err != nil {
		respondError(c, "Failed to load settings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings":   settings,
		"request_id": requestID(c),
	})
}

// GetSetting retourne la valeur d'un réglage
func (h *SettingsHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")

	value, err := h.settingsRepo.Get(key)
	if err != nil {
		respondError(c, "Failed to get setting", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":        key,
		"value":      value,
		"request_id": requestID(c),
	})
}

// SetSetting écrit un réglage
func (h *SettingsHandler) SetSetting(c *gin.Context) {
	key := c.Param("key")

	var req models.SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.settingsRepo.Set(key, req.Value); err != nil {
		respondError(c, "Failed to set setting", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":        key,
		"value":      req.Value,
		"request_id": requestID(c),
	})
}

// DeleteSetting supprime un réglage
func (h *SettingsHandler) DeleteSetting(c *gin.Context) {
	key := c.Param("key")

	if err := h.settingsRepo.Delete(key); err != nil {
		respondError(c, "Failed to delete setting", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":        key,
		"message":    "Setting deleted",
		"request_id": requestID(c),
	})
}
