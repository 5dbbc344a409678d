// internal/handler/ai.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"directorassist/internal/ai"
	"directorassist/internal/models"
	"directorassist/internal/monitoring"
	"directorassist/internal/repository"
)

// AIHandler gère les endpoints de génération IA
type AIHandler struct {
	registry     *ai.Registry
	chatRepo     repository.ChatRepositoryInterface
	settingsRepo repository.SettingsRepositoryInterface
	timeout      time.Duration
}

// NewAIHandler crée une nouvelle instance du handler IA
func NewAIHandler(
	registry *ai.Registry,
	chatRepo repository.ChatRepositoryInterface,
	settingsRepo repository.SettingsRepositoryInterface,
	timeout time.Duration,
) *AIHandler {
	return &AIHandler{
		registry:     registry,
		chatRepo:     chatRepo,
		settingsRepo: settingsRepo,
		timeout:      timeout,
	}
}

// Generate produit une complétion de texte et archive l'échange.
// Le modèle est résolu dans l'ordre: demande, réglage persistant, défaut.
func (h *AIHandler) Generate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	model := req.Model
	if model == "" {
		selected, err := h.settingsRepo.Get(models.SettingSelectedModel)
		if err != nil {
			respondError(c, "Failed to resolve selected model", err)
			return
		}
		model = selected
	}
	if model == "" {
		model = h.registry.DefaultModel()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	text, provider, err := h.registry.Generate(ctx, model, req.System, req.Prompt)
	if err != nil {
		monitoring.AIGenerationsTotal.WithLabelValues(provider, "error").Inc()
		respondError(c, "Failed to generate text", err)
		return
	}
	monitoring.AIGenerationsTotal.WithLabelValues(provider, "success").Inc()

	// Archivage de l'échange dans l'historique
	if userMsg, err := models.NewChatMessage(models.ChatRoleUser, req.Prompt, model); err == nil {
		_ = h.chatRepo.CreateMessage(userMsg)
	}
	if assistantMsg, err := models.NewChatMessage(models.ChatRoleAssistant, text, model); err == nil {
		_ = h.chatRepo.CreateMessage(assistantMsg)
	}

	c.JSON(http.StatusOK, gin.H{
		"text":       text,
		"model":      model,
		"provider":   provider,
		"request_id": requestID(c),
	})
}
