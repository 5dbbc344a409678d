// internal/handler/chat.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"directorassist/internal/models"
	"directorassist/internal/repository"
)

// ChatHandler gère les endpoints de l'historique de conversation
type ChatHandler struct {
	chatRepo repository.ChatRepositoryInterface
}

// NewChatHandler crée une nouvelle instance du handler de l'historique
func NewChatHandler(chatRepo repository.ChatRepositoryInterface) *ChatHandler {
	return &ChatHandler{
		chatRepo: chatRepo,
	}
}

// CreateMessage enregistre un message d'historique
func (h *ChatHandler) CreateMessage(c *gin.Context) {
	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	message, err := models.NewChatMessage(req.Role, req.Content, req.Model)
	if err != nil {
		respondError(c, "Failed to create chat message", err)
		return
	}

	if err := h.chatRepo.CreateMessage(message); err != nil {
		respondError(c, "Failed to create chat message", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    message,
		"request_id": requestID(c),
	})
}

// ListMessages retourne l'historique complet
func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.chatRepo.GetAllMessages()
	if err != nil {
		respondError(c, "Failed to load chat history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":   messages,
		"total":      len(messages),
		"request_id": requestID(c),
	})
}

// GetMessage retourne un message par son ID
func (h *ChatHandler) GetMessage(c *gin.Context) {
	messageID, ok := parseUUIDParam(c, "messageId")
	if !ok {
		return
	}

	message, err := h.chatRepo.GetMessageByID(messageID)
	if err != nil {
		respondError(c, "Failed to get chat message", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"request_id": requestID(c),
	})
}

// DeleteMessage supprime un message de l'historique
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseUUIDParam(c, "messageId")
	if !ok {
		return
	}

	if err := h.chatRepo.DeleteMessage(messageID); err != nil {
		respondError(c, "Failed to delete chat message", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Chat message deleted successfully",
		"request_id": requestID(c),
	})
}

// ClearHistory vide l'historique de conversation
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	if err := h.chatRepo.ClearHistory(); err != nil {
		respondError(c, "Failed to clear chat history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Chat history cleared",
		"request_id": requestID(c),
	})
}
