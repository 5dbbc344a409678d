// internal/models/chat.go
package models

import (
	"time"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
)

// ChatRole définit les rôles des messages de conversation
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
)

// ChatMessage représente un message de l'historique de conversation IA
type ChatMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Role      ChatRole  `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	Model     string    `json:"model,omitempty" db:"model"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewChatMessage crée un message d'historique validé
func NewChatMessage(role ChatRole, content, model string) (*ChatMessage, error) {
	switch role {
	case ChatRoleUser, ChatRoleAssistant, ChatRoleSystem:
	default:
		return nil, apperrors.Newf(apperrors.KindValidation, "invalid chat role %q", role)
	}
	if content == "" {
		return nil, apperrors.New(apperrors.KindValidation, "chat message content is required")
	}
	return &ChatMessage{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}, nil
}
