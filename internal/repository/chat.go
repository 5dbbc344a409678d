// internal/repository/chat.go
package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
	"directorassist/internal/database"
	"directorassist/internal/models"
)

// ChatRepositoryInterface définit les méthodes du repository de l'historique
type ChatRepositoryInterface interface {
	CreateMessage(message *models.ChatMessage) error
	GetMessageByID(id uuid.UUID) (*models.ChatMessage, error)
	GetAllMessages() ([]*models.ChatMessage, error)
	DeleteMessage(id uuid.UUID) error
	ClearHistory() error
}

// ChatRepository implémente l'interface ChatRepositoryInterface
type ChatRepository struct {
	db *database.DB
}

// NewChatRepository crée une nouvelle instance du repository de l'historique
func NewChatRepository(db *database.DB) ChatRepositoryInterface {
	return &ChatRepository{db: db}
}

// CreateMessage enregistre un message d'historique
func (r *ChatRepository) CreateMessage(message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, role, content, model, created_at)
		VALUES (:id, :role, :content, :model, :created_at)`

	data := map[string]interface{}{
		"id":         message.ID,
		"role":       message.Role,
		"content":    message.Content,
		"model":      message.Model,
		"created_at": message.CreatedAt,
	}

	if _, err := r.db.NamedExec(query, data); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to create chat message", err)
	}

	return nil
}

// GetMessageByID récupère un message par son ID
func (r *ChatRepository) GetMessageByID(id uuid.UUID) (*models.ChatMessage, error) {
	var message models.ChatMessage

	query := `
		SELECT id, role, content, model, created_at
		FROM chat_messages
		WHERE id = $1`

	err := r.db.Get(&message, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Newf(apperrors.KindNotFound, "chat message %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to get chat message", err)
	}

	return &message, nil
}

// GetAllMessages récupère l'historique complet par ordre chronologique
func (r *ChatRepository) GetAllMessages() ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage

	query := `
		SELECT id, role, content, model, created_at
		FROM chat_messages
		ORDER BY created_at`

	if err := r.db.Select(&messages, query); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to query chat messages", err)
	}

	return messages, nil
}

// DeleteMessage supprime un message de l'historique
func (r *ChatRepository) DeleteMessage(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM chat_messages WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to delete chat message", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to check delete result", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "chat message %s not found", id)
	}

	return nil
}

// ClearHistory vide l'historique de conversation
func (r *ChatRepository) ClearHistory() error {
	if _, err := r.db.Exec(`DELETE FROM chat_messages`); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to clear chat history", err)
	}
	return nil
}
