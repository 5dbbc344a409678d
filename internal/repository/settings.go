// internal/repository/settings.go
package repository

import (
	"database/sql"
	"time"

	"directorassist/internal/apperrors"
	"directorassist/internal/database"
	"directorassist/internal/models"
)

// SettingsRepositoryInterface définit les méthodes du repository des réglages
type SettingsRepositoryInterface interface {
	Get(key string) (string, error)
	Set(key, value string) error
	GetAll() ([]*models.Setting, error)
	Delete(key string) error
}

// SettingsRepository implémente l'interface SettingsRepositoryInterface
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository crée une nouvelle instance du repository des réglages
func NewSettingsRepository(db *database.DB) SettingsRepositoryInterface {
	return &SettingsRepository{db: db}
}

// Get retourne la valeur d'un réglage; une clé absente retourne une chaîne vide
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string

	err := r.db.Get(&value, `SELECT value FROM settings WHERE key = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", apperrors.Wrap(apperrors.KindPersistence, "failed to get setting", err)
	}

	return value, nil
}

// Set écrit un réglage (upsert)
func (r *SettingsRepository) Set(key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3`

	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to set setting", err)
	}

	return nil
}

// GetAll retourne tous les réglages
func (r *SettingsRepository) GetAll() ([]*models.Setting, error) {
	var settings []*models.Setting

	query := `SELECT key, value, updated_at FROM settings ORDER BY key`
	if err := r.db.Select(&settings, query); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to query settings", err)
	}

	return settings, nil
}

// Delete supprime un réglage; une clé absente n'est pas une erreur
func (r *SettingsRepository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM settings WHERE key = $1`, key); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to delete setting", err)
	}
	return nil
}
