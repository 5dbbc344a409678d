// internal/repository/montage.go
package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
	"directorassist/internal/database"
	"directorassist/internal/models"
)

// MontageRepositoryInterface définit les méthodes du repository montage
type MontageRepositoryInterface interface {
	CreateMontage(montage *models.MontageSession) error
	GetMontageByID(id uuid.UUID) (*models.MontageSession, error)
	GetAllMontages() ([]*models.MontageSession, error)
	UpdateMontage(montage *models.MontageSession) error
	DeleteMontage(id uuid.UUID) error

	// Mutate charge un montage, applique la mutation et réécrit
	// l'enregistrement complet
	Mutate(id uuid.UUID, mutate func(*models.MontageSession) error) (*models.MontageSession, error)
}

// MontageRepository implémente l'interface MontageRepositoryInterface
type MontageRepository struct {
	db *database.DB
}

// NewMontageRepository crée une nouvelle instance du repository montage
func NewMontageRepository(db *database.DB) MontageRepositoryInterface {
	return &MontageRepository{db: db}
}

// CreateMontage crée une nouvelle session de montage
func (r *MontageRepository) CreateMontage(montage *models.MontageSession) error {
	logJSON, err := json.Marshal(montage.Log)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to marshal montage log", err)
	}

	query := `
		INSERT INTO montage_sessions (
			id, name, description, status, outcome, current_round, max_rounds,
			successes, failures, success_limit, failure_limit, log,
			created_at, updated_at
		) VALUES (
			:id, :name, :description, :status, :outcome, :current_round, :max_rounds,
			:successes, :failures, :success_limit, :failure_limit, :log,
			:created_at, :updated_at
		)`

	data := map[string]interface{}{
		"id":            montage.ID,
		"name":          montage.Name,
		"description":   montage.Description,
		"status":        montage.Status,
		"outcome":       montage.Outcome,
		"current_round": montage.CurrentRound,
		"max_rounds":    montage.MaxRounds,
		"successes":     montage.Successes,
		"failures":      montage.Failures,
		"success_limit": montage.SuccessLimit,
		"failure_limit": montage.FailureLimit,
		"log":           logJSON,
		"created_at":    montage.CreatedAt,
		"updated_at":    montage.UpdatedAt,
	}

	if _, err := r.db.NamedExec(query, data); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to create montage session", err)
	}

	return nil
}

// GetMontageByID récupère une session de montage par son ID
func (r *MontageRepository) GetMontageByID(id uuid.UUID) (*models.MontageSession, error) {
	query := `
		SELECT id, name, description, status, outcome, current_round, max_rounds,
		       successes, failures, success_limit, failure_limit, log,
		       created_at, updated_at
		FROM montage_sessions
		WHERE id = $1`

	montage, err := scanMontage(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Newf(apperrors.KindNotFound, "montage session %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to get montage session", err)
	}

	return montage, nil
}

// GetAllMontages récupère toutes les sessions de montage
func (r *MontageRepository) GetAllMontages() ([]*models.MontageSession, error) {
	query := `
		SELECT id, name, description, status, outcome, current_round, max_rounds,
		       successes, failures, success_limit, failure_limit, log,
		       created_at, updated_at
		FROM montage_sessions
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to query montage sessions", err)
	}
	defer rows.Close()

	var montages []*models.MontageSession
	for rows.Next() {
		montage, err := scanMontage(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to scan montage session", err)
		}
		montages = append(montages, montage)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to iterate montage sessions", err)
	}

	return montages, nil
}

// UpdateMontage réécrit l'enregistrement complet d'une session de montage
func (r *MontageRepository) UpdateMontage(montage *models.MontageSession) error {
	logJSON, err := json.Marshal(montage.Log)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to marshal montage log", err)
	}

	montage.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE montage_sessions SET
			name = :name,
			description = :description,
			status = :status,
			outcome = :outcome,
			current_round = :current_round,
			max_rounds = :max_rounds,
			successes = :successes,
			failures = :failures,
			success_limit = :success_limit,
			failure_limit = :failure_limit,
			log = :log,
			updated_at = :updated_at
		WHERE id = :id`

	data := map[string]interface{}{
		"id":            montage.ID,
		"name":          montage.Name,
		"description":   montage.Description,
		"status":        montage.Status,
		"outcome":       montage.Outcome,
		"current_round": montage.CurrentRound,
		"max_rounds":    montage.MaxRounds,
		"successes":     montage.Successes,
		"failures":      montage.Failures,
		"success_limit": montage.SuccessLimit,
		"failure_limit": montage.FailureLimit,
		"log":           logJSON,
		"updated_at":    montage.UpdatedAt,
	}

	result, err := r.db.NamedExec(query, data)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to update montage session", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to check update result", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "montage session %s not found", montage.ID)
	}

	return nil
}

// DeleteMontage supprime une session de montage
func (r *MontageRepository) DeleteMontage(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM montage_sessions WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to delete montage session", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to check delete result", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "montage session %s not found", id)
	}

	return nil
}

// Mutate charge un montage, applique la mutation et persiste le résultat
func (r *MontageRepository) Mutate(id uuid.UUID, mutate func(*models.MontageSession) error) (*models.MontageSession, error) {
	montage, err := r.GetMontageByID(id)
	if err != nil {
		return nil, err
	}

	if err := mutate(montage); err != nil {
		return nil, err
	}

	if err := r.UpdateMontage(montage); err != nil {
		return nil, err
	}

	return montage, nil
}

func scanMontage(row rowScanner) (*models.MontageSession, error) {
	var montage models.MontageSession
	var logJSON []byte

	err := row.Scan(
		&montage.ID, &montage.Name, &montage.Description, &montage.Status,
		&montage.Outcome, &montage.CurrentRound, &montage.MaxRounds,
		&montage.Successes, &montage.Failures,
		&montage.SuccessLimit, &montage.FailureLimit, &logJSON,
		&montage.CreatedAt, &montage.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(logJSON, &montage.Log); err != nil {
		return nil, err
	}
	if montage.Log == nil {
		montage.Log = []models.MontageLogEntry{}
	}

	return &montage, nil
}
