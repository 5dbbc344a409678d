// internal/repository/combat.go
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
	"directorassist/internal/database"
	"directorassist/internal/models"
)

// ChangeListener est notifié après chaque écriture réussie d'une session.
// Le listener reçoit la copie à jour de la session écrite, ou nil pour une
// suppression.
type ChangeListener func(session *models.CombatSession)

// CombatRepositoryInterface définit les méthodes du repository combat
type CombatRepositoryInterface interface {
	CreateSession(session *models.CombatSession) error
	GetSessionByID(id uuid.UUID) (*models.CombatSession, error)
	GetAllSessions() ([]*models.CombatSession, error)
	GetActiveSessions() ([]*models.CombatSession, error)
	UpdateSession(session *models.CombatSession) error
	DeleteSession(id uuid.UUID) error

	// Mutate charge une session, applique la mutation et réécrit
	// l'enregistrement complet; la copie retournée reflète l'état persisté
	Mutate(id uuid.UUID, mutate func(*models.CombatSession) error) (*models.CombatSession, error)

	// Subscribe enregistre un listener notifié après chaque écriture
	Subscribe(listener ChangeListener)
}

// CombatRepository implémente l'interface CombatRepositoryInterface
type CombatRepository struct {
	db *database.DB

	mu        sync.RWMutex
	listeners []ChangeListener
}

// NewCombatRepository crée une nouvelle instance du repository combat
func NewCombatRepository(db *database.DB) CombatRepositoryInterface {
	return &CombatRepository{db: db}
}

// Subscribe enregistre un listener de changements
func (r *CombatRepository) Subscribe(listener ChangeListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// notify pousse l'état écrit à tous les abonnés
func (r *CombatRepository) notify(session *models.CombatSession) {
	r.mu.RLock()
	listeners := make([]ChangeListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	for _, listener := range listeners {
		listener(session)
	}
}

// CreateSession crée une nouvelle session de combat
func (r *CombatRepository) CreateSession(session *models.CombatSession) error {
	combatantsJSON, groupsJSON, logJSON, err := marshalSessionCollections(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO combat_sessions (
			id, name, description, status, current_round, current_turn,
			victory_points, hero_points, combatants, groups, log,
			created_at, updated_at
		) VALUES (
			:id, :name, :description, :status, :current_round, :current_turn,
			:victory_points, :hero_points, :combatants, :groups, :log,
			:created_at, :updated_at
		)`

	data := map[string]interface{}{
		"id":             session.ID,
		"name":           session.Name,
		"description":    session.Description,
		"status":         session.Status,
		"current_round":  session.CurrentRound,
		"current_turn":   session.CurrentTurn,
		"victory_points": session.VictoryPoints,
		"hero_points":    session.HeroPoints,
		"combatants":     combatantsJSON,
		"groups":         groupsJSON,
		"log":            logJSON,
		"created_at":     session.CreatedAt,
		"updated_at":     session.UpdatedAt,
	}

	_, err = r.db.NamedExec(query, data)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to create combat session", err)
	}

	r.notify(session)
	return nil
}

// GetSessionByID récupère une session par son ID
func (r *CombatRepository) GetSessionByID(id uuid.UUID) (*models.CombatSession, error) {
	query := `
		SELECT id, name, description, status, current_round, current_turn,
		       victory_points, hero_points, combatants, groups, log,
		       created_at, updated_at
		FROM combat_sessions
		WHERE id = $1`

	session, err := scanSession(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Newf(apperrors.KindNotFound, "combat session %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to get combat session", err)
	}

	return session, nil
}

// GetAllSessions récupère toutes les sessions, les plus récentes en premier
func (r *CombatRepository) GetAllSessions() ([]*models.CombatSession, error) {
	query := `
		SELECT id, name, description, status, current_round, current_turn,
		       victory_points, hero_points, combatants, groups, log,
		       created_at, updated_at
		FROM combat_sessions
		ORDER BY created_at DESC`

	return r.querySessions(query)
}

// GetActiveSessions récupère les sessions en cours de jeu
func (r *CombatRepository) GetActiveSessions() ([]*models.CombatSession, error) {
	query := `
		SELECT id, name, description, status, current_round, current_turn,
		       victory_points, hero_points, combatants, groups, log,
		       created_at, updated_at
		FROM combat_sessions
		WHERE status IN ('active', 'paused')
		ORDER BY created_at DESC`

	return r.querySessions(query)
}

func (r *CombatRepository) querySessions(query string, args ...interface{}) ([]*models.CombatSession, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to query combat sessions", err)
	}
	defer rows.Close()

	var sessions []*models.CombatSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to scan combat session", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to iterate combat sessions", err)
	}

	return sessions, nil
}

// UpdateSession réécrit l'enregistrement complet d'une session
func (r *CombatRepository) UpdateSession(session *models.CombatSession) error {
	combatantsJSON, groupsJSON, logJSON, err := marshalSessionCollections(session)
	if err != nil {
		return err
	}

	session.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE combat_sessions SET
			name = :name,
			description = :description,
			status = :status,
			current_round = :current_round,
			current_turn = :current_turn,
			victory_points = :victory_points,
			hero_points = :hero_points,
			combatants = :combatants,
			groups = :groups,
			log = :log,
			updated_at = :updated_at
		WHERE id = :id`

	data := map[string]interface{}{
		"id":             session.ID,
		"name":           session.Name,
		"description":    session.Description,
		"status":         session.Status,
		"current_round":  session.CurrentRound,
		"current_turn":   session.CurrentTurn,
		"victory_points": session.VictoryPoints,
		"hero_points":    session.HeroPoints,
		"combatants":     combatantsJSON,
		"groups":         groupsJSON,
		"log":            logJSON,
		"updated_at":     session.UpdatedAt,
	}

	result, err := r.db.NamedExec(query, data)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to update combat session", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to check update result", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "combat session %s not found", session.ID)
	}

	r.notify(session)
	return nil
}

// DeleteSession supprime une session
func (r *CombatRepository) DeleteSession(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM combat_sessions WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to delete combat session", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to check delete result", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "combat session %s not found", id)
	}

	r.notify(nil)
	return nil
}

// Mutate charge une session, applique la mutation et persiste le résultat.
// La session retournée est la copie écrite, jamais l'état intermédiaire.
func (r *CombatRepository) Mutate(id uuid.UUID, mutate func(*models.CombatSession) error) (*models.CombatSession, error) {
	session, err := r.GetSessionByID(id)
	if err != nil {
		return nil, err
	}

	if err := mutate(session); err != nil {
		return nil, err
	}

	if err := r.UpdateSession(session); err != nil {
		return nil, err
	}

	return session, nil
}

// rowScanner couvre sql.Row et sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.CombatSession, error) {
	var session models.CombatSession
	var combatantsJSON, groupsJSON, logJSON []byte

	err := row.Scan(
		&session.ID, &session.Name, &session.Description, &session.Status,
		&session.CurrentRound, &session.CurrentTurn,
		&session.VictoryPoints, &session.HeroPoints,
		&combatantsJSON, &groupsJSON, &logJSON,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(combatantsJSON, &session.Combatants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal combatants: %w", err)
	}
	if err := json.Unmarshal(groupsJSON, &session.Groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}
	if err := json.Unmarshal(logJSON, &session.Log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal log: %w", err)
	}

	if session.Combatants == nil {
		session.Combatants = []models.Combatant{}
	}
	if session.Log == nil {
		session.Log = []models.LogEntry{}
	}

	return &session, nil
}

func marshalSessionCollections(session *models.CombatSession) (combatants, groups, log []byte, err error) {
	combatants, err = json.Marshal(session.Combatants)
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(apperrors.KindPersistence, "failed to marshal combatants", err)
	}

	sessionGroups := session.Groups
	if sessionGroups == nil {
		sessionGroups = map[string][]uuid.UUID{}
	}
	groups, err = json.Marshal(sessionGroups)
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(apperrors.KindPersistence, "failed to marshal groups", err)
	}

	log, err = json.Marshal(session.Log)
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(apperrors.KindPersistence, "failed to marshal combat log", err)
	}

	return combatants, groups, log, nil
}
