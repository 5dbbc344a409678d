// internal/models/montage.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
)

// MontageStatus définit les statuts d'une session de montage
type MontageStatus string

const (
	MontageStatusActive    MontageStatus = "active"
	MontageStatusCompleted MontageStatus = "completed"
)

// MontageOutcome qualifie le résultat d'un montage terminé
type MontageOutcome string

const (
	MontageOutcomeTotalSuccess   MontageOutcome = "total_success"
	MontageOutcomePartialSuccess MontageOutcome = "partial_success"
	MontageOutcomeFailure        MontageOutcome = "failure"
)

// MontageLogEntry représente une entrée du journal de montage
type MontageLogEntry struct {
	ID        uuid.UUID `json:"id"`
	Round     int       `json:"round"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// MontageSession représente un défi de groupe résolu en rounds de tests.
// Le montage se termine dès que le seuil de succès ou d'échecs est atteint,
// ou manuellement par le directeur.
type MontageSession struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	Description  string         `json:"description,omitempty" db:"description"`
	Status       MontageStatus  `json:"status" db:"status"`
	Outcome      MontageOutcome `json:"outcome,omitempty" db:"outcome"`
	CurrentRound int            `json:"current_round" db:"current_round"`
	MaxRounds    int            `json:"max_rounds" db:"max_rounds"`
	Successes    int            `json:"successes" db:"successes"`
	Failures     int            `json:"failures" db:"failures"`
	SuccessLimit int            `json:"success_limit" db:"success_limit"`
	FailureLimit int            `json:"failure_limit" db:"failure_limit"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`

	Log []MontageLogEntry `json:"log" db:"-"`
}

// NewMontageSession crée une session de montage active au round 1
func NewMontageSession(name, description string, successLimit, failureLimit, maxRounds int) (*MontageSession, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "montage name is required")
	}
	if successLimit <= 0 || failureLimit <= 0 {
		return nil, apperrors.New(apperrors.KindValidation, "montage limits must be positive")
	}
	if maxRounds <= 0 {
		maxRounds = 2
	}
	now := time.Now().UTC()
	m := &MontageSession{
		ID:           uuid.New(),
		Name:         name,
		Description:  description,
		Status:       MontageStatusActive,
		CurrentRound: 1,
		MaxRounds:    maxRounds,
		SuccessLimit: successLimit,
		FailureLimit: failureLimit,
		Log:          []MontageLogEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.appendLog("Montage started")
	return m, nil
}

// RecordSuccess enregistre un test réussi
func (m *MontageSession) RecordSuccess(description string) error {
	if m.Status != MontageStatusActive {
		return apperrors.New(apperrors.KindConflict, "montage is not active")
	}
	m.Successes++
	message := fmt.Sprintf("Success recorded (%d/%d)", m.Successes, m.SuccessLimit)
	if description != "" {
		message = fmt.Sprintf("Success: %s (%d/%d)", description, m.Successes, m.SuccessLimit)
	}
	m.appendLog(message)
	m.checkResolution()
	return nil
}

// RecordFailure enregistre un test raté
func (m *MontageSession) RecordFailure(description string) error {
	if m.Status != MontageStatusActive {
		return apperrors.New(apperrors.KindConflict, "montage is not active")
	}
	m.Failures++
	message := fmt.Sprintf("Failure recorded (%d/%d)", m.Failures, m.FailureLimit)
	if description != "" {
		message = fmt.Sprintf("Failure: %s (%d/%d)", description, m.Failures, m.FailureLimit)
	}
	m.appendLog(message)
	m.checkResolution()
	return nil
}

// AdvanceRound passe au round suivant; le montage se résout au-delà du dernier round
func (m *MontageSession) AdvanceRound() error {
	if m.Status != MontageStatusActive {
		return apperrors.New(apperrors.KindConflict, "montage is not active")
	}
	if m.CurrentRound >= m.MaxRounds {
		m.resolve()
		return nil
	}
	m.CurrentRound++
	m.appendLog(fmt.Sprintf("Round %d begins", m.CurrentRound))
	return nil
}

// Complete termine le montage avec un résultat explicite
func (m *MontageSession) Complete(outcome MontageOutcome) error {
	if m.Status != MontageStatusActive {
		return apperrors.New(apperrors.KindConflict, "montage is not active")
	}
	switch outcome {
	case MontageOutcomeTotalSuccess, MontageOutcomePartialSuccess, MontageOutcomeFailure:
	default:
		return apperrors.Newf(apperrors.KindValidation, "invalid montage outcome %q", outcome)
	}
	m.Status = MontageStatusCompleted
	m.Outcome = outcome
	m.appendLog(fmt.Sprintf("Montage completed: %s", outcome))
	return nil
}

// Reopen rouvre un montage terminé
func (m *MontageSession) Reopen() error {
	if m.Status != MontageStatusCompleted {
		return apperrors.New(apperrors.KindConflict, "montage is not completed")
	}
	m.Status = MontageStatusActive
	m.Outcome = ""
	m.appendLog("Montage reopened")
	return nil
}

// checkResolution termine automatiquement le montage si un seuil est atteint
func (m *MontageSession) checkResolution() {
	if m.Successes >= m.SuccessLimit {
		m.Status = MontageStatusCompleted
		m.Outcome = MontageOutcomeTotalSuccess
		m.appendLog("Montage completed: total success")
		return
	}
	if m.Failures >= m.FailureLimit {
		m.Status = MontageStatusCompleted
		m.Outcome = MontageOutcomeFailure
		m.appendLog("Montage completed: failure")
	}
}

// resolve qualifie le résultat quand les rounds sont épuisés
func (m *MontageSession) resolve() {
	m.Status = MontageStatusCompleted
	switch {
	case m.Successes >= m.SuccessLimit:
		m.Outcome = MontageOutcomeTotalSuccess
	case m.Successes > m.Failures:
		m.Outcome = MontageOutcomePartialSuccess
	default:
		m.Outcome = MontageOutcomeFailure
	}
	m.appendLog(fmt.Sprintf("Montage completed: %s", m.Outcome))
}

func (m *MontageSession) appendLog(message string) {
	m.Log = append(m.Log, MontageLogEntry{
		ID:        uuid.New(),
		Round:     m.CurrentRound,
		Timestamp: time.Now().UTC(),
		Message:   message,
	})
}
