package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"directorassist/internal/apperrors"
	"directorassist/internal/models"
	"directorassist/internal/repository"
	"directorassist/internal/store"
)

// BackupServiceInterface définit les méthodes du service de sauvegarde
type BackupServiceInterface interface {
	Export() (*models.Backup, error)
	Import(raw []byte) (*models.ImportResponse, error)
}

// BackupService assemble et restaure le document d'export complet.
// L'import tolère les collections absentes (anciens formats) et ignore
// les enregistrements de session invalides en les signalant, sans jamais
// interrompre la restauration.
type BackupService struct {
	combatRepo   repository.CombatRepositoryInterface
	montageRepo  repository.MontageRepositoryInterface
	entityRepo   repository.EntityRepositoryInterface
	chatRepo     repository.ChatRepositoryInterface
	settingsRepo repository.SettingsRepositoryInterface
	combatStore  *store.CombatStore
}

// NewBackupService crée une nouvelle instance du service de sauvegarde
func NewBackupService(
	combatRepo repository.CombatRepositoryInterface,
	montageRepo repository.MontageRepositoryInterface,
	entityRepo repository.EntityRepositoryInterface,
	chatRepo repository.ChatRepositoryInterface,
	settingsRepo repository.SettingsRepositoryInterface,
	combatStore *store.CombatStore,
) BackupServiceInterface {
	return &BackupService{
		combatRepo:   combatRepo,
		montageRepo:  montageRepo,
		entityRepo:   entityRepo,
		chatRepo:     chatRepo,
		settingsRepo: settingsRepo,
		combatStore:  combatStore,
	}
}

// Export assemble le document de sauvegarde complet
func (s *BackupService) Export() (*models.Backup, error) {
	backup := &models.Backup{
		Version:         models.BackupVersion,
		ExportedAt:      time.Now().UTC(),
		Entities:        []models.Entity{},
		ChatHistory:     []models.ChatMessage{},
		CombatSessions:  []models.CombatSession{},
		MontageSessions: []models.MontageSession{},
	}

	entities, err := s.entityRepo.GetAllEntities()
	if err != nil {
		return nil, fmt.Errorf("failed to export entities: %w", err)
	}
	for _, entity := range entities {
		backup.Entities = append(backup.Entities, *entity)
	}

	messages, err := s.chatRepo.GetAllMessages()
	if err != nil {
		return nil, fmt.Errorf("failed to export chat history: %w", err)
	}
	for _, message := range messages {
		backup.ChatHistory = append(backup.ChatHistory, *message)
	}

	sessions, err := s.combatRepo.GetAllSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to export combat sessions: %w", err)
	}
	for _, session := range sessions {
		backup.CombatSessions = append(backup.CombatSessions, *session)
	}

	montages, err := s.montageRepo.GetAllMontages()
	if err != nil {
		return nil, fmt.Errorf("failed to export montage sessions: %w", err)
	}
	for _, montage := range montages {
		backup.MontageSessions = append(backup.MontageSessions, *montage)
	}

	backup.ActiveCampaignID, err = s.settingsRepo.Get(models.SettingActiveCampaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}
	backup.SelectedModel, err = s.settingsRepo.Get(models.SettingSelectedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}

	return backup, nil
}

// Import restaure un document de sauvegarde
func (s *BackupService) Import(raw []byte) (*models.ImportResponse, error) {
	var backup models.Backup
	if err := json.Unmarshal(raw, &backup); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid backup document", err)
	}

	report := &models.ImportResponse{
		Success:          true,
		Warnings:         []string{},
		ActiveCampaignID: backup.ActiveCampaignID,
		SelectedModel:    backup.SelectedModel,
	}

	for i := range backup.Entities {
		entity := backup.Entities[i]
		if entity.Name == "" || entity.Kind == "" {
			skipRecord(report, fmt.Sprintf("entity %d: missing name or kind", i))
			continue
		}
		if entity.Fields == nil {
			entity.Fields = map[string]interface{}{}
		}
		if entity.ID == uuid.Nil {
			entity.ID = uuid.New()
		}
		if err := s.entityRepo.CreateEntity(&entity); err != nil {
			return nil, fmt.Errorf("failed to import entity %s: %w", entity.ID, err)
		}
		report.Entities++
	}

	for i := range backup.ChatHistory {
		message := backup.ChatHistory[i]
		if message.Content == "" || message.Role == "" {
			skipRecord(report, fmt.Sprintf("chat message %d: missing role or content", i))
			continue
		}
		if message.ID == uuid.Nil {
			message.ID = uuid.New()
		}
		if err := s.chatRepo.CreateMessage(&message); err != nil {
			return nil, fmt.Errorf("failed to import chat message %s: %w", message.ID, err)
		}
		report.ChatMessages++
	}

	for i := range backup.CombatSessions {
		session := backup.CombatSessions[i]
		if err := validateImportedSession(&session); err != nil {
			skipRecord(report, fmt.Sprintf("combat session %d: %v", i, err))
			continue
		}
		if err := s.combatRepo.CreateSession(&session); err != nil {
			return nil, fmt.Errorf("failed to import combat session %s: %w", session.ID, err)
		}
		report.CombatSessions++
	}

	for i := range backup.MontageSessions {
		montage := backup.MontageSessions[i]
		if err := validateImportedMontage(&montage); err != nil {
			skipRecord(report, fmt.Sprintf("montage session %d: %v", i, err))
			continue
		}
		if err := s.montageRepo.CreateMontage(&montage); err != nil {
			return nil, fmt.Errorf("failed to import montage session %s: %w", montage.ID, err)
		}
		report.MontageSessions++
	}

	if backup.ActiveCampaignID != "" {
		if err := s.settingsRepo.Set(models.SettingActiveCampaignID, backup.ActiveCampaignID); err != nil {
			return nil, fmt.Errorf("failed to restore active campaign: %w", err)
		}
	}
	if backup.SelectedModel != "" {
		if err := s.settingsRepo.Set(models.SettingSelectedModel, backup.SelectedModel); err != nil {
			return nil, fmt.Errorf("failed to restore selected model: %w", err)
		}
	}

	if err := s.combatStore.LoadCombats(); err != nil {
		return nil, fmt.Errorf("failed to reload combat store: %w", err)
	}

	return report, nil
}

// validateImportedSession vérifie les champs requis d'une session importée
// et applique les valeurs par défaut des champs optionnels
func validateImportedSession(session *models.CombatSession) error {
	if session.Name == "" {
		return fmt.Errorf("missing name")
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	switch session.Status {
	case models.CombatStatusPreparing, models.CombatStatusActive,
		models.CombatStatusPaused, models.CombatStatusCompleted:
	default:
		return fmt.Errorf("invalid status %q", session.Status)
	}
	if len(session.Combatants) > 0 {
		if session.CurrentTurn < 0 || session.CurrentTurn >= len(session.Combatants) {
			return fmt.Errorf("current turn %d out of range", session.CurrentTurn)
		}
	}
	if session.Combatants == nil {
		session.Combatants = []models.Combatant{}
	}
	if session.Log == nil {
		session.Log = []models.LogEntry{}
	}
	return nil
}

// validateImportedMontage vérifie les champs requis d'un montage importé
func validateImportedMontage(montage *models.MontageSession) error {
	if montage.Name == "" {
		return fmt.Errorf("missing name")
	}
	if montage.ID == uuid.Nil {
		montage.ID = uuid.New()
	}
	switch montage.Status {
	case models.MontageStatusActive, models.MontageStatusCompleted:
	default:
		return fmt.Errorf("invalid status %q", montage.Status)
	}
	if montage.SuccessLimit <= 0 || montage.FailureLimit <= 0 {
		return fmt.Errorf("invalid limits")
	}
	if montage.Log == nil {
		montage.Log = []models.MontageLogEntry{}
	}
	return nil
}

// skipRecord consigne un enregistrement ignoré dans le bilan d'import
func skipRecord(report *models.ImportResponse, reason string) {
	report.SkippedRecords++
	report.Warnings = append(report.Warnings, reason)
	logrus.WithField("reason", reason).Warn("Skipping invalid backup record")
}
