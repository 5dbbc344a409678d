// internal/models/backup.go
package models

import "time"

// BackupVersion identifie la version courante du format d'export
const BackupVersion = 1

// Backup représente le document JSON d'export/import complet.
// Les clés de premier niveau sont en camelCase, format historique du fichier
// de sauvegarde; les collections absentes d'anciens exports sont tolérées
// à l'import et traitées comme vides.
type Backup struct {
	Version          int              `json:"version"`
	ExportedAt       time.Time        `json:"exportedAt"`
	Entities         []Entity         `json:"entities"`
	ChatHistory      []ChatMessage    `json:"chatHistory"`
	ActiveCampaignID string           `json:"activeCampaignId,omitempty"`
	SelectedModel    string           `json:"selectedModel,omitempty"`
	CombatSessions   []CombatSession  `json:"combatSessions,omitempty"`
	MontageSessions  []MontageSession `json:"montageSessions,omitempty"`
}
