// internal/models/responses.go
package models

import "time"

// ImportResponse représente le bilan d'un import de sauvegarde
type ImportResponse struct {
	Success          bool     `json:"success"`
	Entities         int      `json:"entities"`
	ChatMessages     int      `json:"chat_messages"`
	CombatSessions   int      `json:"combat_sessions"`
	MontageSessions  int      `json:"montage_sessions"`
	SkippedRecords   int      `json:"skipped_records"`
	Warnings         []string `json:"warnings,omitempty"`
	ActiveCampaignID string   `json:"active_campaign_id,omitempty"`
	SelectedModel    string   `json:"selected_model,omitempty"`
}

// ChangeEvent représente un événement poussé aux abonnés temps réel
type ChangeEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}
