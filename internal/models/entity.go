// internal/models/entity.go
package models

import (
	"time"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
)

// EntityKind définit les types d'entités de campagne
type EntityKind string

const (
	EntityKindCharacter EntityKind = "character"
	EntityKindNPC       EntityKind = "npc"
	EntityKindLocation  EntityKind = "location"
	EntityKindScene     EntityKind = "scene"
	EntityKindItem      EntityKind = "item"
	EntityKindFaction   EntityKind = "faction"
)

// validEntityKinds recense les types acceptés à la création
var validEntityKinds = map[EntityKind]bool{
	EntityKindCharacter: true,
	EntityKindNPC:       true,
	EntityKindLocation:  true,
	EntityKindScene:     true,
	EntityKindItem:      true,
	EntityKindFaction:   true,
}

// Entity représente un enregistrement de campagne (personnage, PNJ, lieu...).
// Les champs spécifiques au type sont portés par Fields (colonne JSONB),
// le schéma variant librement d'un type à l'autre.
type Entity struct {
	ID         uuid.UUID              `json:"id" db:"id"`
	CampaignID uuid.UUID              `json:"campaign_id" db:"campaign_id"`
	Kind       EntityKind             `json:"kind" db:"kind"`
	Name       string                 `json:"name" db:"name"`
	Fields     map[string]interface{} `json:"fields" db:"-"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" db:"updated_at"`
}

// NewEntity crée une entité de campagne validée
func NewEntity(campaignID uuid.UUID, kind EntityKind, name string, fields map[string]interface{}) (*Entity, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "entity name is required")
	}
	if !validEntityKinds[kind] {
		return nil, apperrors.Newf(apperrors.KindValidation, "invalid entity kind %q", kind)
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	now := time.Now().UTC()
	return &Entity{
		ID:         uuid.New(),
		CampaignID: campaignID,
		Kind:       kind,
		Name:       name,
		Fields:     fields,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Clés des réglages de campagne connus
const (
	SettingActiveCampaignID = "active_campaign_id"
	SettingSelectedModel    = "selected_model"
)

// Setting représente une paire clé/valeur de réglage persistée
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
