// internal/models/requests.go
package models

import (
	"github.com/google/uuid"
)

// CreateCombatSessionRequest représente une demande de création de session
type CreateCombatSessionRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description,omitempty"`
	Combatants  []CombatantRequest `json:"combatants,omitempty"`
}

// CombatantRequest représente une demande d'ajout de combattant
type CombatantRequest struct {
	Type           CombatantType `json:"type" binding:"required"`
	Name           string        `json:"name" binding:"required"`
	Initiative     int           `json:"initiative,omitempty"`
	HP             int           `json:"hp" binding:"min=0"`
	MaxHP          int           `json:"max_hp" binding:"min=0"`
	AC             int           `json:"ac,omitempty"`
	EntityID       *uuid.UUID    `json:"entity_id,omitempty"`
	HeroicResource *int          `json:"heroic_resource,omitempty"`
}

// Combatant construit le combattant correspondant à la demande
func (r *CombatantRequest) Combatant() Combatant {
	hp := r.HP
	if hp == 0 {
		hp = r.MaxHP
	}
	return Combatant{
		Type:           r.Type,
		Name:           r.Name,
		Initiative:     r.Initiative,
		HP:             hp,
		MaxHP:          r.MaxHP,
		AC:             r.AC,
		Conditions:     []Condition{},
		EntityID:       r.EntityID,
		HeroicResource: r.HeroicResource,
	}
}

// QuickCombatantRequest représente une demande de combattant rapide
type QuickCombatantRequest struct {
	Name  string        `json:"name" binding:"required"`
	Type  CombatantType `json:"type,omitempty"`
	MaxHP int           `json:"max_hp,omitempty"`
	Count int           `json:"count,omitempty"`
}

// MoveCombatantRequest représente une demande de déplacement dans l'ordre de tour
type MoveCombatantRequest struct {
	Position int `json:"position" binding:"min=0"`
}

// SetInitiativeRequest représente une demande d'initiative manuelle
type SetInitiativeRequest struct {
	Die      int `json:"die" binding:"min=1"`
	Modifier int `json:"modifier"`
}

// DamageRequest représente une demande d'application de dégâts
type DamageRequest struct {
	Amount int    `json:"amount" binding:"min=0"`
	Source string `json:"source,omitempty"`
}

// HealingRequest représente une demande de soin
type HealingRequest struct {
	Amount int    `json:"amount" binding:"min=0"`
	Source string `json:"source,omitempty"`
}

// TempHPRequest représente une demande de PV temporaires
type TempHPRequest struct {
	Amount int `json:"amount" binding:"min=0"`
}

// ConditionRequest représente une demande d'application de condition
type ConditionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

// Condition construit la condition correspondante
func (r *ConditionRequest) Condition() Condition {
	return Condition{
		Name:        r.Name,
		Description: r.Description,
		Source:      r.Source,
		Duration:    r.Duration,
	}
}

// PointsRequest représente une demande de modification de réserve de points
type PointsRequest struct {
	Amount int    `json:"amount" binding:"min=0"`
	Reason string `json:"reason,omitempty"`
}

// SpendHeroPointRequest représente une demande de dépense de point d'héroïsme
type SpendHeroPointRequest struct {
	Reason string `json:"reason,omitempty"`
}

// LogEntryRequest représente une demande d'entrée de journal manuelle
type LogEntryRequest struct {
	Type        LogEntryType `json:"type,omitempty"`
	Message     string       `json:"message" binding:"required"`
	CombatantID *uuid.UUID   `json:"combatant_id,omitempty"`
}

// PowerRollRequest représente une demande de jet de pouvoir
type PowerRollRequest struct {
	Modifier int    `json:"modifier"`
	Ability  string `json:"ability,omitempty"`
}

// CreateMontageRequest représente une demande de création de montage
type CreateMontageRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description,omitempty"`
	SuccessLimit int    `json:"success_limit" binding:"min=1"`
	FailureLimit int    `json:"failure_limit" binding:"min=1"`
	MaxRounds    int    `json:"max_rounds,omitempty"`
}

// MontageTestRequest représente une demande d'enregistrement de test
type MontageTestRequest struct {
	Description string `json:"description,omitempty"`
}

// CompleteMontageRequest représente une demande de clôture de montage
type CompleteMontageRequest struct {
	Outcome MontageOutcome `json:"outcome" binding:"required"`
}

// CreateEntityRequest représente une demande de création d'entité
type CreateEntityRequest struct {
	CampaignID uuid.UUID              `json:"campaign_id" binding:"required"`
	Kind       EntityKind             `json:"kind" binding:"required"`
	Name       string                 `json:"name" binding:"required"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// UpdateEntityRequest représente une demande de mise à jour d'entité
type UpdateEntityRequest struct {
	Name   *string                `json:"name,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// ChatMessageRequest représente une demande d'enregistrement de message
type ChatMessageRequest struct {
	Role    ChatRole `json:"role" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Model   string   `json:"model,omitempty"`
}

// GenerateRequest représente une demande de génération IA
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Model  string `json:"model,omitempty"`
	System string `json:"system,omitempty"`
}

// SettingRequest représente une demande de mise à jour de réglage
type SettingRequest struct {
	Value string `json:"value"`
}
