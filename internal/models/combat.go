// internal/models/combat.go
package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
)

// CombatStatus définit les statuts d'une session de combat
type CombatStatus string

const (
	CombatStatusPreparing CombatStatus = "preparing"
	CombatStatusActive    CombatStatus = "active"
	CombatStatusPaused    CombatStatus = "paused"
	CombatStatusCompleted CombatStatus = "completed"
)

// CombatantType discrimine les héros des créatures
type CombatantType string

const (
	CombatantTypeHero     CombatantType = "hero"
	CombatantTypeCreature CombatantType = "creature"
)

// LogEntryType définit les types d'entrées du journal de combat
type LogEntryType string

const (
	LogTypeSystem    LogEntryType = "system"
	LogTypeDamage    LogEntryType = "damage"
	LogTypeHealing   LogEntryType = "healing"
	LogTypeCondition LogEntryType = "condition"
	LogTypeResource  LogEntryType = "resource"
	LogTypeTurn      LogEntryType = "turn"
	LogTypePowerRoll LogEntryType = "power_roll"
)

// InitiativeRoll représente les composants bruts d'un jet d'initiative
type InitiativeRoll struct {
	Die      int `json:"die"`
	Modifier int `json:"modifier"`
}

// Total retourne la valeur résolue du jet
func (r InitiativeRoll) Total() int {
	return r.Die + r.Modifier
}

// Condition représente un effet de statut actif sur un combattant
type Condition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	// Duration en rounds restants, 0 = indéfini
	Duration int `json:"duration"`
}

// Combatant représente un participant (héros ou créature) d'une session
type Combatant struct {
	ID             uuid.UUID       `json:"id"`
	Type           CombatantType   `json:"type"`
	Name           string          `json:"name"`
	Initiative     int             `json:"initiative"`
	InitiativeRoll *InitiativeRoll `json:"initiative_roll,omitempty"`
	TurnOrder      int             `json:"turn_order"`
	HP             int             `json:"hp"`
	MaxHP          int             `json:"max_hp"`
	TempHP         int             `json:"temp_hp"`
	AC             int             `json:"ac"`
	Conditions     []Condition     `json:"conditions"`
	// EntityID référence optionnelle vers une entité de campagne (relation, pas propriété)
	EntityID *uuid.UUID `json:"entity_id,omitempty"`
	// HeroicResource réserve héroïque, présente uniquement sur les héros
	HeroicResource *int `json:"heroic_resource,omitempty"`
	// AdHoc marque les combattants rapides créés à la volée
	AdHoc bool `json:"ad_hoc,omitempty"`
}

// IsHero vérifie si le combattant est un héros
func (c *Combatant) IsHero() bool {
	return c.Type == CombatantTypeHero
}

// HasCondition vérifie si le combattant subit une condition donnée
func (c *Combatant) HasCondition(name string) bool {
	for _, cond := range c.Conditions {
		if cond.Name == name {
			return true
		}
	}
	return false
}

// LogEntry représente une entrée immuable du journal de combat
type LogEntry struct {
	ID          uuid.UUID    `json:"id"`
	Round       int          `json:"round"`
	Turn        int          `json:"turn"`
	Timestamp   time.Time    `json:"timestamp"`
	Message     string       `json:"message"`
	Type        LogEntryType `json:"type"`
	CombatantID *uuid.UUID   `json:"combatant_id,omitempty"`
}

// CombatSession représente l'état complet d'une rencontre
type CombatSession struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	Description   string       `json:"description,omitempty" db:"description"`
	Status        CombatStatus `json:"status" db:"status"`
	CurrentRound  int          `json:"current_round" db:"current_round"`
	CurrentTurn   int          `json:"current_turn" db:"current_turn"`
	VictoryPoints int          `json:"victory_points" db:"victory_points"`
	HeroPoints    int          `json:"hero_points" db:"hero_points"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`

	// Collections imbriquées (colonnes JSONB)
	Combatants []Combatant            `json:"combatants" db:"-"`
	Groups     map[string][]uuid.UUID `json:"groups,omitempty" db:"-"`
	Log        []LogEntry             `json:"log" db:"-"`
}

// NewCombatSession crée une nouvelle session en statut preparing
func NewCombatSession(name, description string) *CombatSession {
	now := time.Now().UTC()
	return &CombatSession{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Status:      CombatStatusPreparing,
		Combatants:  []Combatant{},
		Log:         []LogEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsRunning vérifie si la session est en cours de jeu
func (s *CombatSession) IsRunning() bool {
	return s.Status == CombatStatusActive || s.Status == CombatStatusPaused
}

// CurrentCombatant retourne le combattant dont c'est le tour, ou nil
func (s *CombatSession) CurrentCombatant() *Combatant {
	if len(s.Combatants) == 0 {
		return nil
	}
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Combatants) {
		return nil
	}
	return &s.Combatants[s.CurrentTurn]
}

// SortedCombatants retourne les combattants triés par initiative décroissante.
// Le tri est stable: les égalités conservent l'ordre d'origine.
func (s *CombatSession) SortedCombatants() []Combatant {
	sorted := make([]Combatant, len(s.Combatants))
	copy(sorted, s.Combatants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Initiative > sorted[j].Initiative
	})
	return sorted
}

// Heroes retourne les combattants de type héros
func (s *CombatSession) Heroes() []Combatant {
	return s.combatantsByType(CombatantTypeHero)
}

// Creatures retourne les combattants de type créature
func (s *CombatSession) Creatures() []Combatant {
	return s.combatantsByType(CombatantTypeCreature)
}

func (s *CombatSession) combatantsByType(t CombatantType) []Combatant {
	result := []Combatant{}
	for _, c := range s.Combatants {
		if c.Type == t {
			result = append(result, c)
		}
	}
	return result
}

// FindCombatant retourne un combattant et sa position, ou une erreur not found
func (s *CombatSession) FindCombatant(combatantID uuid.UUID) (*Combatant, int, error) {
	for i := range s.Combatants {
		if s.Combatants[i].ID == combatantID {
			return &s.Combatants[i], i, nil
		}
	}
	return nil, -1, apperrors.Newf(apperrors.KindNotFound, "combatant %s not found in session", combatantID)
}

// Transitions de cycle de vie

// Start démarre le combat (preparing -> active)
func (s *CombatSession) Start() error {
	if s.Status != CombatStatusPreparing {
		return apperrors.Newf(apperrors.KindConflict, "cannot start combat in status %s", s.Status)
	}
	s.Status = CombatStatusActive
	s.CurrentRound = 1
	s.CurrentTurn = 0
	s.appendLog(LogTypeSystem, "Combat started", nil)
	return nil
}

// Pause met le combat en pause (active -> paused)
func (s *CombatSession) Pause() error {
	if s.Status != CombatStatusActive {
		return apperrors.Newf(apperrors.KindConflict, "cannot pause combat in status %s", s.Status)
	}
	s.Status = CombatStatusPaused
	s.appendLog(LogTypeSystem, "Combat paused", nil)
	return nil
}

// Resume reprend un combat en pause (paused -> active)
func (s *CombatSession) Resume() error {
	if s.Status != CombatStatusPaused {
		return apperrors.Newf(apperrors.KindConflict, "cannot resume combat in status %s", s.Status)
	}
	s.Status = CombatStatusActive
	s.appendLog(LogTypeSystem, "Combat resumed", nil)
	return nil
}

// End termine le combat (active|paused -> completed)
func (s *CombatSession) End() error {
	if s.Status != CombatStatusActive && s.Status != CombatStatusPaused {
		return apperrors.Newf(apperrors.KindConflict, "cannot end combat in status %s", s.Status)
	}
	s.Status = CombatStatusCompleted
	s.appendLog(LogTypeSystem, "Combat ended", nil)
	return nil
}

// Reopen rouvre un combat terminé (completed -> active)
func (s *CombatSession) Reopen() error {
	if s.Status != CombatStatusCompleted {
		return apperrors.Newf(apperrors.KindConflict, "cannot reopen combat in status %s", s.Status)
	}
	s.Status = CombatStatusActive
	s.appendLog(LogTypeSystem, "Combat reopened", nil)
	return nil
}

// Gestion des combattants

// AddCombatant ajoute un combattant en fin d'ordre de tour
func (s *CombatSession) AddCombatant(combatant Combatant) error {
	if combatant.Name == "" {
		return apperrors.New(apperrors.KindValidation, "combatant name is required")
	}
	if combatant.MaxHP < 0 || combatant.HP < 0 {
		return apperrors.New(apperrors.KindValidation, "combatant hit points cannot be negative")
	}
	if combatant.ID == uuid.Nil {
		combatant.ID = uuid.New()
	}
	if combatant.Conditions == nil {
		combatant.Conditions = []Condition{}
	}
	combatant.TurnOrder = len(s.Combatants)
	s.Combatants = append(s.Combatants, combatant)
	s.appendLog(LogTypeSystem, fmt.Sprintf("%s joined the encounter", combatant.Name), &combatant.ID)
	return nil
}

// QuickCombatantName retourne un nom unique pour un combattant rapide.
// Les doublons reçoivent un suffixe numéroté: "Goblin", "Goblin (2)", "Goblin (3)".
func (s *CombatSession) QuickCombatantName(name string) string {
	exists := func(candidate string) bool {
		for _, c := range s.Combatants {
			if c.Name == candidate {
				return true
			}
		}
		return false
	}

	if !exists(name) {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !exists(candidate) {
			return candidate
		}
	}
}

// RemoveCombatant retire un combattant en préservant l'invariant de tour
func (s *CombatSession) RemoveCombatant(combatantID uuid.UUID) error {
	combatant, index, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}
	name := combatant.Name

	s.Combatants = append(s.Combatants[:index], s.Combatants[index+1:]...)
	s.reindexTurnOrder()

	// Réajuster currentTurn pour qu'il reste un index valide
	if index < s.CurrentTurn {
		s.CurrentTurn--
	}
	if s.CurrentTurn >= len(s.Combatants) {
		s.CurrentTurn = 0
	}

	s.removeFromGroups(combatantID)
	s.appendLog(LogTypeSystem, fmt.Sprintf("%s left the encounter", name), nil)
	return nil
}

// MoveCombatantToPosition déplace un combattant dans l'ordre de tour.
// Tous les autres champs sont préservés; currentTurn continue de pointer
// sur le même combattant qu'avant le déplacement.
func (s *CombatSession) MoveCombatantToPosition(combatantID uuid.UUID, position int) error {
	_, index, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}
	if position < 0 {
		position = 0
	}
	if position >= len(s.Combatants) {
		position = len(s.Combatants) - 1
	}
	if position == index {
		return nil
	}

	var currentID uuid.UUID
	if current := s.CurrentCombatant(); current != nil {
		currentID = current.ID
	}

	moved := s.Combatants[index]
	s.Combatants = append(s.Combatants[:index], s.Combatants[index+1:]...)
	rest := append([]Combatant{moved}, s.Combatants[position:]...)
	s.Combatants = append(s.Combatants[:position], rest...)
	s.reindexTurnOrder()

	if currentID != uuid.Nil {
		for i := range s.Combatants {
			if s.Combatants[i].ID == currentID {
				s.CurrentTurn = i
				break
			}
		}
	}
	return nil
}

// SetInitiative applique un jet d'initiative résolu à un combattant
func (s *CombatSession) SetInitiative(combatantID uuid.UUID, roll InitiativeRoll) error {
	combatant, _, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}
	r := roll
	combatant.InitiativeRoll = &r
	combatant.Initiative = roll.Total()
	s.appendLog(LogTypeSystem,
		fmt.Sprintf("%s rolled initiative: %d (%d%+d)", combatant.Name, roll.Total(), roll.Die, roll.Modifier),
		&combatant.ID)
	return nil
}

// Gestion des tours

// NextTurn avance au tour suivant; le round s'incrémente en fin d'ordre
func (s *CombatSession) NextTurn() error {
	if len(s.Combatants) == 0 {
		return apperrors.New(apperrors.KindConflict, "cannot advance turn without combatants")
	}
	s.CurrentTurn++
	if s.CurrentTurn >= len(s.Combatants) {
		s.CurrentTurn = 0
		s.CurrentRound++
		s.tickConditions()
		s.appendLog(LogTypeTurn, fmt.Sprintf("Round %d begins", s.CurrentRound), nil)
	}
	return nil
}

// PreviousTurn recule d'un tour; le round se décrémente en début d'ordre.
// Au tout début de la rencontre (round 1, tour 0) l'opération est sans effet.
func (s *CombatSession) PreviousTurn() error {
	if len(s.Combatants) == 0 {
		return apperrors.New(apperrors.KindConflict, "cannot rewind turn without combatants")
	}
	if s.CurrentTurn > 0 {
		s.CurrentTurn--
		return nil
	}
	if s.CurrentRound > 1 {
		s.CurrentRound--
		s.CurrentTurn = len(s.Combatants) - 1
	}
	return nil
}

// tickConditions décrémente les durées de conditions au changement de round
// et retire celles qui expirent; les durées à 0 sont indéfinies
func (s *CombatSession) tickConditions() {
	for i := range s.Combatants {
		remaining := s.Combatants[i].Conditions[:0]
		for _, cond := range s.Combatants[i].Conditions {
			if cond.Duration > 0 {
				cond.Duration--
				if cond.Duration == 0 {
					s.appendLog(LogTypeCondition,
						fmt.Sprintf("%s is no longer %s", s.Combatants[i].Name, cond.Name),
						&s.Combatants[i].ID)
					continue
				}
			}
			remaining = append(remaining, cond)
		}
		s.Combatants[i].Conditions = remaining
	}
}

// Gestion des points de vie

// ApplyDamage applique des dégâts à un combattant.
// Les PV temporaires absorbent les dégâts en premier; les PV ne descendent
// jamais sous zéro.
func (s *CombatSession) ApplyDamage(combatantID uuid.UUID, amount int, source string) error {
	if amount < 0 {
		return apperrors.New(apperrors.KindValidation, "damage amount cannot be negative")
	}
	combatant, _, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}

	remaining := amount
	if combatant.TempHP > 0 {
		absorbed := remaining
		if absorbed > combatant.TempHP {
			absorbed = combatant.TempHP
		}
		combatant.TempHP -= absorbed
		remaining -= absorbed
	}
	combatant.HP -= remaining
	if combatant.HP < 0 {
		combatant.HP = 0
	}

	message := fmt.Sprintf("%s takes %d damage", combatant.Name, amount)
	if source != "" {
		message = fmt.Sprintf("%s takes %d damage from %s", combatant.Name, amount, source)
	}
	s.appendLog(LogTypeDamage, message, &combatant.ID)
	return nil
}

// ApplyHealing soigne un combattant, plafonné à ses PV maximum
func (s *CombatSession) ApplyHealing(combatantID uuid.UUID, amount int, source string) error {
	if amount < 0 {
		return apperrors.New(apperrors.KindValidation, "healing amount cannot be negative")
	}
	combatant, _, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}

	combatant.HP += amount
	if combatant.HP > combatant.MaxHP {
		combatant.HP = combatant.MaxHP
	}

	message := fmt.Sprintf("%s regains %d hit points", combatant.Name, amount)
	if source != "" {
		message = fmt.Sprintf("%s regains %d hit points from %s", combatant.Name, amount, source)
	}
	s.appendLog(LogTypeHealing, message, &combatant.ID)
	return nil
}

// AddTemporaryHP accorde des PV temporaires.
// Les PV temporaires ne se cumulent pas: la valeur la plus haute est conservée.
func (s *CombatSession) AddTemporaryHP(combatantID uuid.UUID, amount int) error {
	if amount < 0 {
		return apperrors.New(apperrors.KindValidation, "temporary hit points cannot be negative")
	}
	combatant, _, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}

	if amount > combatant.TempHP {
		combatant.TempHP = amount
	}
	s.appendLog(LogTypeHealing, fmt.Sprintf("%s gains %d temporary hit points", combatant.Name, amount), &combatant.ID)
	return nil
}

// Gestion des conditions

// AddCondition applique une condition à un combattant
func (s *CombatSession) AddCondition(combatantID uuid.UUID, condition Condition) error {
	if condition.Name == "" {
		return apperrors.New(apperrors.KindValidation, "condition name is required")
	}
	combatant, _, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}

	combatant.Conditions = append(combatant.Conditions, condition)
	s.appendLog(LogTypeCondition, fmt.Sprintf("%s is now %s", combatant.Name, condition.Name), &combatant.ID)
	return nil
}

// RemoveCondition retire toutes les occurrences d'une condition par son nom
func (s *CombatSession) RemoveCondition(combatantID uuid.UUID, name string) error {
	combatant, _, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}

	remaining := combatant.Conditions[:0]
	removed := false
	for _, cond := range combatant.Conditions {
		if cond.Name == name {
			removed = true
			continue
		}
		remaining = append(remaining, cond)
	}
	combatant.Conditions = remaining

	if !removed {
		return apperrors.Newf(apperrors.KindNotFound, "condition %q not found on %s", name, combatant.Name)
	}
	s.appendLog(LogTypeCondition, fmt.Sprintf("%s is no longer %s", combatant.Name, name), &combatant.ID)
	return nil
}

// Réserves de ressources

// AddVictoryPoints ajoute des points de victoire à la réserve
func (s *CombatSession) AddVictoryPoints(amount int, reason string) error {
	if amount < 0 {
		return apperrors.New(apperrors.KindValidation, "victory point amount cannot be negative")
	}
	s.VictoryPoints += amount
	s.logResource(fmt.Sprintf("Party gains %d victory points", amount), reason)
	return nil
}

// RemoveVictoryPoints retire des points de victoire, plancher à zéro
func (s *CombatSession) RemoveVictoryPoints(amount int, reason string) error {
	if amount < 0 {
		return apperrors.New(apperrors.KindValidation, "victory point amount cannot be negative")
	}
	s.VictoryPoints -= amount
	if s.VictoryPoints < 0 {
		s.VictoryPoints = 0
	}
	s.logResource(fmt.Sprintf("Party loses %d victory points", amount), reason)
	return nil
}

// AddHeroPoints ajoute des points d'héroïsme à la réserve
func (s *CombatSession) AddHeroPoints(amount int, reason string) error {
	if amount < 0 {
		return apperrors.New(apperrors.KindValidation, "hero point amount cannot be negative")
	}
	s.HeroPoints += amount
	s.logResource(fmt.Sprintf("Party gains %d hero points", amount), reason)
	return nil
}

// SpendHeroPoint dépense un point d'héroïsme
func (s *CombatSession) SpendHeroPoint(reason string) error {
	if s.HeroPoints <= 0 {
		return apperrors.New(apperrors.KindConflict, "no hero points available to spend")
	}
	s.HeroPoints--
	s.logResource("Party spends a hero point", reason)
	return nil
}

func (s *CombatSession) logResource(message, reason string) {
	if reason != "" {
		message = fmt.Sprintf("%s (%s)", message, reason)
	}
	s.appendLog(LogTypeResource, message, nil)
}

// Journal

// AddLogEntry ajoute une entrée arbitraire au journal
func (s *CombatSession) AddLogEntry(entryType LogEntryType, message string, combatantID *uuid.UUID) error {
	if message == "" {
		return apperrors.New(apperrors.KindValidation, "log message is required")
	}
	if entryType == "" {
		entryType = LogTypeSystem
	}
	s.appendLog(entryType, message, combatantID)
	return nil
}

// LogPowerRoll journalise le résultat d'un jet de pouvoir (2d10 + modificateur)
func (s *CombatSession) LogPowerRoll(combatantID uuid.UUID, dice [2]int, modifier int, ability string) error {
	combatant, _, err := s.FindCombatant(combatantID)
	if err != nil {
		return err
	}

	total := dice[0] + dice[1] + modifier
	message := fmt.Sprintf("%s power roll: %d (%d+%d%+d)", combatant.Name, total, dice[0], dice[1], modifier)
	if ability != "" {
		message = fmt.Sprintf("%s rolls %s: %d (%d+%d%+d)", combatant.Name, ability, total, dice[0], dice[1], modifier)
	}
	s.appendLog(LogTypePowerRoll, message, &combatant.ID)
	return nil
}

// appendLog ajoute une entrée horodatée au journal (ordre d'insertion)
func (s *CombatSession) appendLog(entryType LogEntryType, message string, combatantID *uuid.UUID) {
	s.Log = append(s.Log, LogEntry{
		ID:          uuid.New(),
		Round:       s.CurrentRound,
		Turn:        s.CurrentTurn,
		Timestamp:   time.Now().UTC(),
		Message:     message,
		Type:        entryType,
		CombatantID: combatantID,
	})
}

func (s *CombatSession) reindexTurnOrder() {
	for i := range s.Combatants {
		s.Combatants[i].TurnOrder = i
	}
}

func (s *CombatSession) removeFromGroups(combatantID uuid.UUID) {
	for name, members := range s.Groups {
		remaining := members[:0]
		for _, id := range members {
			if id != combatantID {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) == 0 {
			delete(s.Groups, name)
			continue
		}
		s.Groups[name] = remaining
	}
}
