// internal/handler/combat.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"directorassist/internal/models"
	"directorassist/internal/monitoring"
	"directorassist/internal/store"
)

// CombatHandler gère les endpoints des sessions de combat
type CombatHandler struct {
	combatStore *store.CombatStore
}

// NewCombatHandler crée une nouvelle instance du handler combat
func NewCombatHandler(combatStore *store.CombatStore) *CombatHandler {
	return &CombatHandler{
		combatStore: combatStore,
	}
}

// CreateSession crée une nouvelle session de combat
func (h *CombatHandler) CreateSession(c *gin.Context) {
	var req models.CreateCombatSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.CreateCombat(req.Name, req.Description)
	if err != nil {
		respondError(c, "Failed to create combat session", err)
		return
	}
	monitoring.CombatSessionsTotal.WithLabelValues(string(session.Status)).Inc()

	// Roster initial optionnel
	for _, combatantReq := range req.Combatants {
		session, err = h.combatStore.AddCombatant(session.ID, combatantReq.Combatant())
		if err != nil {
			respondError(c, "Failed to add combatant", err)
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":    session,
		"message":    "Combat session created successfully",
		"request_id": requestID(c),
	})
}

// ListSessions retourne toutes les sessions de combat
func (h *CombatHandler) ListSessions(c *gin.Context) {
	if err := h.combatStore.LoadCombats(); err != nil {
		respondError(c, "Failed to load combat sessions", err)
		return
	}

	sessions := h.combatStore.Sessions()
	if c.Query("active") == "true" {
		sessions = h.combatStore.ActiveCombats()
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions":   sessions,
		"total":      len(sessions),
		"request_id": requestID(c),
	})
}

// GetSession retourne une session et la met en focus
func (h *CombatHandler) GetSession(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	session := h.combatStore.SelectCombat(sessionID)
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "Combat session not found",
			"request_id": requestID(c),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":           session,
		"current_combatant": session.CurrentCombatant(),
		"sorted_combatants": session.SortedCombatants(),
		"request_id":        requestID(c),
	})
}

// GetSelectedSession retourne la session actuellement en focus
func (h *CombatHandler) GetSelectedSession(c *gin.Context) {
	session := h.combatStore.ActiveCombat()
	if session == nil {
		resp := gin.H{
			"error":      "No combat session selected",
			"request_id": requestID(c),
		}
		if lastErr := h.combatStore.LastError(); lastErr != nil {
			resp["last_error"] = lastErr.Error()
		}
		c.JSON(http.StatusNotFound, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":           session,
		"current_combatant": session.CurrentCombatant(),
		"sorted_combatants": session.SortedCombatants(),
		"request_id":        requestID(c),
	})
}

// ClearSelectedSession retire le focus sans toucher aux données
func (h *CombatHandler) ClearSelectedSession(c *gin.Context) {
	h.combatStore.ClearSelection()

	c.JSON(http.StatusOK, gin.H{
		"message":    "Selection cleared",
		"request_id": requestID(c),
	})
}

// UpdateSession met à jour le nom et la description d'une session
func (h *CombatHandler) UpdateSession(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req models.CreateCombatSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.UpdateCombat(sessionID, req.Name, req.Description)
	if err != nil {
		respondError(c, "Failed to update combat session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// DeleteSession supprime une session de combat
func (h *CombatHandler) DeleteSession(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	if err := h.combatStore.DeleteCombat(sessionID); err != nil {
		respondError(c, "Failed to delete combat session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Combat session deleted successfully",
		"request_id": requestID(c),
	})
}

// Transitions de cycle de vie

// StartSession démarre une session (preparing -> active)
func (h *CombatHandler) StartSession(c *gin.Context) {
	h.lifecycle(c, h.combatStore.StartCombat, "Combat started")
}

// PauseSession met une session en pause
func (h *CombatHandler) PauseSession(c *gin.Context) {
	h.lifecycle(c, h.combatStore.PauseCombat, "Combat paused")
}

// ResumeSession reprend une session en pause
func (h *CombatHandler) ResumeSession(c *gin.Context) {
	h.lifecycle(c, h.combatStore.ResumeCombat, "Combat resumed")
}

// EndSession termine une session
func (h *CombatHandler) EndSession(c *gin.Context) {
	h.lifecycle(c, h.combatStore.EndCombat, "Combat ended")
}

// ReopenSession rouvre une session terminée
func (h *CombatHandler) ReopenSession(c *gin.Context) {
	h.lifecycle(c, h.combatStore.ReopenCombat, "Combat reopened")
}

func (h *CombatHandler) lifecycle(c *gin.Context, op func(id uuid.UUID) (*models.CombatSession, error), message string) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := op(sessionID)
	if err != nil {
		monitoring.CombatOperationsTotal.WithLabelValues("lifecycle", "error").Inc()
		respondError(c, "Failed to change combat status", err)
		return
	}
	monitoring.CombatOperationsTotal.WithLabelValues("lifecycle", "success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"message":    message,
		"request_id": requestID(c),
	})
}

// Gestion des combattants

// AddCombatant ajoute un combattant à une session
func (h *CombatHandler) AddCombatant(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req models.CombatantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.AddCombatant(sessionID, req.Combatant())
	if err != nil {
		respondError(c, "Failed to add combatant", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// AddQuickCombatant ajoute un ou plusieurs combattants rapides
func (h *CombatHandler) AddQuickCombatant(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req models.QuickCombatantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}

	var session *models.CombatSession
	var err error
	for i := 0; i < count; i++ {
		session, err = h.combatStore.AddQuickCombatant(sessionID, req.Name, req.Type, req.MaxHP)
		if err != nil {
			respondError(c, "Failed to add quick combatant", err)
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// UpdateCombatant met à jour un combattant
func (h *CombatHandler) UpdateCombatant(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var update models.Combatant
	if err := c.ShouldBindJSON(&update); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.UpdateCombatant(sessionID, combatantID, update)
	if err != nil {
		respondError(c, "Failed to update combatant", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// RemoveCombatant retire un combattant d'une session
func (h *CombatHandler) RemoveCombatant(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	session, err := h.combatStore.RemoveCombatant(sessionID, combatantID)
	if err != nil {
		respondError(c, "Failed to remove combatant", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// MoveCombatant déplace un combattant dans l'ordre de tour
func (h *CombatHandler) MoveCombatant(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var req models.MoveCombatantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.MoveCombatantToPosition(sessionID, combatantID, req.Position)
	if err != nil {
		respondError(c, "Failed to move combatant", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// Initiative

// SetInitiative applique un jet d'initiative saisi manuellement
func (h *CombatHandler) SetInitiative(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var req models.SetInitiativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.SetInitiative(sessionID, combatantID, models.InitiativeRoll{
		Die:      req.Die,
		Modifier: req.Modifier,
	})
	if err != nil {
		respondError(c, "Failed to set initiative", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// RollInitiative lance l'initiative d'un combattant
func (h *CombatHandler) RollInitiative(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var req models.SetInitiativeRequest
	// Le corps est optionnel, seul le modificateur est lu
	_ = c.ShouldBindJSON(&req)

	session, err := h.combatStore.RollInitiative(sessionID, combatantID, req.Modifier)
	if err != nil {
		respondError(c, "Failed to roll initiative", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// RollInitiativeForAll lance l'initiative de tout le roster
func (h *CombatHandler) RollInitiativeForAll(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.combatStore.RollInitiativeForAll(sessionID)
	if err != nil {
		respondError(c, "Failed to roll initiative for all", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":           session,
		"sorted_combatants": session.SortedCombatants(),
		"request_id":        requestID(c),
	})
}

// Gestion des tours

// NextTurn avance au tour suivant
func (h *CombatHandler) NextTurn(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.combatStore.NextTurn(sessionID)
	if err != nil {
		respondError(c, "Failed to advance turn", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":           session,
		"current_combatant": session.CurrentCombatant(),
		"request_id":        requestID(c),
	})
}

// PreviousTurn recule d'un tour
func (h *CombatHandler) PreviousTurn(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.combatStore.PreviousTurn(sessionID)
	if err != nil {
		respondError(c, "Failed to rewind turn", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":           session,
		"current_combatant": session.CurrentCombatant(),
		"request_id":        requestID(c),
	})
}

// Points de vie

// ApplyDamage applique des dégâts à un combattant
func (h *CombatHandler) ApplyDamage(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var req models.DamageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.ApplyDamage(sessionID, combatantID, req.Amount, req.Source)
	if err != nil {
		respondError(c, "Failed to apply damage", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// ApplyHealing soigne un combattant
func (h *CombatHandler) ApplyHealing(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var req models.HealingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.ApplyHealing(sessionID, combatantID, req.Amount, req.Source)
	if err != nil {
		respondError(c, "Failed to apply healing", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// AddTemporaryHP accorde des PV temporaires
func (h *CombatHandler) AddTemporaryHP(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var req models.TempHPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.AddTemporaryHP(sessionID, combatantID, req.Amount)
	if err != nil {
		respondError(c, "Failed to add temporary hit points", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// Conditions

// AddCondition applique une condition à un combattant
func (h *CombatHandler) AddCondition(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var req models.ConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.AddCondition(sessionID, combatantID, req.Condition())
	if err != nil {
		respondError(c, "Failed to add condition", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// RemoveCondition retire une condition par son nom
func (h *CombatHandler) RemoveCondition(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	name := c.Param("conditionName")
	session, err := h.combatStore.RemoveCondition(sessionID, combatantID, name)
	if err != nil {
		respondError(c, "Failed to remove condition", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// Réserves de points

// AddVictoryPoints ajoute des points de victoire
func (h *CombatHandler) AddVictoryPoints(c *gin.Context) {
	h.points(c, h.combatStore.AddVictoryPoints)
}

// RemoveVictoryPoints retire des points de victoire
func (h *CombatHandler) RemoveVictoryPoints(c *gin.Context) {
	h.points(c, h.combatStore.RemoveVictoryPoints)
}

// AddHeroPoints ajoute des points d'héroïsme
func (h *CombatHandler) AddHeroPoints(c *gin.Context) {
	h.points(c, h.combatStore.AddHeroPoints)
}

func (h *CombatHandler) points(c *gin.Context, op func(id uuid.UUID, amount int, reason string) (*models.CombatSession, error)) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req models.PointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := op(sessionID, req.Amount, req.Reason)
	if err != nil {
		respondError(c, "Failed to update point pool", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// SpendHeroPoint dépense un point d'héroïsme
func (h *CombatHandler) SpendHeroPoint(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req models.SpendHeroPointRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.combatStore.SpendHeroPoint(sessionID, req.Reason)
	if err != nil {
		respondError(c, "Failed to spend hero point", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// Journal

// AddLogEntry ajoute une entrée manuelle au journal
func (h *CombatHandler) AddLogEntry(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req models.LogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.combatStore.AddLogEntry(sessionID, req.Type, req.Message, req.CombatantID)
	if err != nil {
		respondError(c, "Failed to add log entry", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}

// LogPowerRoll lance et journalise un jet de pouvoir
func (h *CombatHandler) LogPowerRoll(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	combatantID, ok := parseUUIDParam(c, "combatantId")
	if !ok {
		return
	}

	var req models.PowerRollRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.combatStore.LogPowerRoll(sessionID, combatantID, req.Modifier, req.Ability)
	if err != nil {
		respondError(c, "Failed to log power roll", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"request_id": requestID(c),
	})
}
