// internal/handler/montage.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"directorassist/internal/models"
	"directorassist/internal/repository"
)

// MontageHandler gère les endpoints des sessions de montage
type MontageHandler struct {
	montageRepo repository.MontageRepositoryInterface
}

// NewMontageHandler crée une nouvelle instance du handler montage
func NewMontageHandler(montageRepo repository.MontageRepositoryInterface) *MontageHandler {
	return &MontageHandler{
		montageRepo: montageRepo,
	}
}

// CreateMontage crée une nouvelle session de montage
func (h *MontageHandler) CreateMontage(c *gin.Context) {
	var req models.CreateMontageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	montage, err := models.NewMontageSession(req.Name, req.Description, req.SuccessLimit, req.FailureLimit, req.MaxRounds)
	if err != nil {
		respondError(c, "Failed to create montage session", err)
		return
	}

	if err := h.montageRepo.CreateMontage(montage); err != nil {
		respondError(c, "Failed to create montage session", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"montage":    montage,
		"message":    "Montage session created successfully",
		"request_id": requestID(c),
	})
}

// ListMontages retourne toutes les sessions de montage
func (h *MontageHandler) ListMontages(c *gin.Context) {
	montages, err := h.montageRepo.GetAllMontages()
	if err != nil {
		respondError(c, "Failed to load montage sessions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"montages":   montages,
		"total":      len(montages),
		"request_id": requestID(c),
	})
}

// GetMontage retourne une session de montage
func (h *MontageHandler) GetMontage(c *gin.Context) {
	montageID, ok := parseUUIDParam(c, "montageId")
	if !ok {
		return
	}

	montage, err := h.montageRepo.GetMontageByID(montageID)
	if err != nil {
		respondError(c, "Failed to get montage session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"montage":    montage,
		"request_id": requestID(c),
	})
}

// DeleteMontage supprime une session de montage
func (h *MontageHandler) DeleteMontage(c *gin.Context) {
	montageID, ok := parseUUIDParam(c, "montageId")
	if !ok {
		return
	}

	if err := h.montageRepo.DeleteMontage(montageID); err != nil {
		respondError(c, "Failed to delete montage session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Montage session deleted successfully",
		"request_id": requestID(c),
	})
}

// RecordSuccess enregistre un test réussi
func (h *MontageHandler) RecordSuccess(c *gin.Context) {
	h.recordTest(c, func(montage *models.MontageSession, description string) error {
		return montage.RecordSuccess(description)
	})
}

// RecordFailure enregistre un test raté
func (h *MontageHandler) RecordFailure(c *gin.Context) {
	h.recordTest(c, func(montage *models.MontageSession, description string) error {
		return montage.RecordFailure(description)
	})
}

func (h *MontageHandler) recordTest(c *gin.Context, record func(*models.MontageSession, string) error) {
	montageID, ok := parseUUIDParam(c, "montageId")
	if !ok {
		return
	}

	var req models.MontageTestRequest
	_ = c.ShouldBindJSON(&req)

	montage, err := h.montageRepo.Mutate(montageID, func(m *models.MontageSession) error {
		return record(m, req.Description)
	})
	if err != nil {
		respondError(c, "Failed to record montage test", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"montage":    montage,
		"request_id": requestID(c),
	})
}

// AdvanceRound passe au round suivant
func (h *MontageHandler) AdvanceRound(c *gin.Context) {
	montageID, ok := parseUUIDParam(c, "montageId")
	if !ok {
		return
	}

	montage, err := h.montageRepo.Mutate(montageID, func(m *models.MontageSession) error {
		return m.AdvanceRound()
	})
	if err != nil {
		respondError(c, "Failed to advance montage round", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"montage":    montage,
		"request_id": requestID(c),
	})
}

// CompleteMontage termine un montage avec un résultat explicite
func (h *MontageHandler) CompleteMontage(c *gin.Context) {
	montageID, ok := parseUUIDParam(c, "montageId")
	if !ok {
		return
	}

	var req models.CompleteMontageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	montage, err := h.montageRepo.Mutate(montageID, func(m *models.MontageSession) error {
		return m.Complete(req.Outcome)
	})
	if err != nil {
		respondError(c, "Failed to complete montage", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"montage":    montage,
		"message":    "Montage completed",
		"request_id": requestID(c),
	})
}

// ReopenMontage rouvre un montage terminé
func (h *MontageHandler) ReopenMontage(c *gin.Context) {
	montageID, ok := parseUUIDParam(c, "montageId")
	if !ok {
		return
	}

	montage, err := h.montageRepo.Mutate(montageID, func(m *models.MontageSession) error {
		return m.Reopen()
	})
	if err != nil {
		respondError(c, "Failed to reopen montage", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"montage":    montage,
		"message":    "Montage reopened",
		"request_id": requestID(c),
	})
}
