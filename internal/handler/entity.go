// internal/handler/entity.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"directorassist/internal/models"
	"directorassist/internal/repository"
)

// EntityHandler gère les endpoints des entités de campagne
type EntityHandler struct {
	entityRepo repository.EntityRepositoryInterface
}

// NewEntityHandler crée une nouvelle instance du handler des entités
func NewEntityHandler(entityRepo repository.EntityRepositoryInterface) *EntityHandler {
	return &EntityHandler{
		entityRepo: entityRepo,
	}
}

// CreateEntity crée une nouvelle entité de campagne
func (h *EntityHandler) CreateEntity(c *gin.Context) {
	var req models.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	entity, err := models.NewEntity(req.CampaignID, req.Kind, req.Name, req.Fields)
	if err != nil {
		respondError(c, "Failed to create entity", err)
		return
	}

	if err := h.entityRepo.CreateEntity(entity); err != nil {
		respondError(c, "Failed to create entity", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entity":     entity,
		"request_id": requestID(c),
	})
}

// ListEntities retourne les entités, filtrables par campagne
func (h *EntityHandler) ListEntities(c *gin.Context) {
	var entities []*models.Entity
	var err error

	if campaign := c.Query("campaignId"); campaign != "" {
		campaignID, parseErr := uuid.Parse(campaign)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid campaignId",
				"request_id": requestID(c),
			})
			return
		}
		entities, err = h.entityRepo.GetEntitiesByCampaign(campaignID)
	} else {
		entities, err = h.entityRepo.GetAllEntities()
	}

	if err != nil {
		respondError(c, "Failed to load entities", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entities":   entities,
		"total":      len(entities),
		"request_id": requestID(c),
	})
}

// GetEntity retourne une entité par son ID
func (h *EntityHandler) GetEntity(c *gin.Context) {
	entityID, ok := parseUUIDParam(c, "entityId")
	if !ok {
		return
	}

	entity, err := h.entityRepo.GetEntityByID(entityID)
	if err != nil {
		respondError(c, "Failed to get entity", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entity":     entity,
		"request_id": requestID(c),
	})
}

// UpdateEntity met à jour une entité
func (h *EntityHandler) UpdateEntity(c *gin.Context) {
	entityID, ok := parseUUIDParam(c, "entityId")
	if !ok {
		return
	}

	var req models.UpdateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	entity, err := h.entityRepo.GetEntityByID(entityID)
	if err != nil {
		respondError(c, "Failed to get entity", err)
		return
	}

	if req.Name != nil {
		entity.Name = *req.Name
	}
	if req.Fields != nil {
		entity.Fields = req.Fields
	}

	if err := h.entityRepo.UpdateEntity(entity); err != nil {
		respondError(c, "Failed to update entity", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entity":     entity,
		"request_id": requestID(c),
	})
}

// DeleteEntity supprime une entité
func (h *EntityHandler) DeleteEntity(c *gin.Context) {
	entityID, ok := parseUUIDParam(c, "entityId")
	if !ok {
		return
	}

	if err := h.entityRepo.DeleteEntity(entityID); err != nil {
		respondError(c, "Failed to delete entity", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Entity deleted successfully",
		"request_id": requestID(c),
	})
}
