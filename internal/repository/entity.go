// internal/repository/entity.go
package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
	"directorassist/internal/database"
	"directorassist/internal/models"
)

// EntityRepositoryInterface définit les méthodes du repository des entités
type EntityRepositoryInterface interface {
	CreateEntity(entity *models.Entity) error
	GetEntityByID(id uuid.UUID) (*models.Entity, error)
	GetEntitiesByCampaign(campaignID uuid.UUID) ([]*models.Entity, error)
	GetAllEntities() ([]*models.Entity, error)
	UpdateEntity(entity *models.Entity) error
	DeleteEntity(id uuid.UUID) error
}

// EntityRepository implémente l'interface EntityRepositoryInterface
type EntityRepository struct {
	db *database.DB
}

// NewEntityRepository crée une nouvelle instance du repository des entités
func NewEntityRepository(db *database.DB) EntityRepositoryInterface {
	return &EntityRepository{db: db}
}

// CreateEntity crée une nouvelle entité de campagne
func (r *EntityRepository) CreateEntity(entity *models.Entity) error {
	fieldsJSON, err := json.Marshal(entity.Fields)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to marshal entity fields", err)
	}

	query := `
		INSERT INTO entities (id, campaign_id, kind, name, fields, created_at, updated_at)
		VALUES (:id, :campaign_id, :kind, :name, :fields, :created_at, :updated_at)`

	data := map[string]interface{}{
		"id":          entity.ID,
		"campaign_id": entity.CampaignID,
		"kind":        entity.Kind,
		"name":        entity.Name,
		"fields":      fieldsJSON,
		"created_at":  entity.CreatedAt,
		"updated_at":  entity.UpdatedAt,
	}

	if _, err := r.db.NamedExec(query, data); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to create entity", err)
	}

	return nil
}

// GetEntityByID récupère une entité par son ID
func (r *EntityRepository) GetEntityByID(id uuid.UUID) (*models.Entity, error) {
	query := `
		SELECT id, campaign_id, kind, name, fields, created_at, updated_at
		FROM entities
		WHERE id = $1`

	entity, err := scanEntity(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Newf(apperrors.KindNotFound, "entity %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to get entity", err)
	}

	return entity, nil
}

// GetEntitiesByCampaign récupère les entités d'une campagne
func (r *EntityRepository) GetEntitiesByCampaign(campaignID uuid.UUID) ([]*models.Entity, error) {
	query := `
		SELECT id, campaign_id, kind, name, fields, created_at, updated_at
		FROM entities
		WHERE campaign_id = $1
		ORDER BY name`

	return r.queryEntities(query, campaignID)
}

// GetAllEntities récupère toutes les entités
func (r *EntityRepository) GetAllEntities() ([]*models.Entity, error) {
	query := `
		SELECT id, campaign_id, kind, name, fields, created_at, updated_at
		FROM entities
		ORDER BY created_at`

	return r.queryEntities(query)
}

func (r *EntityRepository) queryEntities(query string, args ...interface{}) ([]*models.Entity, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to query entities", err)
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to scan entity", err)
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to iterate entities", err)
	}

	return entities, nil
}

// UpdateEntity réécrit une entité existante
func (r *EntityRepository) UpdateEntity(entity *models.Entity) error {
	fieldsJSON, err := json.Marshal(entity.Fields)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to marshal entity fields", err)
	}

	entity.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE entities SET
			name = :name,
			fields = :fields,
			updated_at = :updated_at
		WHERE id = :id`

	data := map[string]interface{}{
		"id":         entity.ID,
		"name":       entity.Name,
		"fields":     fieldsJSON,
		"updated_at": entity.UpdatedAt,
	}

	result, err := r.db.NamedExec(query, data)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to update entity", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to check update result", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "entity %s not found", entity.ID)
	}

	return nil
}

// DeleteEntity supprime une entité
func (r *EntityRepository) DeleteEntity(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM entities WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to delete entity", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to check delete result", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "entity %s not found", id)
	}

	return nil
}

func scanEntity(row rowScanner) (*models.Entity, error) {
	var entity models.Entity
	var fieldsJSON []byte

	err := row.Scan(
		&entity.ID, &entity.CampaignID, &entity.Kind, &entity.Name,
		&fieldsJSON, &entity.CreatedAt, &entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fieldsJSON, &entity.Fields); err != nil {
		return nil, err
	}
	if entity.Fields == nil {
		entity.Fields = map[string]interface{}{}
	}

	return &entity, nil
}
