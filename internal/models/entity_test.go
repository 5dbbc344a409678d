package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directorassist/internal/apperrors"
)

func TestNewEntity(t *testing.T) {
	campaignID := uuid.New()
	entity, err := NewEntity(campaignID, EntityKindNPC, "Innkeeper Marta", map[string]interface{}{
		"location": "The Sleeping Drake",
	})
	require.NoError(t, err)
	assert.Equal(t, campaignID, entity.CampaignID)
	assert.Equal(t, EntityKindNPC, entity.Kind)
	assert.Equal(t, "The Sleeping Drake", entity.Fields["location"])
	assert.NotEqual(t, uuid.Nil, entity.ID)
}

func TestNewEntity_Validation(t *testing.T) {
	campaignID := uuid.New()

	_, err := NewEntity(campaignID, EntityKindNPC, "", nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = NewEntity(campaignID, "dragon", "Smaug", nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestNewChatMessage(t *testing.T) {
	msg, err := NewChatMessage(ChatRoleUser, "Describe the tavern", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, ChatRoleUser, msg.Role)
	assert.NotEqual(t, uuid.Nil, msg.ID)

	_, err = NewChatMessage(ChatRoleUser, "", "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = NewChatMessage("narrator", "hello", "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
