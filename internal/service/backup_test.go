package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directorassist/internal/apperrors"
	"directorassist/internal/models"
	"directorassist/internal/repository"
	"directorassist/internal/store"
)

// Fakes en mémoire couvrant le contrat des repositories pour l'export/import.

type fakeCombatRepo struct {
	sessions  map[uuid.UUID]*models.CombatSession
	listeners []repository.ChangeListener
}

func newFakeCombatRepo() *fakeCombatRepo {
	return &fakeCombatRepo{sessions: make(map[uuid.UUID]*models.CombatSession)}
}

func (r *fakeCombatRepo) CreateSession(session *models.CombatSession) error {
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeCombatRepo) GetSessionByID(id uuid.UUID) (*models.CombatSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "combat session %s not found", id)
	}
	copied := *session
	return &copied, nil
}

func (r *fakeCombatRepo) GetAllSessions() ([]*models.CombatSession, error) {
	result := []*models.CombatSession{}
	for _, session := range r.sessions {
		copied := *session
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeCombatRepo) GetActiveSessions() ([]*models.CombatSession, error) {
	result := []*models.CombatSession{}
	for _, session := range r.sessions {
		if session.IsRunning() {
			copied := *session
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeCombatRepo) UpdateSession(session *models.CombatSession) error {
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeCombatRepo) DeleteSession(id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeCombatRepo) Mutate(id uuid.UUID, mutate func(*models.CombatSession) error) (*models.CombatSession, error) {
	session, err := r.GetSessionByID(id)
	if err != nil {
		return nil, err
	}
	if err := mutate(session); err != nil {
		return nil, err
	}
	return session, r.UpdateSession(session)
}

func (r *fakeCombatRepo) Subscribe(listener repository.ChangeListener) {
	r.listeners = append(r.listeners, listener)
}

type fakeMontageRepo struct {
	montages map[uuid.UUID]*models.MontageSession
}

func newFakeMontageRepo() *fakeMontageRepo {
	return &fakeMontageRepo{montages: make(map[uuid.UUID]*models.MontageSession)}
}

func (r *fakeMontageRepo) CreateMontage(montage *models.MontageSession) error {
	copied := *montage
	r.montages[montage.ID] = &copied
	return nil
}

func (r *fakeMontageRepo) GetMontageByID(id uuid.UUID) (*models.MontageSession, error) {
	montage, ok := r.montages[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "montage session %s not found", id)
	}
	copied := *montage
	return &copied, nil
}

func (r *fakeMontageRepo) GetAllMontages() ([]*models.MontageSession, error) {
	result := []*models.MontageSession{}
	for _, montage := range r.montages {
		copied := *montage
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeMontageRepo) UpdateMontage(montage *models.MontageSession) error {
	copied := *montage
	r.montages[montage.ID] = &copied
	return nil
}

func (r *fakeMontageRepo) DeleteMontage(id uuid.UUID) error {
	delete(r.montages, id)
	return nil
}

func (r *fakeMontageRepo) Mutate(id uuid.UUID, mutate func(*models.MontageSession) error) (*models.MontageSession, error) {
	montage, err := r.GetMontageByID(id)
	if err != nil {
		return nil, err
	}
	if err := mutate(montage); err != nil {
		return nil, err
	}
	return montage, r.UpdateMontage(montage)
}

type fakeEntityRepo struct {
	entities map[uuid.UUID]*models.Entity
}

func newFakeEntityRepo() *fakeEntityRepo {
	return &fakeEntityRepo{entities: make(map[uuid.UUID]*models.Entity)}
}

func (r *fakeEntityRepo) CreateEntity(entity *models.Entity) error {
	copied := *entity
	r.entities[entity.ID] = &copied
	return nil
}

func (r *fakeEntityRepo) GetEntityByID(id uuid.UUID) (*models.Entity, error) {
	entity, ok := r.entities[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "entity %s not found", id)
	}
	copied := *entity
	return &copied, nil
}

func (r *fakeEntityRepo) GetEntitiesByCampaign(campaignID uuid.UUID) ([]*models.Entity, error) {
	result := []*models.Entity{}
	for _, entity := range r.entities {
		if entity.CampaignID == campaignID {
			copied := *entity
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeEntityRepo) GetAllEntities() ([]*models.Entity, error) {
	result := []*models.Entity{}
	for _, entity := range r.entities {
		copied := *entity
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeEntityRepo) UpdateEntity(entity *models.Entity) error {
	copied := *entity
	r.entities[entity.ID] = &copied
	return nil
}

func (r *fakeEntityRepo) DeleteEntity(id uuid.UUID) error {
	delete(r.entities, id)
	return nil
}

type fakeChatRepo struct {
	messages []*models.ChatMessage
}

func (r *fakeChatRepo) CreateMessage(message *models.ChatMessage) error {
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeChatRepo) GetMessageByID(id uuid.UUID) (*models.ChatMessage, error) {
	for _, message := range r.messages {
		if message.ID == id {
			copied := *message
			return &copied, nil
		}
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "chat message %s not found", id)
}

func (r *fakeChatRepo) GetAllMessages() ([]*models.ChatMessage, error) {
	result := []*models.ChatMessage{}
	for _, message := range r.messages {
		copied := *message
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeChatRepo) DeleteMessage(id uuid.UUID) error {
	for i, message := range r.messages {
		if message.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return apperrors.Newf(apperrors.KindNotFound, "chat message %s not found", id)
}

func (r *fakeChatRepo) ClearHistory() error {
	r.messages = nil
	return nil
}

type fakeSettingsRepo struct {
	values map[string]string
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: make(map[string]string)}
}

func (r *fakeSettingsRepo) Get(key string) (string, error) {
	return r.values[key], nil
}

func (r *fakeSettingsRepo) Set(key, value string) error {
	r.values[key] = value
	return nil
}

func (r *fakeSettingsRepo) GetAll() ([]*models.Setting, error) {
	result := []*models.Setting{}
	for key, value := range r.values {
		result = append(result, &models.Setting{Key: key, Value: value})
	}
	return result, nil
}

func (r *fakeSettingsRepo) Delete(key string) error {
	delete(r.values, key)
	return nil
}

type backupFixture struct {
	service  BackupServiceInterface
	combat   *fakeCombatRepo
	montage  *fakeMontageRepo
	entity   *fakeEntityRepo
	chat     *fakeChatRepo
	settings *fakeSettingsRepo
	store    *store.CombatStore
}

func newBackupFixture(t *testing.T) *backupFixture {
	t.Helper()
	combat := newFakeCombatRepo()
	montage := newFakeMontageRepo()
	entity := newFakeEntityRepo()
	chat := &fakeChatRepo{}
	settings := newFakeSettingsRepo()
	combatStore := store.NewCombatStore(combat)
	require.NoError(t, combatStore.LoadCombats())

	return &backupFixture{
		service:  NewBackupService(combat, montage, entity, chat, settings, combatStore),
		combat:   combat,
		montage:  montage,
		entity:   entity,
		chat:     chat,
		settings: settings,
		store:    combatStore,
	}
}

func TestBackupService_ExportImportRoundTrip(t *testing.T) {
	source := newBackupFixture(t)

	entity, err := models.NewEntity(uuid.New(), models.EntityKindNPC, "Innkeeper Marta", nil)
	require.NoError(t, err)
	require.NoError(t, source.entity.CreateEntity(entity))

	message, err := models.NewChatMessage(models.ChatRoleUser, "Describe the tavern", "gpt-4o-mini")
	require.NoError(t, err)
	require.NoError(t, source.chat.CreateMessage(message))

	session := models.NewCombatSession("Skirmish", "")
	require.NoError(t, session.AddCombatant(models.Combatant{Type: models.CombatantTypeHero, Name: "Aragorn", HP: 10, MaxHP: 10, AC: 16}))
	hero := session.Combatants[0].ID
	require.NoError(t, session.AddCondition(hero, models.Condition{Name: "Bleeding", Source: "dagger", Duration: 2}))
	require.NoError(t, session.ApplyDamage(hero, 4, "goblin"))
	require.NoError(t, session.AddVictoryPoints(2, "objective secured"))
	require.NoError(t, session.AddHeroPoints(1, "heroic entrance"))
	require.NoError(t, source.combat.CreateSession(session))

	montage, err := models.NewMontageSession("Trek", "", 5, 3, 2)
	require.NoError(t, err)
	require.NoError(t, source.montage.CreateMontage(montage))

	require.NoError(t, source.settings.Set(models.SettingActiveCampaignID, "campaign-1"))
	require.NoError(t, source.settings.Set(models.SettingSelectedModel, "gemini-2.0-flash"))

	backup, err := source.service.Export()
	require.NoError(t, err)
	assert.Equal(t, models.BackupVersion, backup.Version)
	assert.Len(t, backup.Entities, 1)
	assert.Len(t, backup.ChatHistory, 1)
	assert.Len(t, backup.CombatSessions, 1)
	assert.Len(t, backup.MontageSessions, 1)
	assert.Equal(t, "campaign-1", backup.ActiveCampaignID)

	raw, err := json.Marshal(backup)
	require.NoError(t, err)

	target := newBackupFixture(t)
	report, err := target.service.Import(raw)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Entities)
	assert.Equal(t, 1, report.ChatMessages)
	assert.Equal(t, 1, report.CombatSessions)
	assert.Equal(t, 1, report.MontageSessions)
	assert.Zero(t, report.SkippedRecords)

	// Restored state is readable through the repositories and the store
	restored, err := target.combat.GetSessionByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Skirmish", restored.Name)
	assert.Len(t, target.store.Sessions(), 1)

	// Every field survives the round trip, temp HP and conditions included
	assert.Equal(t, session.Status, restored.Status)
	assert.Equal(t, session.CurrentRound, restored.CurrentRound)
	assert.Equal(t, session.CurrentTurn, restored.CurrentTurn)
	assert.Equal(t, 2, restored.VictoryPoints)
	assert.Equal(t, 1, restored.HeroPoints)
	assert.Equal(t, session.Combatants, restored.Combatants)
	assert.Equal(t, 6, restored.Combatants[0].HP)
	assert.True(t, session.CreatedAt.Equal(restored.CreatedAt))
	assert.True(t, session.UpdatedAt.Equal(restored.UpdatedAt))

	require.Len(t, restored.Log, len(session.Log))
	for i, entry := range session.Log {
		assert.Equal(t, entry.ID, restored.Log[i].ID)
		assert.Equal(t, entry.Message, restored.Log[i].Message)
		assert.Equal(t, entry.Type, restored.Log[i].Type)
		assert.Equal(t, entry.Round, restored.Log[i].Round)
		assert.Equal(t, entry.Turn, restored.Log[i].Turn)
		assert.Equal(t, entry.CombatantID, restored.Log[i].CombatantID)
		assert.True(t, entry.Timestamp.Equal(restored.Log[i].Timestamp))
	}

	restoredMontage, err := target.montage.GetMontageByID(montage.ID)
	require.NoError(t, err)
	assert.Equal(t, montage.Name, restoredMontage.Name)
	assert.Equal(t, montage.SuccessLimit, restoredMontage.SuccessLimit)
	assert.Equal(t, montage.FailureLimit, restoredMontage.FailureLimit)
	assert.True(t, montage.CreatedAt.Equal(restoredMontage.CreatedAt))

	model, err := target.settings.Get(models.SettingSelectedModel)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", model)
}

func TestBackupService_ImportToleratesMissingCollections(t *testing.T) {
	fixture := newBackupFixture(t)

	// Older export format without session collections
	raw := []byte(`{"version":1,"exportedAt":"2024-01-01T00:00:00Z","entities":[],"chatHistory":[]}`)
	report, err := fixture.service.Import(raw)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Zero(t, report.CombatSessions)
	assert.Zero(t, report.MontageSessions)
	assert.Zero(t, report.SkippedRecords)
}

func TestBackupService_ImportSkipsInvalidRecords(t *testing.T) {
	fixture := newBackupFixture(t)

	valid := models.NewCombatSession("Valid", "")
	badStatus := models.NewCombatSession("Broken", "")
	badStatus.Status = "imaginary"
	badTurn := models.NewCombatSession("Out of range", "")
	require.NoError(t, badTurn.AddCombatant(models.Combatant{Type: models.CombatantTypeHero, Name: "Solo", HP: 1, MaxHP: 1}))
	badTurn.CurrentTurn = 5

	backup := models.Backup{
		Version:        models.BackupVersion,
		CombatSessions: []models.CombatSession{*valid, *badStatus, *badTurn},
		MontageSessions: []models.MontageSession{
			{ID: uuid.New(), Name: "", Status: models.MontageStatusActive, SuccessLimit: 5, FailureLimit: 3},
		},
		Entities: []models.Entity{
			{ID: uuid.New(), Name: "", Kind: models.EntityKindNPC},
		},
		ChatHistory: []models.ChatMessage{
			{ID: uuid.New(), Role: models.ChatRoleUser, Content: ""},
		},
	}
	raw, err := json.Marshal(backup)
	require.NoError(t, err)

	report, err := fixture.service.Import(raw)
	require.NoError(t, err)

	assert.Equal(t, 1, report.CombatSessions)
	assert.Zero(t, report.MontageSessions)
	assert.Zero(t, report.Entities)
	assert.Zero(t, report.ChatMessages)
	assert.Equal(t, 5, report.SkippedRecords)
	assert.Len(t, report.Warnings, 5)

	// Only the valid session was persisted
	sessions, err := fixture.combat.GetAllSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Valid", sessions[0].Name)
}

func TestBackupService_ImportDefaultsMissingIDs(t *testing.T) {
	fixture := newBackupFixture(t)

	// Records without an id must not collide on the zero UUID
	raw := []byte(`{
		"version": 1,
		"combatSessions": [
			{"name": "First", "status": "preparing"},
			{"name": "Second", "status": "preparing"}
		],
		"montageSessions": [
			{"name": "Trek", "status": "active", "success_limit": 5, "failure_limit": 3}
		]
	}`)

	report, err := fixture.service.Import(raw)
	require.NoError(t, err)

	assert.Equal(t, 2, report.CombatSessions)
	assert.Equal(t, 1, report.MontageSessions)
	assert.Zero(t, report.SkippedRecords)

	sessions, err := fixture.combat.GetAllSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, session := range sessions {
		assert.NotEqual(t, uuid.Nil, session.ID)
	}
}

func TestBackupService_ImportRejectsMalformedDocument(t *testing.T) {
	fixture := newBackupFixture(t)

	_, err := fixture.service.Import([]byte(`{"version":`))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
