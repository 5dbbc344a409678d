package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directorassist/internal/apperrors"
)

func newTestSession(t *testing.T, names ...string) *CombatSession {
	t.Helper()
	session := NewCombatSession("Ambush at the bridge", "")
	for _, name := range names {
		err := session.AddCombatant(Combatant{
			Type:  CombatantTypeHero,
			Name:  name,
			HP:    10,
			MaxHP: 10,
		})
		require.NoError(t, err)
	}
	return session
}

func TestCombatSession_Lifecycle(t *testing.T) {
	session := newTestSession(t, "Aragorn")

	assert.Equal(t, CombatStatusPreparing, session.Status)
	assert.False(t, session.IsRunning())

	require.NoError(t, session.Start())
	assert.Equal(t, CombatStatusActive, session.Status)
	assert.Equal(t, 1, session.CurrentRound)
	assert.Equal(t, 0, session.CurrentTurn)
	assert.True(t, session.IsRunning())

	require.NoError(t, session.Pause())
	assert.Equal(t, CombatStatusPaused, session.Status)
	assert.True(t, session.IsRunning())

	require.NoError(t, session.Resume())
	assert.Equal(t, CombatStatusActive, session.Status)

	require.NoError(t, session.End())
	assert.Equal(t, CombatStatusCompleted, session.Status)
	assert.False(t, session.IsRunning())

	require.NoError(t, session.Reopen())
	assert.Equal(t, CombatStatusActive, session.Status)
}

func TestCombatSession_InvalidTransitions(t *testing.T) {
	session := newTestSession(t, "Aragorn")

	// Pause, resume and end require a running combat
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.Pause()))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.Resume()))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.End()))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.Reopen()))

	require.NoError(t, session.Start())
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.Start()))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.Resume()))

	require.NoError(t, session.End())
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.Pause()))
}

func TestCombatSession_EndFromPaused(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	require.NoError(t, session.Start())
	require.NoError(t, session.Pause())
	require.NoError(t, session.End())
	assert.Equal(t, CombatStatusCompleted, session.Status)
}

func TestCombatSession_NextTurnWrapsRound(t *testing.T) {
	session := newTestSession(t, "Aragorn", "Legolas", "Gimli")
	require.NoError(t, session.Start())

	require.NoError(t, session.NextTurn())
	require.NoError(t, session.NextTurn())
	assert.Equal(t, 1, session.CurrentRound)
	assert.Equal(t, 2, session.CurrentTurn)

	// Advancing past the last combatant starts a new round
	require.NoError(t, session.NextTurn())
	assert.Equal(t, 2, session.CurrentRound)
	assert.Equal(t, 0, session.CurrentTurn)
}

func TestCombatSession_PreviousTurn(t *testing.T) {
	session := newTestSession(t, "Aragorn", "Legolas", "Gimli")
	require.NoError(t, session.Start())

	// At the very start of the encounter, rewinding is a no-op
	require.NoError(t, session.PreviousTurn())
	assert.Equal(t, 1, session.CurrentRound)
	assert.Equal(t, 0, session.CurrentTurn)

	require.NoError(t, session.NextTurn())
	require.NoError(t, session.PreviousTurn())
	assert.Equal(t, 1, session.CurrentRound)
	assert.Equal(t, 0, session.CurrentTurn)

	// Rewinding across a round boundary lands on the last combatant
	require.NoError(t, session.NextTurn())
	require.NoError(t, session.NextTurn())
	require.NoError(t, session.NextTurn())
	assert.Equal(t, 2, session.CurrentRound)
	require.NoError(t, session.PreviousTurn())
	assert.Equal(t, 1, session.CurrentRound)
	assert.Equal(t, 2, session.CurrentTurn)
}

func TestCombatSession_TurnsWithoutCombatants(t *testing.T) {
	session := NewCombatSession("Empty", "")
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.NextTurn()))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.PreviousTurn()))
}

func TestCombatSession_ConditionsTickAtRoundChange(t *testing.T) {
	session := newTestSession(t, "Aragorn", "Legolas")
	require.NoError(t, session.Start())

	hero := session.Combatants[0]
	require.NoError(t, session.AddCondition(hero.ID, Condition{Name: "Stunned", Duration: 2}))
	require.NoError(t, session.AddCondition(hero.ID, Condition{Name: "Cursed", Duration: 0}))

	// Complete round 1: duration 2 -> 1, indefinite condition untouched
	require.NoError(t, session.NextTurn())
	require.NoError(t, session.NextTurn())
	require.Equal(t, 2, session.CurrentRound)

	combatant, _, err := session.FindCombatant(hero.ID)
	require.NoError(t, err)
	require.Len(t, combatant.Conditions, 2)
	assert.Equal(t, 1, combatant.Conditions[0].Duration)

	// Complete round 2: Stunned expires, Cursed remains
	require.NoError(t, session.NextTurn())
	require.NoError(t, session.NextTurn())

	combatant, _, err = session.FindCombatant(hero.ID)
	require.NoError(t, err)
	require.Len(t, combatant.Conditions, 1)
	assert.Equal(t, "Cursed", combatant.Conditions[0].Name)
	assert.False(t, combatant.HasCondition("Stunned"))
}

func TestCombatSession_ApplyDamage(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	hero := session.Combatants[0]

	require.NoError(t, session.ApplyDamage(hero.ID, 4, "goblin"))
	combatant, _, err := session.FindCombatant(hero.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, combatant.HP)

	// HP never drops below zero
	require.NoError(t, session.ApplyDamage(hero.ID, 100, ""))
	combatant, _, _ = session.FindCombatant(hero.ID)
	assert.Equal(t, 0, combatant.HP)

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(session.ApplyDamage(hero.ID, -1, "")))
}

func TestCombatSession_DamageConsumesTempHPFirst(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	hero := session.Combatants[0]

	require.NoError(t, session.AddTemporaryHP(hero.ID, 5))
	require.NoError(t, session.ApplyDamage(hero.ID, 7, ""))

	combatant, _, err := session.FindCombatant(hero.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, combatant.TempHP)
	assert.Equal(t, 8, combatant.HP)
}

func TestCombatSession_HealingCapsAtMaxHP(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	hero := session.Combatants[0]

	require.NoError(t, session.ApplyDamage(hero.ID, 6, ""))
	require.NoError(t, session.ApplyHealing(hero.ID, 100, "potion"))

	combatant, _, err := session.FindCombatant(hero.ID)
	require.NoError(t, err)
	assert.Equal(t, combatant.MaxHP, combatant.HP)

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(session.ApplyHealing(hero.ID, -1, "")))
}

func TestCombatSession_TemporaryHPKeepsHighest(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	hero := session.Combatants[0]

	require.NoError(t, session.AddTemporaryHP(hero.ID, 5))
	require.NoError(t, session.AddTemporaryHP(hero.ID, 3))

	combatant, _, err := session.FindCombatant(hero.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, combatant.TempHP)

	require.NoError(t, session.AddTemporaryHP(hero.ID, 8))
	combatant, _, _ = session.FindCombatant(hero.ID)
	assert.Equal(t, 8, combatant.TempHP)
}

func TestCombatSession_SortedCombatantsStable(t *testing.T) {
	session := newTestSession(t, "First", "Second", "Third")
	session.Combatants[0].Initiative = 10
	session.Combatants[1].Initiative = 15
	session.Combatants[2].Initiative = 10

	sorted := session.SortedCombatants()
	require.Len(t, sorted, 3)
	assert.Equal(t, "Second", sorted[0].Name)
	// Ties keep insertion order
	assert.Equal(t, "First", sorted[1].Name)
	assert.Equal(t, "Third", sorted[2].Name)

	// The underlying roster is left untouched
	assert.Equal(t, "First", session.Combatants[0].Name)
}

func TestCombatSession_SetInitiative(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	hero := session.Combatants[0]

	require.NoError(t, session.SetInitiative(hero.ID, InitiativeRoll{Die: 14, Modifier: 3}))
	combatant, _, err := session.FindCombatant(hero.ID)
	require.NoError(t, err)
	assert.Equal(t, 17, combatant.Initiative)
	require.NotNil(t, combatant.InitiativeRoll)
	assert.Equal(t, 14, combatant.InitiativeRoll.Die)
}

func TestCombatSession_QuickCombatantName(t *testing.T) {
	session := newTestSession(t)

	assert.Equal(t, "Goblin", session.QuickCombatantName("Goblin"))
	require.NoError(t, session.AddCombatant(Combatant{Type: CombatantTypeCreature, Name: "Goblin", HP: 5, MaxHP: 5}))
	assert.Equal(t, "Goblin (2)", session.QuickCombatantName("Goblin"))
	require.NoError(t, session.AddCombatant(Combatant{Type: CombatantTypeCreature, Name: "Goblin (2)", HP: 5, MaxHP: 5}))
	assert.Equal(t, "Goblin (3)", session.QuickCombatantName("Goblin"))
}

func TestCombatSession_AddCombatantValidation(t *testing.T) {
	session := newTestSession(t)

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(session.AddCombatant(Combatant{Name: ""})))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(session.AddCombatant(Combatant{Name: "Goblin", HP: -1})))

	require.NoError(t, session.AddCombatant(Combatant{Type: CombatantTypeCreature, Name: "Goblin", HP: 5, MaxHP: 5}))
	added := session.Combatants[0]
	assert.NotEqual(t, uuid.Nil, added.ID)
	assert.NotNil(t, added.Conditions)
	assert.Equal(t, 0, added.TurnOrder)
}

func TestCombatSession_RemoveCombatantAdjustsCurrentTurn(t *testing.T) {
	session := newTestSession(t, "Aragorn", "Legolas", "Gimli")
	require.NoError(t, session.Start())
	require.NoError(t, session.NextTurn())
	require.NoError(t, session.NextTurn())
	require.Equal(t, 2, session.CurrentTurn)

	// Removing a combatant before the current one shifts the index down
	require.NoError(t, session.RemoveCombatant(session.Combatants[0].ID))
	assert.Equal(t, 1, session.CurrentTurn)
	assert.Equal(t, "Gimli", session.CurrentCombatant().Name)

	// Removing the last combatant while it holds the turn wraps to zero
	require.NoError(t, session.RemoveCombatant(session.Combatants[1].ID))
	assert.Equal(t, 0, session.CurrentTurn)

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(session.RemoveCombatant(uuid.New())))
}

func TestCombatSession_RemoveCombatantCleansGroups(t *testing.T) {
	session := newTestSession(t, "Aragorn", "Legolas")
	first := session.Combatants[0].ID
	second := session.Combatants[1].ID
	session.Groups = map[string][]uuid.UUID{
		"fellowship": {first, second},
		"scouts":     {second},
	}

	require.NoError(t, session.RemoveCombatant(second))
	assert.Equal(t, []uuid.UUID{first}, session.Groups["fellowship"])
	// Empty groups are dropped entirely
	_, exists := session.Groups["scouts"]
	assert.False(t, exists)
}

func TestCombatSession_MoveCombatantKeepsCurrentTurn(t *testing.T) {
	session := newTestSession(t, "Aragorn", "Legolas", "Gimli")
	require.NoError(t, session.Start())
	require.NoError(t, session.NextTurn())
	require.Equal(t, "Legolas", session.CurrentCombatant().Name)

	// Move the first combatant to the back; the turn stays on Legolas
	require.NoError(t, session.MoveCombatantToPosition(session.Combatants[0].ID, 2))
	assert.Equal(t, "Legolas", session.CurrentCombatant().Name)
	assert.Equal(t, "Aragorn", session.Combatants[2].Name)

	// Positions are clamped to the roster bounds
	require.NoError(t, session.MoveCombatantToPosition(session.Combatants[0].ID, 99))
	assert.Equal(t, "Legolas", session.Combatants[2].Name)

	for i, c := range session.Combatants {
		assert.Equal(t, i, c.TurnOrder)
	}
}

func TestCombatSession_ResourcePools(t *testing.T) {
	session := newTestSession(t, "Aragorn")

	require.NoError(t, session.AddVictoryPoints(3, "objective secured"))
	assert.Equal(t, 3, session.VictoryPoints)

	// Removal floors at zero
	require.NoError(t, session.RemoveVictoryPoints(5, ""))
	assert.Equal(t, 0, session.VictoryPoints)

	require.NoError(t, session.AddHeroPoints(2, ""))
	require.NoError(t, session.SpendHeroPoint("reroll"))
	require.NoError(t, session.SpendHeroPoint(""))
	assert.Equal(t, 0, session.HeroPoints)

	// Spending from an empty pool is a conflict
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(session.SpendHeroPoint("")))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(session.AddVictoryPoints(-1, "")))
}

func TestCombatSession_Conditions(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	hero := session.Combatants[0]

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(session.AddCondition(hero.ID, Condition{})))

	require.NoError(t, session.AddCondition(hero.ID, Condition{Name: "Prone"}))
	require.NoError(t, session.AddCondition(hero.ID, Condition{Name: "Prone", Source: "trap"}))

	// RemoveCondition strips every occurrence of the name
	require.NoError(t, session.RemoveCondition(hero.ID, "Prone"))
	combatant, _, err := session.FindCombatant(hero.ID)
	require.NoError(t, err)
	assert.Empty(t, combatant.Conditions)

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(session.RemoveCondition(hero.ID, "Prone")))
}

func TestCombatSession_Log(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	hero := session.Combatants[0]
	initial := len(session.Log)

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(session.AddLogEntry(LogTypeSystem, "", nil)))

	// An empty type defaults to system
	require.NoError(t, session.AddLogEntry("", "The door creaks open", nil))
	assert.Equal(t, LogTypeSystem, session.Log[initial].Type)

	require.NoError(t, session.LogPowerRoll(hero.ID, [2]int{7, 4}, 2, "Might"))
	last := session.Log[len(session.Log)-1]
	assert.Equal(t, LogTypePowerRoll, last.Type)
	assert.Contains(t, last.Message, "13")
	assert.Contains(t, last.Message, "Might")

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(session.LogPowerRoll(uuid.New(), [2]int{1, 1}, 0, "")))
}

func TestCombatSession_HeroesAndCreatures(t *testing.T) {
	session := newTestSession(t, "Aragorn")
	require.NoError(t, session.AddCombatant(Combatant{Type: CombatantTypeCreature, Name: "Goblin", HP: 5, MaxHP: 5}))

	heroes := session.Heroes()
	creatures := session.Creatures()
	require.Len(t, heroes, 1)
	require.Len(t, creatures, 1)
	assert.Equal(t, "Aragorn", heroes[0].Name)
	assert.Equal(t, "Goblin", creatures[0].Name)
	assert.True(t, heroes[0].IsHero())
	assert.False(t, creatures[0].IsHero())
}
