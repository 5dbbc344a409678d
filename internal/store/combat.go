// Package store maintient le miroir réactif en mémoire des sessions de
// combat. Chaque opération délègue la mutation au repository, réconcilie
// la copie retournée dans l'état local puis pousse l'état aux abonnés;
// les vues dérivées sont recalculées à la lecture, jamais stockées.
package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"directorassist/internal/apperrors"
	"directorassist/internal/models"
	"directorassist/internal/repository"
	"directorassist/internal/utils"
)

// Subscriber reçoit un instantané des sessions après chaque changement
type Subscriber func(sessions []*models.CombatSession)

// CombatStore maintient l'état réactif des sessions de combat
type CombatStore struct {
	repo repository.CombatRepositoryInterface

	mu          sync.RWMutex
	sessions    map[uuid.UUID]*models.CombatSession
	activeID    uuid.UUID
	lastErr     error
	subscribers []Subscriber
}

// NewCombatStore crée un store branché sur le repository donné.
// Le store s'abonne aux écritures du repository pour refléter les
// changements effectués en dehors de ses propres opérations.
func NewCombatStore(repo repository.CombatRepositoryInterface) *CombatStore {
	s := &CombatStore{
		repo:     repo,
		sessions: make(map[uuid.UUID]*models.CombatSession),
	}
	repo.Subscribe(s.onRepositoryChange)
	return s
}

// onRepositoryChange réconcilie une écriture du repository dans le miroir.
// Un événement nil (suppression) force un rechargement complet.
func (s *CombatStore) onRepositoryChange(session *models.CombatSession) {
	if session == nil {
		_ = s.LoadCombats()
		return
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.notify()
}

// Subscribe enregistre un abonné; il reçoit immédiatement l'état courant
func (s *CombatStore) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()

	fn(s.Sessions())
}

func (s *CombatStore) notify() {
	s.mu.RLock()
	subscribers := make([]Subscriber, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.RUnlock()

	snapshot := s.Sessions()
	for _, fn := range subscribers {
		fn(snapshot)
	}
}

// LastError retourne la dernière erreur d'opération, ou nil
func (s *CombatStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// recordError mémorise l'issue d'une opération et retourne l'erreur telle
// quelle; une opération réussie efface l'erreur précédente
func (s *CombatStore) recordError(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return err
}

// Sessions retourne un instantané de toutes les sessions connues,
// les plus récentes en premier
func (s *CombatStore) Sessions() []*models.CombatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*models.CombatSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions
}

// ActiveCombat retourne la session en focus, ou nil
func (s *CombatStore) ActiveCombat() *models.CombatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.activeID == uuid.Nil {
		return nil
	}
	return s.sessions[s.activeID]
}

// Vues dérivées

// ActiveCombats retourne les sessions en cours de jeu (active ou paused)
func (s *CombatStore) ActiveCombats() []*models.CombatSession {
	result := []*models.CombatSession{}
	for _, session := range s.Sessions() {
		if session.IsRunning() {
			result = append(result, session)
		}
	}
	return result
}

// CurrentCombatant retourne le combattant dont c'est le tour dans le focus
func (s *CombatStore) CurrentCombatant() *models.Combatant {
	session := s.ActiveCombat()
	if session == nil {
		return nil
	}
	return session.CurrentCombatant()
}

// SortedCombatants retourne les combattants du focus par initiative décroissante
func (s *CombatStore) SortedCombatants() []models.Combatant {
	session := s.ActiveCombat()
	if session == nil {
		return []models.Combatant{}
	}
	return session.SortedCombatants()
}

// Heroes retourne les héros du focus
func (s *CombatStore) Heroes() []models.Combatant {
	session := s.ActiveCombat()
	if session == nil {
		return []models.Combatant{}
	}
	return session.Heroes()
}

// Creatures retourne les créatures du focus
func (s *CombatStore) Creatures() []models.Combatant {
	session := s.ActiveCombat()
	if session == nil {
		return []models.Combatant{}
	}
	return session.Creatures()
}

// Opérations

// LoadCombats recharge toutes les sessions depuis le repository
func (s *CombatStore) LoadCombats() error {
	sessions, err := s.repo.GetAllSessions()
	if err != nil {
		return s.recordError(err)
	}

	s.mu.Lock()
	s.sessions = make(map[uuid.UUID]*models.CombatSession, len(sessions))
	for _, session := range sessions {
		s.sessions[session.ID] = session
	}
	// Le focus disparaît si la session n'existe plus
	if s.activeID != uuid.Nil {
		if _, ok := s.sessions[s.activeID]; !ok {
			s.activeID = uuid.Nil
		}
	}
	s.lastErr = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

// CreateCombat crée une nouvelle session en statut preparing
func (s *CombatStore) CreateCombat(name, description string) (*models.CombatSession, error) {
	if name == "" {
		return nil, s.recordError(apperrors.New(apperrors.KindValidation, "combat name is required"))
	}

	session := models.NewCombatSession(name, description)
	if err := s.repo.CreateSession(session); err != nil {
		return nil, s.recordError(err)
	}

	s.reconcile(session)
	return session, s.recordError(nil)
}

// SelectCombat met une session en focus. Une session introuvable efface
// le focus sans retourner d'erreur; l'échec reste lisible via LastError.
func (s *CombatStore) SelectCombat(id uuid.UUID) *models.CombatSession {
	session, err := s.repo.GetSessionByID(id)
	if err != nil {
		s.mu.Lock()
		s.activeID = uuid.Nil
		s.lastErr = err
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.activeID = session.ID
	s.lastErr = nil
	s.mu.Unlock()

	s.notify()
	return session
}

// ClearSelection efface le focus
func (s *CombatStore) ClearSelection() {
	s.mu.Lock()
	s.activeID = uuid.Nil
	s.mu.Unlock()
}

// DeleteCombat supprime une session; le focus est effacé s'il la visait
func (s *CombatStore) DeleteCombat(id uuid.UUID) error {
	if err := s.repo.DeleteSession(id); err != nil {
		return s.recordError(err)
	}

	s.mu.Lock()
	delete(s.sessions, id)
	if s.activeID == id {
		s.activeID = uuid.Nil
	}
	s.mu.Unlock()

	s.notify()
	return s.recordError(nil)
}

// UpdateCombat met à jour le nom et la description d'une session
func (s *CombatStore) UpdateCombat(id uuid.UUID, name, description string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		if name == "" {
			return apperrors.New(apperrors.KindValidation, "combat name is required")
		}
		session.Name = name
		session.Description = description
		return nil
	})
}

// Transitions de cycle de vie

// StartCombat démarre une session
func (s *CombatStore) StartCombat(id uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.Start()
	})
}

// PauseCombat met une session en pause
func (s *CombatStore) PauseCombat(id uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.Pause()
	})
}

// ResumeCombat reprend une session en pause
func (s *CombatStore) ResumeCombat(id uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.Resume()
	})
}

// EndCombat termine une session
func (s *CombatStore) EndCombat(id uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.End()
	})
}

// ReopenCombat rouvre une session terminée
func (s *CombatStore) ReopenCombat(id uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.Reopen()
	})
}

// Gestion des combattants

// AddCombatant ajoute un combattant à une session
func (s *CombatStore) AddCombatant(id uuid.UUID, combatant models.Combatant) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.AddCombatant(combatant)
	})
}

// AddQuickCombatant ajoute un combattant minimal créé à la volée.
// Les noms en double reçoivent un suffixe numéroté.
func (s *CombatStore) AddQuickCombatant(id uuid.UUID, name string, combatantType models.CombatantType, maxHP int) (*models.CombatSession, error) {
	if combatantType == "" {
		combatantType = models.CombatantTypeCreature
	}
	if maxHP <= 0 {
		maxHP = 1
	}
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.AddCombatant(models.Combatant{
			Type:       combatantType,
			Name:       session.QuickCombatantName(name),
			HP:         maxHP,
			MaxHP:      maxHP,
			Conditions: []models.Condition{},
			AdHoc:      true,
		})
	})
}

// UpdateCombatant remplace les champs modifiables d'un combattant
func (s *CombatStore) UpdateCombatant(id, combatantID uuid.UUID, update models.Combatant) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		combatant, _, err := session.FindCombatant(combatantID)
		if err != nil {
			return err
		}
		if update.Name != "" {
			combatant.Name = update.Name
		}
		if update.MaxHP > 0 {
			combatant.MaxHP = update.MaxHP
		}
		if update.HP >= 0 {
			combatant.HP = update.HP
		}
		if combatant.HP > combatant.MaxHP {
			combatant.HP = combatant.MaxHP
		}
		if update.AC > 0 {
			combatant.AC = update.AC
		}
		if update.HeroicResource != nil {
			combatant.HeroicResource = update.HeroicResource
		}
		return nil
	})
}

// RemoveCombatant retire un combattant d'une session
func (s *CombatStore) RemoveCombatant(id, combatantID uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.RemoveCombatant(combatantID)
	})
}

// MoveCombatantToPosition déplace un combattant dans l'ordre de tour
func (s *CombatStore) MoveCombatantToPosition(id, combatantID uuid.UUID, position int) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.MoveCombatantToPosition(combatantID, position)
	})
}

// SetInitiative applique un jet saisi manuellement
func (s *CombatStore) SetInitiative(id, combatantID uuid.UUID, roll models.InitiativeRoll) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.SetInitiative(combatantID, roll)
	})
}

// RollInitiative lance l'initiative d'un combattant (d20 + modificateur)
func (s *CombatStore) RollInitiative(id, combatantID uuid.UUID, modifier int) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.SetInitiative(combatantID, models.InitiativeRoll{
			Die:      utils.RollD20(),
			Modifier: modifier,
		})
	})
}

// RollInitiativeForAll lance l'initiative de tout le roster
func (s *CombatStore) RollInitiativeForAll(id uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		for i := range session.Combatants {
			modifier := 0
			if session.Combatants[i].InitiativeRoll != nil {
				modifier = session.Combatants[i].InitiativeRoll.Modifier
			}
			if err := session.SetInitiative(session.Combatants[i].ID, models.InitiativeRoll{
				Die:      utils.RollD20(),
				Modifier: modifier,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Gestion des tours

// NextTurn avance au tour suivant
func (s *CombatStore) NextTurn(id uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.NextTurn()
	})
}

// PreviousTurn recule d'un tour
func (s *CombatStore) PreviousTurn(id uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.PreviousTurn()
	})
}

// Gestion des points de vie

// ApplyDamage applique des dégâts à un combattant
func (s *CombatStore) ApplyDamage(id, combatantID uuid.UUID, amount int, source string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.ApplyDamage(combatantID, amount, source)
	})
}

// ApplyHealing soigne un combattant
func (s *CombatStore) ApplyHealing(id, combatantID uuid.UUID, amount int, source string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.ApplyHealing(combatantID, amount, source)
	})
}

// AddTemporaryHP accorde des PV temporaires à un combattant
func (s *CombatStore) AddTemporaryHP(id, combatantID uuid.UUID, amount int) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.AddTemporaryHP(combatantID, amount)
	})
}

// Gestion des conditions

// AddCondition applique une condition à un combattant
func (s *CombatStore) AddCondition(id, combatantID uuid.UUID, condition models.Condition) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.AddCondition(combatantID, condition)
	})
}

// RemoveCondition retire une condition par son nom
func (s *CombatStore) RemoveCondition(id, combatantID uuid.UUID, name string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.RemoveCondition(combatantID, name)
	})
}

// Réserves de ressources

// AddVictoryPoints ajoute des points de victoire
func (s *CombatStore) AddVictoryPoints(id uuid.UUID, amount int, reason string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.AddVictoryPoints(amount, reason)
	})
}

// RemoveVictoryPoints retire des points de victoire
func (s *CombatStore) RemoveVictoryPoints(id uuid.UUID, amount int, reason string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.RemoveVictoryPoints(amount, reason)
	})
}

// AddHeroPoints ajoute des points d'héroïsme
func (s *CombatStore) AddHeroPoints(id uuid.UUID, amount int, reason string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.AddHeroPoints(amount, reason)
	})
}

// SpendHeroPoint dépense un point d'héroïsme
func (s *CombatStore) SpendHeroPoint(id uuid.UUID, reason string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.SpendHeroPoint(reason)
	})
}

// Journal

// AddLogEntry ajoute une entrée manuelle au journal
func (s *CombatStore) AddLogEntry(id uuid.UUID, entryType models.LogEntryType, message string, combatantID *uuid.UUID) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.AddLogEntry(entryType, message, combatantID)
	})
}

// LogPowerRoll lance et journalise un jet de pouvoir (2d10 + modificateur)
func (s *CombatStore) LogPowerRoll(id, combatantID uuid.UUID, modifier int, ability string) (*models.CombatSession, error) {
	return s.mutate(id, func(session *models.CombatSession) error {
		return session.LogPowerRoll(combatantID, utils.Roll2D10(), modifier, ability)
	})
}

// mutate applique une mutation via le repository puis réconcilie le focus.
// Un échec laisse l'état en mémoire inchangé et mémorise l'erreur.
func (s *CombatStore) mutate(id uuid.UUID, fn func(*models.CombatSession) error) (*models.CombatSession, error) {
	session, err := s.repo.Mutate(id, fn)
	if err != nil {
		return nil, s.recordError(err)
	}

	s.reconcile(session)
	return session, s.recordError(nil)
}

// reconcile remplace la copie en mémoire par celle retournée du repository
func (s *CombatStore) reconcile(session *models.CombatSession) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.notify()
}
