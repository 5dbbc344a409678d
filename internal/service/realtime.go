package service

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"directorassist/internal/models"
	"directorassist/internal/store"
)

// RealtimeServiceInterface définit les méthodes du service temps réel
type RealtimeServiceInterface interface {
	Start() error
	Stop() error
	Broadcast(event models.ChangeEvent)
	AddConnection(conn *websocket.Conn, clientID string) error
	RemoveConnection(conn *websocket.Conn) error
}

// RealtimeService pousse les changements de sessions aux clients WebSocket.
// Il s'abonne au store de combat et diffuse chaque instantané réconcilié.
type RealtimeService struct {
	combatStore *store.CombatStore

	mu          sync.RWMutex
	connections map[*websocket.Conn]string
	stopped     bool
}

// NewRealtimeService crée une nouvelle instance du service temps réel
func NewRealtimeService(combatStore *store.CombatStore) RealtimeServiceInterface {
	return &RealtimeService{
		combatStore: combatStore,
		connections: make(map[*websocket.Conn]string),
	}
}

// Start abonne le service aux changements du store
func (s *RealtimeService) Start() error {
	s.combatStore.Subscribe(func(sessions []*models.CombatSession) {
		s.Broadcast(models.ChangeEvent{
			Type:      "combat_sessions",
			Timestamp: time.Now().UTC(),
			Payload:   sessions,
		})
	})

	logrus.Info("Realtime service started")
	return nil
}

// Stop ferme toutes les connexions
func (s *RealtimeService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for conn := range s.connections {
		conn.Close()
	}
	s.connections = make(map[*websocket.Conn]string)

	logrus.Info("Realtime service stopped")
	return nil
}

// Broadcast diffuse un événement à tous les clients connectés.
// Une connexion en échec d'écriture est fermée et retirée.
func (s *RealtimeService) Broadcast(event models.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	for conn, clientID := range s.connections {
		if err := conn.WriteJSON(event); err != nil {
			logrus.WithFields(logrus.Fields{
				"client_id": clientID,
				"error":     err.Error(),
			}).Warn("Failed to push event, dropping connection")
			conn.Close()
			delete(s.connections, conn)
		}
	}
}

// AddConnection ajoute une connexion WebSocket
func (s *RealtimeService) AddConnection(conn *websocket.Conn, clientID string) error {
	s.mu.Lock()
	s.connections[conn] = clientID
	s.mu.Unlock()

	logrus.WithField("client_id", clientID).Info("WebSocket connection added")

	// Poussée initiale de l'état courant
	return conn.WriteJSON(models.ChangeEvent{
		Type:      "combat_sessions",
		Timestamp: time.Now().UTC(),
		Payload:   s.combatStore.Sessions(),
	})
}

// RemoveConnection supprime une connexion WebSocket
func (s *RealtimeService) RemoveConnection(conn *websocket.Conn) error {
	s.mu.Lock()
	clientID, exists := s.connections[conn]
	if exists {
		delete(s.connections, conn)
	}
	s.mu.Unlock()

	if exists {
		logrus.WithField("client_id", clientID).Info("WebSocket connection removed")
	}
	return nil
}
