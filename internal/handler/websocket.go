// internal/handler/websocket.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"directorassist/internal/service"
)

// WebSocketHandler gère les connexions WebSocket du flux de changements
type WebSocketHandler struct {
	upgrader        websocket.Upgrader
	realtimeService service.RealtimeServiceInterface
}

// NewWebSocketHandler crée une nouvelle instance du handler WebSocket
func NewWebSocketHandler(realtimeService service.RealtimeServiceInterface) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // En production, vérifier l'origine
			},
		},
		realtimeService: realtimeService,
	}
}

// HandleWebSocket abonne un client au flux de changements de sessions
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	if uid, exists := c.Get("user_id"); exists {
		clientID = uid.(string)
	}

	if err := h.realtimeService.AddConnection(conn, clientID); err != nil {
		logrus.WithError(err).Error("Failed to add WebSocket connection")
		return
	}
	defer h.realtimeService.RemoveConnection(conn)

	// Boucle de lecture: le flux est descendant, seul le ping est accepté
	for {
		var message map[string]interface{}
		err := conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Error("WebSocket unexpected close error")
			}
			break
		}

		if messageType, ok := message["type"].(string); ok && messageType == "ping" {
			conn.WriteJSON(map[string]interface{}{
				"type": "pong",
			})
		}
	}

	logrus.WithField("client_id", clientID).Info("WebSocket connection closed")
}
