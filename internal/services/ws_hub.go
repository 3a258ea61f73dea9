package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"photoshare-backend/internal/metrics"
	"photoshare-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	MessageTypeNotification = "notification"
	MessageTypeError        = "error"

	writeWait = 10 * time.Second
)

// ErrNotConnected is returned when a user has no open connection
var ErrNotConnected = errors.New("user is not connected")

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// wsClient serializes writes to one connection. gorilla connections allow a single concurrent writer.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections. A user may hold several connections.
type WSHub struct {
	mu          sync.RWMutex
	connections map[int64]map[*websocket.Conn]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[int64]map[*websocket.Conn]*wsClient),
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.connections[userID]
	if !ok {
		clients = make(map[*websocket.Conn]*wsClient)
		h.connections[userID] = clients
	}
	clients[conn] = &wsClient{conn: conn}
	metrics.WSConnected(1)

	log.Info().Int64("user_id", userID).Int("connections", len(clients)).Msg("WebSocket connection registered")
}

// Unregister removes and closes one connection of a user
func (h *WSHub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.connections[userID]
	if !ok {
		return
	}
	if _, ok := clients[conn]; !ok {
		return
	}

	conn.Close()
	delete(clients, conn)
	if len(clients) == 0 {
		delete(h.connections, userID)
	}
	metrics.WSConnected(-1)

	log.Info().Int64("user_id", userID).Msg("WebSocket connection unregistered")
}

// SendToUser sends a message to every connection of a user
func (h *WSHub) SendToUser(userID int64, message WSMessage) error {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.connections[userID]))
	for _, c := range h.connections[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotConnected)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var sendErr error
	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.Unregister(userID, c.conn)
			sendErr = fmt.Errorf("failed to send message: %w", err)
		}
	}
	return sendErr
}

// IsOnline checks if a user has at least one connection
func (h *WSHub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

// Publish delivers a notification to the recipient's connections. Offline recipients are not an error.
func (h *WSHub) Publish(ctx context.Context, recipientID int64, n *models.NotificationWithDetails) error {
	err := h.SendToUser(recipientID, WSMessage{Type: MessageTypeNotification, Data: n})
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

// CloseAll closes every connection, used on shutdown
func (h *WSHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.connections {
		for conn := range clients {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			conn.Close()
			metrics.WSConnected(-1)
		}
		delete(h.connections, userID)
	}
}
