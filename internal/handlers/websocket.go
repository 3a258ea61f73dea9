package handlers

import (
	"net/http"
	"time"

	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WebSocketHandler streams notifications to connected clients
type WebSocketHandler struct {
	hub         *services.WSHub
	userService *services.UserService
	cookieName  string
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. An empty allowedOrigins list accepts any origin.
func NewWebSocketHandler(hub *services.WSHub, userService *services.UserService, cookieName string, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		userService: userService,
		cookieName:  cookieName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// HandleWebSocket handles GET /ws. The session comes from the cookie, a bearer header or ?token=.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r, h.cookieName)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		respondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(userID, conn, done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The stream is server to client; reads only detect closure and drive pong handling.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Int64("user_id", userID).Msg("WebSocket closed unexpectedly")
			}
			return
		}
	}
}

func (h *WebSocketHandler) keepAlive(userID int64, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				log.Debug().Err(err).Int64("user_id", userID).Msg("WebSocket ping failed")
				return
			}
		case <-done:
			return
		}
	}
}
