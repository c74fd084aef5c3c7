package notifier

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/utils"
)

type broadcastMessage struct {
	EventID string
	Message []byte
}

// Hub fans notifications out to websocket clients, grouped by event.
type Hub struct {
	clients    map[string]map[*client]bool
	broadcast  chan broadcastMessage
	register   chan *client
	unregister chan *client
	mutex      sync.Mutex
	log        *zap.Logger
}

type client struct {
	eventID string
	userID  string
	conn    *websocket.Conn
	send    chan []byte
	hub     *Hub
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]bool),
		broadcast:  make(chan broadcastMessage),
		register:   make(chan *client),
		unregister: make(chan *client),
		log:        log,
	}
}

func (h *Hub) Run() {
	h.log.Info("websocket hub started")
	for {
		select {
		case c := <-h.register:
			h.mutex.Lock()
			if _, ok := h.clients[c.eventID]; !ok {
				h.clients[c.eventID] = make(map[*client]bool)
			}
			h.clients[c.eventID][c] = true
			h.mutex.Unlock()

		case c := <-h.unregister:
			h.mutex.Lock()
			if clients, ok := h.clients[c.eventID]; ok {
				if _, ok := clients[c]; ok {
					delete(clients, c)
					close(c.send)
					if len(clients) == 0 {
						delete(h.clients, c.eventID)
					}
				}
			}
			h.mutex.Unlock()

		case bm := <-h.broadcast:
			h.mutex.Lock()
			if clients, ok := h.clients[bm.EventID]; ok {
				for c := range clients {
					select {
					case c.send <- bm.Message:
					default:
						close(c.send)
						delete(clients, c)
					}
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Broadcast sends payload to every client subscribed to the event. It
// never blocks the caller: slow clients are dropped, not waited for.
func (h *Hub) Broadcast(eventID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("failed to marshal broadcast payload", zap.Error(err))
		return
	}
	h.broadcast <- broadcastMessage{EventID: eventID, Message: data}
}

// ServeWS upgrades the connection and subscribes the caller to the
// event stream named in the query string.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		http.Error(w, "Authentication token required", http.StatusUnauthorized)
		return
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		http.Error(w, "eventId query parameter required", http.StatusBadRequest)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		eventID: eventID,
		userID:  claims.UserID,
		conn:    conn,
		send:    make(chan []byte, 256),
		hub:     h,
	}

	c.hub.register <- c

	go c.writePump()
	go c.readPump()

	welcome := map[string]interface{}{
		"type":      "welcome",
		"eventId":   eventID,
		"userID":    claims.UserID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	welcomeBytes, _ := json.Marshal(welcome)
	conn.WriteMessage(websocket.TextMessage, welcomeBytes)
}

func (c *client) writePump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
