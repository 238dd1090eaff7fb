package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pagelift/backend/pkg/logger"
)

// ScoreEvent is pushed to dashboard clients when a page score changes
type ScoreEvent struct {
	Type      string    `json:"type"`
	PageID    string    `json:"page_id"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub broadcasts score-update events to connected websocket clients.
// It implements scoring.Notifier.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan ScoreEvent
}

// NewHub creates a new event hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard origin checks happen at the auth layer in front.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*websocket.Conn]chan ScoreEvent),
	}
}

// ServeWS upgrades the connection and streams score events until the client
// disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	events := make(chan ScoreEvent, 16)

	h.mu.Lock()
	h.clients[conn] = events
	h.mu.Unlock()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("Dashboard client connected")

	go h.writeLoop(conn, events)
	h.readLoop(conn)
}

// PageScoreUpdated queues a score event for every connected client.
// Non-blocking: slow clients drop events rather than stalling the scoring
// pipeline.
func (h *Hub) PageScoreUpdated(pageID string, score int) {
	event := ScoreEvent{
		Type:      "page_score_updated",
		PageID:    pageID,
		Score:     score,
		Timestamp: time.Now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, events := range h.clients {
		select {
		case events <- event:
		default:
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, events chan ScoreEvent) {
	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(conn)
			return
		}
	}
}

// readLoop drains client messages so control frames are processed; any read
// error means the client went away
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	events, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(events)
	}
	h.mu.Unlock()

	if ok {
		conn.Close()
		h.logger.Debug("Dashboard client disconnected")
	}
}
