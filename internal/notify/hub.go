// Package notify fans notification events out to connected websocket clients.
package notify

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks the open feed connections per user and pushes JSON payloads
// to all of them. A user may have several tabs open.
type Hub struct {
	mu    sync.Mutex
	conns map[int64]map[*websocket.Conn]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{conns: make(map[int64]map[*websocket.Conn]bool)}
}

// Add registers a connection for a user
func (h *Hub) Add(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]bool)
	}
	h.conns[userID][conn] = true
}

// Remove unregisters a connection for a user
func (h *Hub) Remove(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Push sends a JSON payload to every connection the user has open.
// Connections that fail to write are dropped.
func (h *Hub) Push(userID int64, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[userID]
	if !ok {
		return
	}

	for conn := range set {
		if err := conn.WriteJSON(payload); err != nil {
			conn.Close()
			delete(set, conn)
		}
	}
	if len(set) == 0 {
		delete(h.conns, userID)
	}
}
