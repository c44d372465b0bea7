// Package websocket pushes event-change notifications to open calendar views
// so every screen resynchronizes after any user's mutation.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// EventChange tells connected clients that the event list changed and the
// grid should be reloaded. Action is "created", "updated", or "deleted".
type EventChange struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

// Hub tracks connected clients and fans change notifications out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// NotifyEventChange broadcasts a change to all connected clients. Clients
// with a full send buffer are skipped; they will catch up on their next page
// load.
func (h *Hub) NotifyEventChange(action string, id int64) {
	data, err := json.Marshal(EventChange{Entity: "event", Action: action, ID: id})
	if err != nil {
		h.logger.Error("marshal event change", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
