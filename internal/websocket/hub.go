package websocket

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizlive-backend/internal/logger"
)

// Hub is the explicit registry of connections currently receiving
// broadcasts for the active session. Every connection joins the room on
// upgrade and leaves on disconnect; the game engine iterates it on every
// state mutation.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     zerolog.Logger
}

// NewHub creates an empty connection registry.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     logger.Component(log, "hub"),
	}
}

// Register adds a connection to the room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID()] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Str("conn_id", c.ID()).Int("connections", n).Msg("Client registered")
}

// Unregister removes a connection from the room.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID())
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Str("conn_id", c.ID()).Int("connections", n).Msg("Client unregistered")
}

// Broadcast fans an event out to every registered connection. The host's
// own connection is included so it sees its changes reflected identically.
func (h *Hub) Broadcast(event Event, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Send(event, payload)
	}
}

// Len reports the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
