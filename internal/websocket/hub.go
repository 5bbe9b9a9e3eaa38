package websocket

import (
	"log/slog"
	"sync"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/metrics"
)

// Frame types sent to clients.
const (
	TypeSnapshot     = "snapshot"
	TypeError        = "error"
	TypeHouseChanged = "house_changed"
)

// Message is one server-to-client frame.
type Message struct {
	Type    string    `json:"type"`
	Entity  live.Kind `json:"entity,omitempty"`
	HouseID string    `json:"house_id"`
	Items   any       `json:"items,omitempty"`
	Balance *float64  `json:"balance,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// inbound is a client-to-server frame. The only type understood is "refresh".
type inbound struct {
	Type string `json:"type"`
}

// Hub tracks the connected clients so they can be counted and closed on
// shutdown.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "websocket"),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.clients[c] = struct{}{}
		metrics.WebSocketClients.Inc()
	}
	h.mu.Unlock()
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		metrics.WebSocketClients.Dec()
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection with a going-away status.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if c.conn != nil {
			c.conn.Close(ws.StatusGoingAway, "server shutting down")
		}
	}
	h.logger.Info("websocket clients closed", "count", len(clients))
}
