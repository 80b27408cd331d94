package websocket

import (
	"context"
	"sync"

	"finance-dashboard/internal/pkg/logger"

	"github.com/google/uuid"
)

// Hub tracks the live-reload connections of every visitor.
type Hub struct {
	// Registered clients map: VisitorID -> List of Clients (multiple tabs)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	// done is closed once Run has returned.
	done chan struct{}

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID][]*Client),
		logger:     log,
	}
}

// Run serves register and unregister requests until ctx is cancelled. It must
// be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.VisitorID] = append(h.clients[client.VisitorID], client)
			h.mu.Unlock()
			h.logger.Debug("HUB", "Client registered", map[string]interface{}{"visitor_id": client.VisitorID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register adds the client to the hub. It reports false once the hub has
// stopped, in which case the client was not added.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes the client and closes its Send channel. It returns
// immediately once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.VisitorID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.VisitorID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.VisitorID]) == 0 {
		delete(h.clients, client.VisitorID)
		h.logger.Debug("HUB", "Visitor has no open connections", map[string]interface{}{"visitor_id": client.VisitorID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// Send delivers payload to every open connection of the visitor. Clients whose
// buffer is full are dropped; their page falls back to the meta refresh.
func (h *Hub) Send(visitorID uuid.UUID, payload []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[visitorID] {
		select {
		case client.Send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("HUB", "Client send buffer full, dropping connection", map[string]interface{}{"visitor_id": visitorID})
		go h.Unregister(client)
	}
}

// Connections reports how many connections the visitor has open.
func (h *Hub) Connections(visitorID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[visitorID])
}
