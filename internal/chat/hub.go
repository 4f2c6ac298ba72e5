package chat

import (
	"sync"
)

// Client represents a connected client.
type Client struct {
	Conn     Conn
	Username string
	Outgoing chan []byte
}

// Hub tracks the clients connected to this server instance and fans
// frames out to them. Presence across instances lives in the broker, not
// here.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// ClientCount returns number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Clients returns a snapshot of the connected clients.
func (h *Hub) Clients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// Broadcast queues data on every connected client's outgoing channel,
// the sender included. A client whose channel is full is skipped rather
// than allowed to stall the rest.
func (h *Hub) Broadcast(data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients {
		select {
		case client.Outgoing <- data:
			delivered++
		default:
			// Channel is full, skip this client.
		}
	}
	return delivered
}
