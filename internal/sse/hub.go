// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"sync"

	"github.com/samber/lo"
)

// clientBuffer is the number of undelivered events a client may hold.
const clientBuffer = 10

type client struct {
	ch    chan string
	admin bool
}

// Hub fans events out to connected browsers. An account may be connected
// from several tabs or devices at once.
type Hub struct {
	clients map[string][]client // by account id
	mu      sync.RWMutex
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string][]client)}
}

// Register adds a client for userID and returns the channel to read events
// from. Admin clients also receive moderation events.
func (h *Hub) Register(userID string, admin bool) chan string {
	ch := make(chan string, clientBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[userID] = append(h.clients[userID], client{ch: ch, admin: admin})
	return ch
}

// Unregister removes and closes a client channel.
func (h *Hub) Unregister(userID string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := lo.Filter(h.clients[userID], func(c client, _ int) bool {
		return c.ch != ch
	})
	if len(remaining) == 0 {
		delete(h.clients, userID)
	} else {
		h.clients[userID] = remaining
	}

	close(ch)
}

// SendToUser sends a message to every client of userID.
func (h *Hub) SendToUser(userID, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[userID] {
		send(c, message)
	}
}

// SendToAdmins sends a message to every admin client.
func (h *Hub) SendToAdmins(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for _, c := range lo.Filter(clients, func(c client, _ int) bool { return c.admin }) {
			send(c, message)
		}
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for _, c := range clients {
			send(c, message)
		}
	}
}

// send drops the message when the client's buffer is full.
func send(c client, message string) {
	select {
	case c.ch <- message:
	default:
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.clients), func(clients []client) int {
		return len(clients)
	})
}

// UserCount returns the number of accounts with active connections.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
