// Package websocket pushes notification payloads to connected users.
// The hub owns the connection registry; actors hand it marshalled
// notifications and never touch connections directly.
package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// directMessage targets every open connection of one user.
type directMessage struct {
	recipientID uuid.UUID
	payload     []byte
}

// Hub maintains the set of active clients and routes notification
// payloads to them. A user may hold several connections (tabs).
type Hub struct {
	clients map[uuid.UUID]map[*Client]bool

	sendDirect chan *directMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		sendDirect: make(chan *directMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; !ok {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					if len(userClients) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.sendDirect:
			h.mu.RLock()
			for client := range h.clients[message.recipientID] {
				select {
				case client.Send <- message.payload:
				default:
					// Slow consumer; drop rather than block the hub.
					log.Printf("Send buffer full for user %s, dropping notification", client.UserID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Push queues a payload for every open connection of the recipient.
// Offline recipients are a no-op; the payload is already persisted and
// will be fetched on the next notification poll.
func (h *Hub) Push(recipientID uuid.UUID, payload []byte) {
	message := &directMessage{recipientID: recipientID, payload: payload}
	select {
	case h.sendDirect <- message:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing notification for user %s, hub busy", recipientID)
	}
}
