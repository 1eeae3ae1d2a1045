package realtime

import (
	"encoding/json"
	"sync"
)

// Mutation event types broadcast to a user's connected clients.
const (
	EventTaskCreated     = "task_created"
	EventTaskUpdated     = "task_updated"
	EventTaskCompleted   = "task_completed"
	EventTaskUncompleted = "task_uncompleted"
	EventTaskSkipped     = "task_skipped"
	EventTaskUnskipped   = "task_unskipped"
	EventTaskDeleted     = "task_deleted"
	EventCategoryCreated = "category_created"
	EventCategoryUpdated = "category_updated"
	EventCategoryDeleted = "category_deleted"
)

// Event is the payload sent over the websocket on every mutation.
type Event struct {
	Type     string `json:"type"`
	EntityID string `json:"entityId"`
	UserID   string `json:"userId"`
}

// Client represents a single websocket client connection.
// The actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu              sync.RWMutex
	clientsByUserID map[string]map[Client]struct{}
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = &Hub{
			clientsByUserID: make(map[string]map[Client]struct{}),
		}
	})
	return hubInstance
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clientsByUserID[userID]; !ok {
		h.clientsByUserID[userID] = make(map[Client]struct{})
	}
	h.clientsByUserID[userID][client] = struct{}{}
}

// Unregister removes a client; if the user has no more clients, cleans up
// the map entry.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clientsByUserID[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clientsByUserID, userID)
		}
	}
}

// Broadcast sends a message to all clients of a user.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clientsByUserID[userID] {
		if ok := c.Send(message); !ok {
			// client write failed; its handler cleans it up on read error
		}
	}
}

// Publish marshals a mutation event and broadcasts it to the user's clients.
func (h *Hub) Publish(userID, eventType, entityID string) {
	evt := Event{Type: eventType, EntityID: entityID, UserID: userID}
	if bytes, err := json.Marshal(evt); err == nil {
		h.Broadcast(userID, bytes)
	}
}
