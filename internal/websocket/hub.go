package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	ProjectID() int32
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by project.
// It is safe for concurrent use.
type Hub struct {
	// projects maps project ID to a map of client ID to client
	projects map[int32]map[string]ClientInterface
	mu       sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		projects: make(map[int32]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its project
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	projectID := client.ProjectID()
	clientID := client.ID()

	if h.projects[projectID] == nil {
		h.projects[projectID] = make(map[string]ClientInterface)
	}

	h.projects[projectID][clientID] = client

	log.Debug().
		Int32("project_id", projectID).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	projectID := client.ProjectID()
	clientID := client.ID()

	if clients, ok := h.projects[projectID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			if len(clients) == 0 {
				delete(h.projects, projectID)
			}

			log.Debug().
				Int32("project_id", projectID).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients watching a specific project
func (h *Hub) Broadcast(projectID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("project_id", projectID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.projects[projectID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	h.sendAll(clientsCopy, data, event.Type)
}

// BroadcastAll sends an event to every connected client regardless of project.
// Used for system-wide events such as period close/reopen.
func (h *Hub) BroadcastAll(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	var clientsCopy []ClientInterface
	for _, clients := range h.projects {
		for _, client := range clients {
			clientsCopy = append(clientsCopy, client)
		}
	}
	h.mu.RUnlock()

	if len(clientsCopy) == 0 {
		return
	}
	h.sendAll(clientsCopy, data, event.Type)
}

func (h *Hub) sendAll(clients []ClientInterface, data []byte, eventType string) {
	for _, client := range clients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("event_type", eventType).
		Int("client_count", len(clients)).
		Msg("Broadcast event")
}

// Shutdown closes every connected client. Used during server shutdown.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for projectID, clients := range h.projects {
		for _, client := range clients {
			if err := client.Close(); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", client.ID()).
					Msg("Failed to close client during shutdown")
			}
		}
		delete(h.projects, projectID)
	}
}

// ClientCount returns the number of clients watching a project
func (h *Hub) ClientCount(projectID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.projects[projectID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.projects {
		total += len(clients)
	}
	return total
}
