package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub tracks viewers grouped by tour session and fans navigation
// events out to everyone watching the same session.
type Hub struct {
	// Session name -> connected viewers
	sessions map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Mutex for thread-safe access to sessions map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sessions:   make(map[string]map[*Client]bool),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			viewers, ok := h.sessions[client.Session]
			if !ok {
				viewers = make(map[*Client]bool)
				h.sessions[client.Session] = viewers
			}
			viewers[client] = true
			log.Printf("👀 Viewer joined session %s (%d watching)", client.Session, len(viewers))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if viewers, ok := h.sessions[client.Session]; ok {
				if _, ok := viewers[client]; ok {
					delete(viewers, client)
					close(client.send)
					log.Printf("📴 Viewer left session %s (%d watching)", client.Session, len(viewers))
					if len(viewers) == 0 {
						delete(h.sessions, client.Session)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to every viewer of a session. Viewers
// behind a full buffer are skipped rather than blocked on.
func (h *Hub) Broadcast(session string, message interface{}) int {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.sessions[session] {
		select {
		case client.send <- jsonMsg:
			sent++
		default:
			// Buffer full or client dead
		}
	}
	return sent
}

// Viewers reports how many clients are watching a session.
func (h *Hub) Viewers(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[session])
}
