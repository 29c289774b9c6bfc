// Package realtime pushes change events to connected back-office clients
// over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bakehouse/internal/logger"

	"github.com/google/uuid"
)

// Action is what happened to a record
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event announces a change to one record of a collection
type Event struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Action     Action    `json:"action"`
	Key        string    `json:"key"`
	At         time.Time `json:"at"`
}

// Publisher accepts change events. The store calls it after each commit.
type Publisher interface {
	Publish(collection string, action Action, key string)
}

// Hub fans events out to every registered client
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	log        *logger.Logger

	mu    sync.RWMutex
	count int
}

// NewHub creates a hub; call Run to start it
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run dispatches until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.setCount(0)
			return
		case c := <-h.register:
			h.clients[c] = true
			h.setCount(len(h.clients))
			h.log.Debug("realtime client connected", "client", c.ID)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.setCount(len(h.clients))
				h.log.Debug("realtime client disconnected", "client", c.ID)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
					h.log.Warn("realtime client dropped, buffer full", "client", c.ID)
				}
			}
			h.setCount(len(h.clients))
		}
	}
}

// Publish implements Publisher
func (h *Hub) Publish(collection string, action Action, key string) {
	ev := Event{
		ID:         uuid.NewString(),
		Collection: collection,
		Action:     action,
		Key:        key,
		At:         time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal realtime event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("realtime broadcast buffer full, dropping event", "collection", collection, "key", key)
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Discard is a Publisher that drops every event
type Discard struct{}

// Publish implements Publisher
func (Discard) Publish(string, Action, string) {}
