// Package services provides business logic services
package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/nats-io/nats.go"
)

// Event subjects on the internal bus.
const (
	SubjectTaskAssigned  = "tasks.assigned"
	SubjectTaskCompleted = "tasks.completed"
	SubjectUserPromoted  = "users.promoted"
)

// EventMessage is the JSON envelope sent to websocket clients.
type EventMessage struct {
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// EventHub bridges task lifecycle events from NATS to websocket clients
// (the admin dashboard's live view).
type EventHub struct {
	natsConn *nats.Conn

	clients   map[*EventClient]bool
	clientsMu sync.RWMutex

	register   chan *EventClient
	unregister chan *EventClient

	subs []*nats.Subscription
}

// NewEventHub creates a hub subscribed to task and user events.
func NewEventHub(natsConn *nats.Conn) (*EventHub, error) {
	h := &EventHub{
		natsConn:   natsConn,
		clients:    make(map[*EventClient]bool),
		register:   make(chan *EventClient),
		unregister: make(chan *EventClient),
	}

	for _, subject := range []string{"tasks.>", "users.>"} {
		sub, err := natsConn.Subscribe(subject, h.relay)
		if err != nil {
			return nil, err
		}
		h.subs = append(h.subs, sub)
	}

	return h, nil
}

// Run starts the hub's main loop
func (h *EventHub) Run() {
	log.Println("📺 Event hub started")

	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.clientsMu.Unlock()
			log.Printf("📺 Client connected: %s", client.remoteAddr)

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMu.Unlock()
			log.Printf("📺 Client disconnected: %s", client.remoteAddr)
		}
	}
}

// relay fans a NATS event out to every connected client.
func (h *EventHub) relay(msg *nats.Msg) {
	out, err := json.Marshal(EventMessage{
		Type:    "event",
		Subject: msg.Subject,
		Data:    msg.Data,
	})
	if err != nil {
		return
	}

	h.clientsMu.RLock()
	for client := range h.clients {
		select {
		case client.send <- out:
		default:
			// Client buffer full, drop the event
		}
	}
	h.clientsMu.RUnlock()
}

// Register adds a client to the hub
func (h *EventHub) Register(client *EventClient) {
	h.register <- client
}

// HubStats holds hub statistics
type HubStats struct {
	Clients int `json:"clients"`
}

// Stats returns hub statistics
func (h *EventHub) Stats() HubStats {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return HubStats{Clients: len(h.clients)}
}

// publishEvent marshals the payload and publishes it. A nil connection
// disables eventing.
func publishEvent(nc *nats.Conn, subject string, payload interface{}) {
	if nc == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := nc.Publish(subject, data); err != nil {
		log.Printf("⚠️ Failed to publish %s: %v", subject, err)
	}
}
