package services

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 * 1024

	// Send buffer size
	sendBufferSize = 64
)

// EventClient represents a websocket client on the live event stream.
type EventClient struct {
	hub        *EventHub
	conn       *websocket.Conn
	send       chan []byte
	userID     uint
	remoteAddr string
}

// NewEventClient creates a new event client
func NewEventClient(hub *EventHub, conn *websocket.Conn, userID uint, remoteAddr string) *EventClient {
	return &EventClient{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		userID:     userID,
		remoteAddr: remoteAddr,
	}
}

// ReadPump discards client input but keeps the read side and the pong
// handler alive so dead connections get unregistered.
func (c *EventClient) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ WebSocket error: %v", err)
			}
			break
		}
	}
}

// WritePump pumps events from the hub to the websocket connection
func (c *EventClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
