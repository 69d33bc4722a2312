package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/taskdesk/backend/services"
)

var (
	eventHub *services.EventHub
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins for now
		},
	}
)

// SetEventHub sets the event hub for the handlers
func SetEventHub(hub *services.EventHub) {
	eventHub = hub
}

// HandleEventsWebSocket streams task lifecycle events to admin clients
// GET /ws/events
func HandleEventsWebSocket(c *gin.Context) {
	if eventHub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event hub not initialized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ WebSocket upgrade failed: %v", err)
		return
	}

	var userID uint
	if user := CurrentUser(c); user != nil {
		userID = user.ID
	}

	client := services.NewEventClient(eventHub, conn, userID, c.ClientIP())
	eventHub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// GetEventHubStats returns event hub statistics
// GET /admin/events/stats
func GetEventHubStats(c *gin.Context) {
	if eventHub == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	stats := eventHub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"enabled": true,
		"clients": stats.Clients,
	})
}
