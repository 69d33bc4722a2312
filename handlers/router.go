package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/taskdesk/backend/models"
)

// NewRouter wires the full HTTP surface. Shared between main and the
// integration tests so the two cannot drift.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(config))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	router.POST("/signup", h.Signup)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)
	router.POST("/logout", h.Logout)

	// Any authenticated user
	authed := router.Group("/", h.AuthRequired())
	{
		authed.GET("/me", h.Me)
		authed.GET("/tasks", h.ListTasks)
	}

	// Admin routes
	admin := router.Group("/admin", h.AuthRequired(), RequireRole(models.RoleAdmin))
	{
		admin.POST("/create-employee", h.CreateEmployee)
		admin.POST("/assign-task", h.AssignTask)
		admin.GET("/employees", h.ListEmployees)
		admin.POST("/promote", h.Promote)
		admin.GET("/events/stats", GetEventHubStats)
	}

	// Employee routes
	employee := router.Group("/employee", h.AuthRequired(), RequireRole(models.RoleEmployee))
	{
		employee.POST("/submit-task", h.SubmitTask)
	}

	// WebSocket event stream for the admin dashboard
	router.GET("/ws/events", h.AuthRequired(), RequireRole(models.RoleAdmin), HandleEventsWebSocket)

	return router
}
