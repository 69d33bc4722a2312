package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/taskdesk/backend/database"
	"github.com/taskdesk/backend/handlers"
	"github.com/taskdesk/backend/natsserver"
	"github.com/taskdesk/backend/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	if err := database.Connect(); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
	defer database.Close()

	// Start embedded NATS server for the task event bus
	natsPort := 4222
	if v := os.Getenv("NATS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("❌ Invalid NATS_PORT: %v", err)
		}
		natsPort = p
	}
	natsServer, err := natsserver.New(natsserver.Config{Port: natsPort})
	if err != nil {
		log.Fatalf("❌ Failed to start NATS server: %v", err)
	}
	defer natsServer.Shutdown()

	// Event hub for the admin dashboard's live view
	eventHub, err := services.NewEventHub(natsServer.Conn())
	if err != nil {
		log.Fatalf("❌ Failed to start event hub: %v", err)
	}
	go eventHub.Run()
	handlers.SetEventHub(eventHub)
	log.Println("📺 Event hub initialized")

	users := services.NewUserService(database.DB, natsServer.Conn())
	tasks := services.NewTaskService(database.DB, natsServer.Conn())

	// Bootstrap admin account
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	if err := users.SeedAdmin(context.Background(), "admin", adminPassword); err != nil {
		log.Fatalf("❌ Failed to seed admin user: %v", err)
	}
	log.Println("✅ Admin user ready")

	// Setup Gin router
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.New(users, tasks))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 Server running on http://localhost:%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
