package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/taskdesk/backend/database"
	"github.com/taskdesk/backend/models"
	"github.com/taskdesk/backend/services"
)

var sampleEmployees = []string{"alice", "bob", "carol", "dave"}

var sampleTasks = []struct {
	Title       string
	Description string
}{
	{"Fix login redirect", "Users land on a blank page after login when the session cookie is stale."},
	{"Update onboarding doc", "The employee handbook still references the old badge format."},
	{"Review Q3 timesheets", "Cross-check submitted hours against the project tracker."},
	{"Prepare demo data", "Load the staging environment with realistic tasks."},
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	if err := database.Connect(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Println("🌱 Starting seed...")

	users := services.NewUserService(database.DB, nil)
	tasks := services.NewTaskService(database.DB, nil)
	ctx := context.Background()

	if err := users.SeedAdmin(ctx, "admin", "admin123"); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	var admin models.User
	if err := database.DB.Where("role = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		log.Fatalf("Failed to look up admin: %v", err)
	}

	created := 0
	for i, name := range sampleEmployees {
		user, err := users.Create(ctx, name, name+"123", models.RoleEmployee)
		if err != nil {
			if errors.Is(err, services.ErrUsernameTaken) {
				fmt.Printf("⚠️  Employee %s already exists, skipping\n", name)
				continue
			}
			log.Fatalf("Failed to create employee %s: %v", name, err)
		}
		fmt.Printf("✅ Created employee %s (%s)\n", user.Username, *user.EmployeeID)

		sample := sampleTasks[i%len(sampleTasks)]
		if _, err := tasks.Assign(ctx, sample.Title, sample.Description, *user.EmployeeID, admin.ID); err != nil {
			log.Printf("Failed to assign task to %s: %v", name, err)
			continue
		}
		created++
	}

	fmt.Printf("✅ Seeded %d employees with tasks\n", created)
}
