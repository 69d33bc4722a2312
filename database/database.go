package database

import (
	"fmt"
	"log"
	"os"

	"github.com/taskdesk/backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the global database connection.
// DATABASE_URL selects postgres; without it a local SQLite file is used.
func Connect() error {
	var dial gorm.Dialector
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dial = postgres.Open(databaseURL)
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "taskdesk.db"
		}
		dial = sqlite.Open(path)
	}

	db, err := Open(dial)
	if err != nil {
		return err
	}
	DB = db

	log.Println("✅ Database connected successfully")
	return nil
}

// Open connects and migrates without touching the global connection.
// Tests use it with in-memory SQLite.
// TranslateError makes unique-constraint violations surface as
// gorm.ErrDuplicatedKey on both drivers.
func Open(dial gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
