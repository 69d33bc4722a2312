package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskdesk/backend/database"
)

// openTestDB opens an in-memory SQLite database with migrations applied.
// Writers are limited to a single connection so concurrent signup tests
// serialize at the pool instead of hitting SQLITE_BUSY.
func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}
