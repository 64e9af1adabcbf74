package store

import (
	"log"

	"mechlog/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema. Tables are migrated one by one so
// a failure on one (typically a permission problem on a shared database) is
// logged and does not block the others.
func Migrate(db *gorm.DB) {
	tables := []struct {
		name  string
		model interface{}
	}{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"refresh_tokens", &models.RefreshToken{}},
		{"attendances", &models.Attendance{}},
		{"jobs", &models.Job{}},
	}
	for _, t := range tables {
		if err := db.AutoMigrate(t.model); err != nil {
			log.Printf("migration warning (%s): %v", t.name, err)
		}
	}
}
