package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"mechlog/models"
	"mechlog/pkg/store"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	if err := setupDB(&gorm.Config{}); err != nil {
		log.Fatal(err)
	}
}

// setupDB connects, migrates when DB_AUTO_MIGRATE allows it and seeds the
// roles and the default admin.
func setupDB(conf *gorm.Config) error {
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN is not set. Use a Postgres DSN, or DB_DRIVER=sqlite with a file path")
	}
	conn, err := store.Open(cfg.DBDriver, cfg.DBDSN, conf)
	if err != nil {
		return fmt.Errorf("failed to connect %s database: %w", cfg.DBDriver, err)
	}
	db = conn
	if cfg.AutoMigrate {
		store.Migrate(db)
	}
	return seedDB()
}

func seedDB() error {
	roles := []models.Role{
		{Name: models.RoleAdmin, Description: "reads attendance reports, manages users"},
		{Name: models.RoleMechanic, Description: "checks in and out, logs jobs"},
	}
	for _, r := range roles {
		if err := db.Where("name = ?", r.Name).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
	}

	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		if _, err := RegisterUser("admin", "admin123", "Administrador", models.RoleAdmin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Println("Seeded admin user: username=admin, password=admin123")
	}
	ensureUploadBase()
	return nil
}

// ensureUploadBase creates the photo directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}

// uploadBaseDir is where check-in and check-out photos are written (UPLOAD_BASE).
func uploadBaseDir() string {
	if cfg.UploadBase != "" {
		return cfg.UploadBase
	}
	return "uploads"
}

// hashPassword is shared by user registration and seeding.
func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
