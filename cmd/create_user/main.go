package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"mechlog/models"
	"mechlog/pkg/store"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_user <username> <password> [ADMIN|MECANICO] [full name]")
		os.Exit(2)
	}
	username := os.Args[1]
	password := os.Args[2]
	roleName := models.RoleMechanic
	if len(os.Args) > 3 {
		roleName = strings.ToUpper(os.Args[3])
	}
	if roleName != models.RoleMechanic && roleName != models.RoleAdmin {
		log.Fatalf("unknown role %q", roleName)
	}
	name := username
	if len(os.Args) > 4 {
		name = strings.Join(os.Args[4:], " ")
	}
	if len(password) < 6 {
		log.Fatal("password too short (min 6)")
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	driver := os.Getenv("DB_DRIVER")
	db, err := store.Open(driver, dsn, &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// ensure the role exists
	role := models.Role{Name: roleName}
	if err := db.Where("name = ?", roleName).FirstOrCreate(&role).Error; err != nil {
		log.Fatalf("role %s: %v", roleName, err)
	}

	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", username, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	rid := role.ID
	user := models.User{Username: username, Name: name, HashedPassword: hpw, RoleID: &rid}
	if err := db.Omit("Role").Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created %s %s id=%d\n", roleName, username, user.ID)
}
