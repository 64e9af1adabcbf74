package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"mechlog/models"
	"mechlog/pkg/store"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

var errShortPassword = fmt.Errorf("password too short (min %d)", minPasswordLen)

func main() {
	username := flag.String("username", "", "user whose password is replaced")
	password := flag.String("password", "", "new plaintext password")
	flag.Parse()
	if *username == "" || *password == "" {
		log.Fatal("--username and --password are required")
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := store.Open(os.Getenv("DB_DRIVER"), dsn, &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	revoked, err := resetPassword(db, *username, *password)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("password of %s replaced, %d refresh token(s) revoked\n", *username, revoked)
}

// resetPassword stores a new bcrypt hash for username and revokes the user's
// live refresh tokens so existing sessions must log in again.
func resetPassword(db *gorm.DB, username, password string) (int64, error) {
	if len(password) < minPasswordLen {
		return 0, errShortPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("bcrypt: %w", err)
	}

	var revoked int64
	err = db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %q not found", username)
			}
			return err
		}
		if err := tx.Model(&user).Update("hashed_password", hash).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		res := tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked = ?", user.ID, false).
			Update("revoked", true)
		if res.Error != nil {
			return fmt.Errorf("revoke refresh tokens: %w", res.Error)
		}
		revoked = res.RowsAffected
		return nil
	})
	return revoked, err
}
