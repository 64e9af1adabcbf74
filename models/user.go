package models

import (
	"time"
)

// User is a shop employee able to log in. Mechanics check in and log jobs,
// admins read reports.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"-"`
	DeletedAt      *time.Time `gorm:"index" json:"-"`
	Username       string     `gorm:"size:255;not null;unique" json:"username"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	HashedPassword []byte     `gorm:"not null" json:"-"`
	RoleID         *uint      `gorm:"index" json:"-"`
	Role           Role       `gorm:"foreignKey:RoleID;references:ID" json:"-"`
}
