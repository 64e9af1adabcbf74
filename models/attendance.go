package models

import "time"

// Attendance is one user's civil day. It is created by the check-in and
// updated once by the check-out; the check-out fields and the hour fields
// are written together.
type Attendance struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	UserID        uint       `gorm:"not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	User          *User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user,omitempty"`
	Date          string     `gorm:"size:10;not null;index;uniqueIndex:idx_attendance_user_date" json:"date"` // YYYY-MM-DD, civil
	CheckIn       time.Time  `gorm:"not null" json:"check_in"`
	CheckInPhoto  string     `gorm:"size:512;not null" json:"check_in_photo"`
	CheckOut      *time.Time `json:"check_out"`
	CheckOutPhoto *string    `gorm:"size:512" json:"check_out_photo"`
	NormalHours   float64    `gorm:"not null;default:0" json:"normal_hours"`
	ExtraHours    float64    `gorm:"not null;default:0" json:"extra_hours"`
	DebitHours    float64    `gorm:"not null;default:0" json:"debit_hours"`
}

// CheckedOut reports whether the check-out half of the record is set.
func (a *Attendance) CheckedOut() bool {
	return a.CheckOut != nil
}
