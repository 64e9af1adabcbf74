package models

import "time"

// Job is a unit of work logged by a mechanic. AttendanceID is nil when the
// job was logged before the day's check-in.
type Job struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	UserID       uint        `gorm:"index:idx_jobs_user_date;not null" json:"user_id"`
	User         *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AttendanceID *uint       `gorm:"index" json:"attendance_id"`
	Attendance   *Attendance `gorm:"foreignKey:AttendanceID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Date         string      `gorm:"size:10;not null;index;index:idx_jobs_user_date" json:"date"`
	Plate        string      `gorm:"size:16;not null" json:"plate"`
	JobType      string      `gorm:"size:64;not null" json:"job_type"`
	Description  string      `gorm:"type:text" json:"description"`
}
