// Package store implements attendance.Store on gorm.
package store

import (
	"context"
	"fmt"
	"strings"

	"mechlog/models"
	"mechlog/pkg/attendance"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Open connects to postgres or sqlite. The sqlite driver is meant for tests
// and single-machine installs.
func Open(driver, dsn string, conf *gorm.Config) (*gorm.DB, error) {
	if conf == nil {
		conf = &gorm.Config{}
	}
	var dial gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "postgres", "postgresql":
		dial = postgres.Open(dsn)
	case "sqlite", "sqlite3":
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return gorm.Open(dial, conf)
}

// Store is the gorm implementation of attendance.Store.
type Store struct {
	db *gorm.DB
}

var _ attendance.Store = (*Store)(nil)

// New wraps an open connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindAttendance(ctx context.Context, userID uint, date string) (*models.Attendance, error) {
	var recs []models.Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Limit(1).Find(&recs).Error
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// InsertAttendance relies on the unique (user_id, date) index: a conflicting
// insert does nothing and reports false.
func (s *Store) InsertAttendance(ctx context.Context, rec *models.Attendance) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateAttendanceCheckout writes the check-out fields only while check_out is still NULL.
func (s *Store) UpdateAttendanceCheckout(ctx context.Context, id uint, out attendance.Checkout) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("id = ? AND check_out IS NULL", id).
		Updates(map[string]interface{}{
			"check_out":       out.At,
			"check_out_photo": out.Photo,
			"normal_hours":    out.Hours.Normal,
			"extra_hours":     out.Hours.Extra,
			"debit_hours":     out.Hours.Debit,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) InsertJob(ctx context.Context, job *models.Job) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *Store) FindJobsByUserDate(ctx context.Context, userID uint, date string) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("id desc").Find(&jobs).Error
	return jobs, err
}

func (s *Store) FindAttendanceRange(ctx context.Context, from, to string) ([]models.Attendance, error) {
	var recs []models.Attendance
	err := s.db.WithContext(ctx).Preload("User").
		Where("date BETWEEN ? AND ?", from, to).
		Order("date desc, id desc").Find(&recs).Error
	return recs, err
}

func (s *Store) FindJobsRange(ctx context.Context, from, to string) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).Preload("User").
		Where("date BETWEEN ? AND ?", from, to).
		Order("date desc, id desc").Find(&jobs).Error
	return jobs, err
}

func (s *Store) FindOpenAttendance(ctx context.Context, date string) ([]models.Attendance, error) {
	var recs []models.Attendance
	err := s.db.WithContext(ctx).Preload("User").
		Where("date = ? AND check_out IS NULL", date).
		Order("id").Find(&recs).Error
	return recs, err
}
