package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mechlog/models"
)

// State is the position of a (user, day) pair in the check-in sequence.
type State int

const (
	NoRecord State = iota
	CheckedIn
	CheckedOut
)

func (s State) String() string {
	switch s {
	case CheckedIn:
		return "checked_in"
	case CheckedOut:
		return "checked_out"
	}
	return "no_record"
}

// StateOf derives the state from the stored record, nil meaning no record.
func StateOf(rec *models.Attendance) State {
	switch {
	case rec == nil:
		return NoRecord
	case rec.CheckedOut():
		return CheckedOut
	}
	return CheckedIn
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) require(role string) error {
	if a.UserID == 0 || a.Role != role {
		return ErrForbidden
	}
	return nil
}

// Checkout is the set of fields written by a successful check-out.
type Checkout struct {
	At    time.Time
	Photo string
	Hours Hours
}

func (c Checkout) applyTo(rec *models.Attendance) {
	at, photo := c.At, c.Photo
	rec.CheckOut = &at
	rec.CheckOutPhoto = &photo
	rec.NormalHours = c.Hours.Normal
	rec.ExtraHours = c.Hours.Extra
	rec.DebitHours = c.Hours.Debit
}

// Store is the persistence the service needs. InsertAttendance must be
// atomic on (user, date) and report false when a record already existed;
// UpdateAttendanceCheckout must only touch a record without a check-out and
// report false otherwise. Find methods return nil, nil when nothing matches.
type Store interface {
	FindAttendance(ctx context.Context, userID uint, date string) (*models.Attendance, error)
	InsertAttendance(ctx context.Context, rec *models.Attendance) (bool, error)
	UpdateAttendanceCheckout(ctx context.Context, id uint, out Checkout) (bool, error)
	InsertJob(ctx context.Context, job *models.Job) error
	FindJobsByUserDate(ctx context.Context, userID uint, date string) ([]models.Job, error)
	FindAttendanceRange(ctx context.Context, from, to string) ([]models.Attendance, error)
	FindJobsRange(ctx context.Context, from, to string) ([]models.Job, error)
	FindOpenAttendance(ctx context.Context, date string) ([]models.Attendance, error)
}

// Result describes the outcome of a check-in or check-out. Applied is false
// for a repeated operation, in which case Record is the unchanged record.
type Result struct {
	Record  *models.Attendance
	State   State
	Applied bool
}

// Service runs the per-day attendance sequence on top of a Store.
type Service struct {
	store  Store
	policy Policy
}

// NewService creates a service using policy for every hour computation.
func NewService(store Store, policy Policy) *Service {
	return &Service{store: store, policy: policy}
}

// Policy returns the schedule policy in use.
func (s *Service) Policy() Policy {
	return s.policy
}

// CheckIn opens the day for the actor. A second check-in on the same day is
// a no-op that returns the existing record.
func (s *Service) CheckIn(ctx context.Context, actor Actor, date string, at time.Time, photo string) (Result, error) {
	if err := actor.require(models.RoleMechanic); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(photo) == "" {
		return Result{}, ErrPhotoRequired
	}
	existing, err := s.store.FindAttendance(ctx, actor.UserID, date)
	if err != nil {
		return Result{}, fmt.Errorf("find attendance: %w", err)
	}
	if existing != nil {
		return Result{Record: existing, State: StateOf(existing)}, nil
	}

	rec := &models.Attendance{
		UserID:       actor.UserID,
		Date:         date,
		CheckIn:      s.policy.NormalizeEntry(at),
		CheckInPhoto: photo,
	}
	inserted, err := s.store.InsertAttendance(ctx, rec)
	if err != nil {
		return Result{}, fmt.Errorf("insert attendance: %w", err)
	}
	if !inserted {
		// a concurrent check-in won the unique (user, date) slot
		existing, err = s.store.FindAttendance(ctx, actor.UserID, date)
		if err != nil {
			return Result{}, fmt.Errorf("find attendance: %w", err)
		}
		return Result{Record: existing, State: StateOf(existing)}, nil
	}
	return Result{Record: rec, State: CheckedIn, Applied: true}, nil
}

// CheckOut closes the day and stores the computed hours. It fails with
// ErrNotCheckedIn when there is no check-in and is a no-op when the day is
// already closed.
func (s *Service) CheckOut(ctx context.Context, actor Actor, date string, at time.Time, photo string) (Result, error) {
	if err := actor.require(models.RoleMechanic); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(photo) == "" {
		return Result{}, ErrPhotoRequired
	}
	rec, err := s.store.FindAttendance(ctx, actor.UserID, date)
	if err != nil {
		return Result{}, fmt.Errorf("find attendance: %w", err)
	}
	switch StateOf(rec) {
	case NoRecord:
		return Result{State: NoRecord}, ErrNotCheckedIn
	case CheckedOut:
		return Result{Record: rec, State: CheckedOut}, nil
	}

	if at.Before(rec.CheckIn) {
		at = rec.CheckIn
	}
	out := Checkout{At: at, Photo: photo, Hours: s.policy.Calculate(rec.CheckIn, at)}
	updated, err := s.store.UpdateAttendanceCheckout(ctx, rec.ID, out)
	if err != nil {
		return Result{}, fmt.Errorf("update attendance: %w", err)
	}
	if !updated {
		rec, err = s.store.FindAttendance(ctx, actor.UserID, date)
		if err != nil {
			return Result{}, fmt.Errorf("find attendance: %w", err)
		}
		return Result{Record: rec, State: StateOf(rec)}, nil
	}
	out.applyTo(rec)
	return Result{Record: rec, State: CheckedOut, Applied: true}, nil
}

// RecordJob logs a job for the actor on date, linking the day's attendance
// when there is one.
func (s *Service) RecordJob(ctx context.Context, actor Actor, date, plate, jobType, description string) (*models.Job, error) {
	if err := actor.require(models.RoleMechanic); err != nil {
		return nil, err
	}
	plate = strings.ToUpper(strings.TrimSpace(plate))
	jobType = strings.TrimSpace(jobType)
	description = strings.TrimSpace(description)
	if plate == "" || jobType == "" || description == "" {
		return nil, ErrInvalidJob
	}

	job := &models.Job{
		UserID:      actor.UserID,
		Date:        date,
		Plate:       plate,
		JobType:     jobType,
		Description: description,
	}
	rec, err := s.store.FindAttendance(ctx, actor.UserID, date)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	if rec != nil {
		id := rec.ID
		job.AttendanceID = &id
	}
	if err := s.store.InsertJob(ctx, job); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// Today returns the actor's record (nil before check-in) and jobs for date.
func (s *Service) Today(ctx context.Context, actor Actor, date string) (*models.Attendance, []models.Job, error) {
	if err := actor.require(models.RoleMechanic); err != nil {
		return nil, nil, err
	}
	rec, err := s.store.FindAttendance(ctx, actor.UserID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("find attendance: %w", err)
	}
	jobs, err := s.store.FindJobsByUserDate(ctx, actor.UserID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("find jobs: %w", err)
	}
	return rec, jobs, nil
}
