package attendance

import (
	"context"
	"fmt"
	"time"

	"mechlog/models"
)

// DateLayout is the format of attendance and job dates.
const DateLayout = "2006-01-02"

// Report is the admin view of a date range.
type Report struct {
	From       string              `json:"from"`
	To         string              `json:"to"`
	Attendance []models.Attendance `json:"attendance"`
	Jobs       []models.Job        `json:"jobs"`
	Totals
}

// DefaultRange is the last seven civil days ending on today.
func DefaultRange(today time.Time) (from, to string) {
	return today.AddDate(0, 0, -6).Format(DateLayout), today.Format(DateLayout)
}

// ParseRange validates an inclusive [from, to] pair of ISO dates.
func ParseRange(from, to string) (string, string, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return "", "", fmt.Errorf("%w: from %q", ErrInvalidRange, from)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return "", "", fmt.Errorf("%w: to %q", ErrInvalidRange, to)
	}
	if f.After(t) {
		return "", "", fmt.Errorf("%w: %s after %s", ErrInvalidRange, from, to)
	}
	return f.Format(DateLayout), t.Format(DateLayout), nil
}

// Report collects attendance and jobs between from and to inclusive.
func (s *Service) Report(ctx context.Context, actor Actor, from, to string) (*Report, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	from, to, err := ParseRange(from, to)
	if err != nil {
		return nil, err
	}
	records, err := s.store.FindAttendanceRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("find attendance range: %w", err)
	}
	jobs, err := s.store.FindJobsRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("find jobs range: %w", err)
	}
	return &Report{From: from, To: to, Attendance: records, Jobs: jobs, Totals: Sum(records)}, nil
}

// OpenShifts lists the records of date that were never checked out.
func (s *Service) OpenShifts(ctx context.Context, date string) ([]models.Attendance, error) {
	recs, err := s.store.FindOpenAttendance(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("find open attendance: %w", err)
	}
	return recs, nil
}
