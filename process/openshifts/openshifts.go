// Package openshifts reports mechanics who checked in but never checked out.
package openshifts

import (
	"context"
	"fmt"
	"log"
	"time"

	"mechlog/models"
	"mechlog/pkg/attendance"
	"mechlog/pkg/notify"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs at 23:55:00 every day (seconds field first).
const DefaultSchedule = "0 55 23 * * *"

// Scanner runs the open-shift check on a cron schedule in the shop's timezone.
type Scanner struct {
	cronScheduler *cron.Cron
	svc           *attendance.Service
	notifier      notify.Notifier
	schedule      string
	jobID         cron.EntryID
	now           func() time.Time
}

// New creates a scanner. loc is the civil timezone the schedule is read in.
func New(svc *attendance.Service, notifier notify.Notifier, schedule string, loc *time.Location) *Scanner {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scanner{
		cronScheduler: cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		svc:           svc,
		notifier:      notifier,
		schedule:      schedule,
		now:           time.Now,
	}
}

// Start registers the job and starts the scheduler.
func (s *Scanner) Start() error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background(), s.now()); err != nil {
			log.Printf("open shift scan failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling open shift scan: %w", err)
	}
	s.cronScheduler.Start()
	log.Printf("Open shift scan scheduled (%s)", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running scan to finish.
func (s *Scanner) Stop() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
		log.Println("Open shift scan stopped")
	}
}

// RunOnce checks the civil day of at and notifies when anyone is still checked in.
func (s *Scanner) RunOnce(ctx context.Context, at time.Time) ([]models.Attendance, error) {
	date := s.svc.Policy().CivilDate(at)
	recs, err := s.svc.OpenShifts(ctx, date)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		log.Printf("open shift: user=%d date=%s check_in=%s", r.UserID, r.Date, r.CheckIn.Format(time.RFC3339))
	}
	if len(recs) > 0 {
		s.notifier.Notify(notify.OpenShiftsMessage(date, recs, s.svc.Policy().Location))
	}
	return recs, nil
}
