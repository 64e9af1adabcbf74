package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"mechlog/models"
)

type memStore struct {
	nextID     uint
	attendance map[string]*models.Attendance
	jobs       []models.Job
	failFind   error

	// raceOnInsert simulates a concurrent check-in landing between find and insert.
	raceOnInsert bool
}

func newMemStore() *memStore {
	return &memStore{attendance: map[string]*models.Attendance{}}
}

func key(userID uint, date string) string {
	return fmt.Sprintf("%d/%s", userID, date)
}

func (m *memStore) FindAttendance(ctx context.Context, userID uint, date string) (*models.Attendance, error) {
	if m.failFind != nil {
		return nil, m.failFind
	}
	rec, ok := m.attendance[key(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) InsertAttendance(ctx context.Context, rec *models.Attendance) (bool, error) {
	k := key(rec.UserID, rec.Date)
	if m.raceOnInsert {
		m.raceOnInsert = false
		m.nextID++
		m.attendance[k] = &models.Attendance{ID: m.nextID, UserID: rec.UserID, Date: rec.Date, CheckIn: rec.CheckIn.Add(-time.Minute), CheckInPhoto: "/uploads/other.jpg"}
	}
	if _, ok := m.attendance[k]; ok {
		return false, nil
	}
	m.nextID++
	rec.ID = m.nextID
	cp := *rec
	m.attendance[k] = &cp
	return true, nil
}

func (m *memStore) UpdateAttendanceCheckout(ctx context.Context, id uint, out Checkout) (bool, error) {
	for _, rec := range m.attendance {
		if rec.ID == id {
			if rec.CheckOut != nil {
				return false, nil
			}
			out.applyTo(rec)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertJob(ctx context.Context, job *models.Job) error {
	m.nextID++
	job.ID = m.nextID
	m.jobs = append(m.jobs, *job)
	return nil
}

func (m *memStore) FindJobsByUserDate(ctx context.Context, userID uint, date string) ([]models.Job, error) {
	var out []models.Job
	for _, j := range m.jobs {
		if j.UserID == userID && j.Date == date {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *memStore) FindAttendanceRange(ctx context.Context, from, to string) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, rec := range m.attendance {
		if rec.Date >= from && rec.Date <= to {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *memStore) FindJobsRange(ctx context.Context, from, to string) ([]models.Job, error) {
	var out []models.Job
	for _, j := range m.jobs {
		if j.Date >= from && j.Date <= to {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *memStore) FindOpenAttendance(ctx context.Context, date string) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, rec := range m.attendance {
		if rec.Date == date && rec.CheckOut == nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

var (
	mechanic = Actor{UserID: 1, Role: models.RoleMechanic}
	admin    = Actor{UserID: 9, Role: models.RoleAdmin}
)

const monday = "2024-01-01"

func TestCheckInCreatesOneRecord(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, DefaultPolicy())
	ctx := context.Background()

	res, err := svc.CheckIn(ctx, mechanic, monday, at(1, 8, 5), "/uploads/a.jpg")
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if !res.Applied || res.State != CheckedIn {
		t.Fatalf("first check-in result = %+v", res)
	}

	res, err = svc.CheckIn(ctx, mechanic, monday, at(1, 9, 0), "/uploads/b.jpg")
	if err != nil {
		t.Fatalf("second check-in: %v", err)
	}
	if res.Applied {
		t.Fatalf("second check-in should not apply")
	}
	if len(store.attendance) != 1 {
		t.Fatalf("records = %d, want 1", len(store.attendance))
	}
	if got := res.Record.CheckInPhoto; got != "/uploads/a.jpg" {
		t.Fatalf("check-in photo overwritten: %s", got)
	}
	if !res.Record.CheckIn.Equal(at(1, 8, 5)) {
		t.Fatalf("check-in time overwritten: %v", res.Record.CheckIn)
	}
}

func TestCheckInAppliesEntryFloor(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, DefaultPolicy())
	res, err := svc.CheckIn(context.Background(), mechanic, monday, at(1, 7, 10), "/uploads/a.jpg")
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if want := at(1, 8, 0); !res.Record.CheckIn.Equal(want) {
		t.Fatalf("stored check-in = %v, want %v", res.Record.CheckIn, want)
	}
}

func TestCheckInLosingRaceIsNoop(t *testing.T) {
	store := newMemStore()
	store.raceOnInsert = true
	svc := NewService(store, DefaultPolicy())
	res, err := svc.CheckIn(context.Background(), mechanic, monday, at(1, 8, 30), "/uploads/mine.jpg")
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if res.Applied || res.Record == nil || res.Record.CheckInPhoto != "/uploads/other.jpg" {
		t.Fatalf("expected the concurrent record back, got %+v", res)
	}
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, DefaultPolicy())
	res, err := svc.CheckOut(context.Background(), mechanic, monday, at(1, 17, 0), "/uploads/out.jpg")
	if !errors.Is(err, ErrNotCheckedIn) {
		t.Fatalf("err = %v, want ErrNotCheckedIn", err)
	}
	if res.State != NoRecord || len(store.attendance) != 0 {
		t.Fatalf("state mutated: %+v, records=%d", res, len(store.attendance))
	}
}

func TestCheckOutComputesHoursOnce(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, DefaultPolicy())
	ctx := context.Background()

	if _, err := svc.CheckIn(ctx, mechanic, monday, at(1, 8, 0), "/uploads/in.jpg"); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	res, err := svc.CheckOut(ctx, mechanic, monday, at(1, 15, 0), "/uploads/out.jpg")
	if err != nil {
		t.Fatalf("check-out: %v", err)
	}
	if !res.Applied || res.State != CheckedOut {
		t.Fatalf("check-out result = %+v", res)
	}
	if res.Record.NormalHours != 6.5 || res.Record.DebitHours != 2 || res.Record.ExtraHours != 0 {
		t.Fatalf("hours = %v/%v/%v, want 6.5/0/2", res.Record.NormalHours, res.Record.ExtraHours, res.Record.DebitHours)
	}

	res, err = svc.CheckOut(ctx, mechanic, monday, at(1, 20, 0), "/uploads/out2.jpg")
	if err != nil {
		t.Fatalf("second check-out: %v", err)
	}
	if res.Applied {
		t.Fatalf("second check-out should not apply")
	}
	stored, _ := store.FindAttendance(ctx, mechanic.UserID, monday)
	if stored.NormalHours != 6.5 || stored.DebitHours != 2 || *stored.CheckOutPhoto != "/uploads/out.jpg" {
		t.Fatalf("record changed by second check-out: %+v", stored)
	}
	if !stored.CheckOut.Equal(at(1, 15, 0)) {
		t.Fatalf("check-out time changed: %v", stored.CheckOut)
	}
}

func TestCheckOutBeforeFlooredCheckIn(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, DefaultPolicy())
	ctx := context.Background()
	if _, err := svc.CheckIn(ctx, mechanic, monday, at(1, 6, 0), "/uploads/in.jpg"); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	res, err := svc.CheckOut(ctx, mechanic, monday, at(1, 7, 30), "/uploads/out.jpg")
	if err != nil {
		t.Fatalf("check-out: %v", err)
	}
	if res.Record.CheckOut.Before(res.Record.CheckIn) {
		t.Fatalf("check-out %v stored before check-in %v", res.Record.CheckOut, res.Record.CheckIn)
	}
	if res.Record.NormalHours != 0 || res.Record.DebitHours != 8.5 {
		t.Fatalf("hours = %+v", res.Record)
	}
}

func TestPhotoAndRoleChecks(t *testing.T) {
	svc := NewService(newMemStore(), DefaultPolicy())
	ctx := context.Background()
	if _, err := svc.CheckIn(ctx, mechanic, monday, at(1, 8, 0), "  "); !errors.Is(err, ErrPhotoRequired) {
		t.Fatalf("check-in without photo: err = %v", err)
	}
	if _, err := svc.CheckOut(ctx, mechanic, monday, at(1, 8, 0), ""); !errors.Is(err, ErrPhotoRequired) {
		t.Fatalf("check-out without photo: err = %v", err)
	}
	if _, err := svc.CheckIn(ctx, admin, monday, at(1, 8, 0), "/uploads/a.jpg"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin check-in: err = %v", err)
	}
	if _, err := svc.Report(ctx, mechanic, monday, monday); !errors.Is(err, ErrForbidden) {
		t.Fatalf("mechanic report: err = %v", err)
	}
}

func TestStoreFailureIsWrapped(t *testing.T) {
	store := newMemStore()
	boom := errors.New("connection reset")
	store.failFind = boom
	svc := NewService(store, DefaultPolicy())
	_, err := svc.CheckIn(context.Background(), mechanic, monday, at(1, 8, 0), "/uploads/a.jpg")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestRecordJobLinksAttendance(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, DefaultPolicy())
	ctx := context.Background()

	early, err := svc.RecordJob(ctx, mechanic, monday, " bcd123 ", "Cambio de aceite", "5W-30")
	if err != nil {
		t.Fatalf("record job: %v", err)
	}
	if early.AttendanceID != nil {
		t.Fatalf("job before check-in linked to %v", *early.AttendanceID)
	}
	if early.Plate != "BCD123" {
		t.Fatalf("plate = %q, want BCD123", early.Plate)
	}

	res, err := svc.CheckIn(ctx, mechanic, monday, at(1, 8, 0), "/uploads/in.jpg")
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	job, err := svc.RecordJob(ctx, mechanic, monday, "123456", "Frenos", "pastillas delanteras")
	if err != nil {
		t.Fatalf("record job: %v", err)
	}
	if job.AttendanceID == nil || *job.AttendanceID != res.Record.ID {
		t.Fatalf("job attendance = %v, want %d", job.AttendanceID, res.Record.ID)
	}

	if _, err := svc.RecordJob(ctx, mechanic, monday, "", "Frenos", "x"); !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("empty plate: err = %v", err)
	}

	rec, jobs, err := svc.Today(ctx, mechanic, monday)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if rec == nil || len(jobs) != 2 {
		t.Fatalf("today = %v, %d jobs", rec, len(jobs))
	}
}

func TestReport(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, DefaultPolicy())
	ctx := context.Background()
	other := Actor{UserID: 2, Role: models.RoleMechanic}

	days := []struct {
		actor   Actor
		date    string
		in, out time.Time
	}{
		{mechanic, "2024-01-01", at(1, 8, 0), at(1, 17, 0)},
		{mechanic, "2024-01-06", at(6, 8, 0), at(6, 15, 0)},
		{other, "2024-01-01", at(1, 8, 0), at(1, 15, 0)},
	}
	for _, d := range days {
		if _, err := svc.CheckIn(ctx, d.actor, d.date, d.in, "/uploads/in.jpg"); err != nil {
			t.Fatalf("check-in: %v", err)
		}
		if _, err := svc.CheckOut(ctx, d.actor, d.date, d.out, "/uploads/out.jpg"); err != nil {
			t.Fatalf("check-out: %v", err)
		}
	}
	// still open, contributes nothing
	if _, err := svc.CheckIn(ctx, other, "2024-01-02", at(2, 8, 0), "/uploads/in.jpg"); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	rep, err := svc.Report(ctx, admin, "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rep.Attendance) != 4 {
		t.Fatalf("records = %d, want 4", len(rep.Attendance))
	}
	want := Totals{Normal: 8.5 + 6 + 6.5, Extras: 1, Debits: 2}
	if rep.Totals != want {
		t.Fatalf("totals = %+v, want %+v", rep.Totals, want)
	}

	rep, err = svc.Report(ctx, admin, "2024-01-06", "2024-01-06")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rep.Attendance) != 1 || rep.Totals.Extras != 1 {
		t.Fatalf("single day report = %+v", rep)
	}

	open, err := svc.OpenShifts(ctx, "2024-01-02")
	if err != nil || len(open) != 1 {
		t.Fatalf("open shifts = %v, %v", open, err)
	}
}
