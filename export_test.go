package main

import (
	"bytes"
	"testing"
	"time"

	"mechlog/models"
	"mechlog/pkg/attendance"

	"github.com/xuri/excelize/v2"
)

func TestBuildWorkbook(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	in := time.Date(2024, 1, 1, 8, 0, 0, 0, loc)
	out := time.Date(2024, 1, 1, 18, 0, 0, 0, loc)
	ana := &models.User{ID: 1, Name: "Ana"}
	recs := []models.Attendance{
		{UserID: 1, User: ana, Date: "2024-01-01", CheckIn: in.UTC(), CheckOut: &out, NormalHours: 8, ExtraHours: 1.5},
		{UserID: 2, Date: "2024-01-02", CheckIn: in.AddDate(0, 0, 1)},
	}
	rep := &attendance.Report{
		From:       "2024-01-01",
		To:         "2024-01-02",
		Attendance: recs,
		Jobs:       []models.Job{{UserID: 1, User: ana, Date: "2024-01-01", Plate: "ABC-123", JobType: "frenos", Description: "pastillas"}},
		Totals:     attendance.Sum(recs),
	}

	buf, err := buildWorkbook(rep, loc)
	if err != nil {
		t.Fatalf("buildWorkbook: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(attendanceSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header, 2 records and total, got %v", rows)
	}
	if rows[1][2] != "08:00" || rows[1][3] != "18:00" {
		t.Fatalf("times not rendered in shop time: %v", rows[1])
	}
	if rows[2][3] != "" {
		t.Fatalf("open record should have an empty check-out: %v", rows[2])
	}
	if rows[3][0] != "Total" || rows[3][4] != "8" || rows[3][5] != "1.5" {
		t.Fatalf("unexpected totals row: %v", rows[3])
	}

	jobs, err := f.GetRows(jobsSheet)
	if err != nil {
		t.Fatalf("job rows: %v", err)
	}
	if len(jobs) != 2 || jobs[1][2] != "ABC-123" || jobs[1][1] != "Ana" {
		t.Fatalf("unexpected job rows: %v", jobs)
	}

	for _, c := range []struct {
		sheet, col string
		want       float64
	}{
		{attendanceSheet, "G", 15},
		{jobsSheet, "D", 15},
		{jobsSheet, "E", 50},
	} {
		w, err := f.GetColWidth(c.sheet, c.col)
		if err != nil {
			t.Fatalf("col width %s!%s: %v", c.sheet, c.col, err)
		}
		if w != c.want {
			t.Errorf("col width %s!%s = %v, want %v", c.sheet, c.col, w, c.want)
		}
	}
}
