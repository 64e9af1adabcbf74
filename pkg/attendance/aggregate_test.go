package attendance

import (
	"errors"
	"testing"
	"time"

	"mechlog/models"
)

func TestSumEmpty(t *testing.T) {
	if got := Sum(nil); got != (Totals{}) {
		t.Fatalf("Sum(nil) = %+v", got)
	}
}

func TestSumRoundsTotals(t *testing.T) {
	recs := []models.Attendance{
		{NormalHours: 0.1, ExtraHours: 0.2},
		{NormalHours: 0.2, ExtraHours: 0.1, DebitHours: 1.15},
		{}, // open record
	}
	want := Totals{Normal: 0.3, Extras: 0.3, Debits: 1.15}
	if got := Sum(recs); got != want {
		t.Fatalf("Sum = %+v, want %+v", got, want)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		from, to string
		wantErr  bool
	}{
		{"2024-01-01", "2024-01-07", false},
		{"2024-01-07", "2024-01-07", false},
		{"2024-01-08", "2024-01-07", true},
		{"01/01/2024", "2024-01-07", true},
		{"2024-01-01", "", true},
	}
	for _, tt := range tests {
		_, _, err := ParseRange(tt.from, tt.to)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRange(%q, %q) err = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ParseRange(%q, %q) err = %v, want ErrInvalidRange", tt.from, tt.to, err)
		}
	}
}

func TestDefaultRange(t *testing.T) {
	from, to := DefaultRange(time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC))
	if from != "2024-02-25" || to != "2024-03-02" {
		t.Fatalf("DefaultRange = %s..%s", from, to)
	}
}
