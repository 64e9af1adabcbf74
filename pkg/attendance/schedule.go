// Package attendance computes worked hours for a shop day and enforces the
// per-day check-in/check-out sequence.
package attendance

import "time"

// DayClass groups weekdays that share a schedule.
type DayClass int

const (
	Weekday DayClass = iota
	Saturday
	Sunday
)

func (c DayClass) String() string {
	switch c {
	case Saturday:
		return "saturday"
	case Sunday:
		return "sunday"
	}
	return "weekday"
}

// ClassOf maps a weekday to its DayClass.
func ClassOf(d time.Weekday) DayClass {
	switch d {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	}
	return Weekday
}

// Policy holds the schedule rules. Saturday (6h, no lunch) and Sunday (no
// shift) are fixed; the Mon-Fri pair and the two optional rules are the
// knobs that separate the shop's standard and legacy variants.
type Policy struct {
	WeekdayShift float64
	WeekdayLunch float64
	// EntryFloor moves check-ins earlier than EntryFloorHour to EntryFloorHour:00.
	EntryFloor     bool
	EntryFloorHour int
	// DebitHours enables undertime tracking. When false Debit is always 0.
	DebitHours bool
	// Location is the civil timezone used to classify days. Nil keeps the
	// timestamps' own location.
	Location *time.Location
}

const (
	saturdayShift = 6
	defaultFloor  = 8
)

// DefaultPolicy is the standard variant: 8.5h weekdays with a half-hour
// lunch, debit hours on and the 08:00 entry floor.
func DefaultPolicy() Policy {
	return Policy{
		WeekdayShift:   8.5,
		WeekdayLunch:   0.5,
		EntryFloor:     true,
		EntryFloorHour: defaultFloor,
		DebitHours:     true,
	}
}

// LegacyPolicy is the older variant: 8h weekdays, no debit hours, no floor.
func LegacyPolicy() Policy {
	return Policy{
		WeekdayShift:   8,
		WeekdayLunch:   0.5,
		EntryFloorHour: defaultFloor,
	}
}

// Schedule returns the shift length and lunch deduction for a day class.
func (p Policy) Schedule(c DayClass) (shiftHours, lunchHours float64) {
	switch c {
	case Weekday:
		return p.WeekdayShift, p.WeekdayLunch
	case Saturday:
		return saturdayShift, 0
	}
	return 0, 0
}

// Civil converts t into the policy location.
func (p Policy) Civil(t time.Time) time.Time {
	if p.Location == nil {
		return t
	}
	return t.In(p.Location)
}

// CivilDate is the YYYY-MM-DD attendance key for t.
func (p Policy) CivilDate(t time.Time) string {
	return p.Civil(t).Format(DateLayout)
}

// NormalizeEntry applies the entry floor to a check-in timestamp.
func (p Policy) NormalizeEntry(t time.Time) time.Time {
	if !p.EntryFloor {
		return t
	}
	c := p.Civil(t)
	if c.Hour() >= p.EntryFloorHour {
		return t
	}
	return time.Date(c.Year(), c.Month(), c.Day(), p.EntryFloorHour, 0, 0, 0, c.Location())
}
