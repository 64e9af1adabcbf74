package attendance

import (
	"math"
	"time"
)

// Hours is the split of one day's worked time.
type Hours struct {
	Normal float64 `json:"normal_hours"`
	Extra  float64 `json:"extra_hours"`
	Debit  float64 `json:"debit_hours"`
}

// Calculate splits the time between checkIn and checkOut into normal, extra
// and debit hours. The day class comes from checkIn, so a shift crossing
// midnight is booked on the day it started. A checkOut before checkIn counts
// as zero elapsed time. Results are rounded to 2 decimals, half away from zero.
func (p Policy) Calculate(checkIn, checkOut time.Time) Hours {
	total := checkOut.Sub(checkIn).Hours()
	if total < 0 {
		total = 0
	}
	shift, lunch := p.Schedule(ClassOf(p.Civil(checkIn).Weekday()))

	net := math.Max(total-lunch, 0)
	h := Hours{
		Normal: math.Min(net, shift),
		Extra:  math.Max(net-shift, 0),
		Debit:  math.Max(shift-net, 0),
	}
	if !p.DebitHours {
		h.Debit = 0
	}
	return Hours{Normal: round2(h.Normal), Extra: round2(h.Extra), Debit: round2(h.Debit)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
