package attendance

import "mechlog/models"

// Totals are the summed hour fields of a set of attendance records.
type Totals struct {
	Normal float64 `json:"total_normal"`
	Extras float64 `json:"total_extras"`
	Debits float64 `json:"total_debits"`
}

// Sum adds up the hour fields of records. Records still open contribute 0.
func Sum(records []models.Attendance) Totals {
	var t Totals
	for _, r := range records {
		t.Normal += r.NormalHours
		t.Extras += r.ExtraHours
		t.Debits += r.DebitHours
	}
	return Totals{Normal: round2(t.Normal), Extras: round2(t.Extras), Debits: round2(t.Debits)}
}
