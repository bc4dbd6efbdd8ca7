package selections

import "time"

// Record is one past pick from the TTFL history page. Date is zero when the
// page's date cell could not be parsed.
type Record struct {
	Date       time.Time `json:"date"`
	PlayerName string    `json:"playerName"`
}

// Dated reports whether the record's date was parsed.
func (r Record) Dated() bool {
	return !r.Date.IsZero()
}
