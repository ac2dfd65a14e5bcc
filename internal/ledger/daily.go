package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type DailyBalance struct {
	Day     time.Time       `json:"day"`
	Balance decimal.Decimal `json:"balance"`
}

// Daily folds replayed entries into one closing balance per calendar day in
// loc, from the first event's day through the day of through. Days without
// events carry the previous balance forward.
func Daily(entries []Entry, loc *time.Location, through time.Time) []DailyBalance {
	if len(entries) == 0 {
		return []DailyBalance{}
	}
	if loc == nil {
		loc = time.UTC
	}
	last := Day(through, loc)
	closing := make(map[time.Time]decimal.Decimal, len(entries))
	for _, e := range entries {
		closing[Day(e.At, loc)] = e.Balance
	}
	first := Day(entries[0].At, loc)
	lastEvent := Day(entries[len(entries)-1].At, loc)
	if lastEvent.After(last) {
		last = lastEvent
	}

	out := make([]DailyBalance, 0)
	balance := decimal.Zero
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if b, ok := closing[d]; ok {
			balance = b
		}
		out = append(out, DailyBalance{Day: d, Balance: balance})
	}
	return out
}

// Day truncates t to midnight of its calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
