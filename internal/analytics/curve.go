package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Curve holds parallel date and value sequences.
type Curve struct {
	Dates  []time.Time       `json:"dates"`
	Values []decimal.Decimal `json:"values"`
}

type DayValue struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

const dateLayout = "2006-01-02"

// EquityCurve is the running sum of results in end date order.
func EquityCurve(results []Result) Curve {
	ordered := chronological(results)
	c := Curve{Dates: make([]time.Time, 0, len(ordered)), Values: make([]decimal.Decimal, 0, len(ordered))}
	total := decimal.Zero
	for _, r := range ordered {
		total = total.Add(r.Value)
		c.Dates = append(c.Dates, r.EndDate)
		c.Values = append(c.Values, total)
	}
	return c
}

// DailyPnL sums results per calendar day of their end date in loc.
func DailyPnL(results []Result, loc *time.Location) []DayValue {
	if loc == nil {
		loc = time.UTC
	}
	sums := map[string]decimal.Decimal{}
	for _, r := range results {
		key := r.EndDate.In(loc).Format(dateLayout)
		sums[key] = sums[key].Add(r.Value)
	}
	out := make([]DayValue, 0, len(sums))
	for day, v := range sums {
		out = append(out, DayValue{Date: day, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
