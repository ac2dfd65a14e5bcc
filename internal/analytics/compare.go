package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// PctChange is a percentage change. Infinite marks growth from a zero
// previous value, where no finite percentage exists.
type PctChange struct {
	Value    decimal.Decimal `json:"value"`
	Infinite bool            `json:"infinite"`
}

type Comparison struct {
	Current      Summary         `json:"current"`
	Previous     Summary         `json:"previous"`
	PreviousFrom time.Time       `json:"previous_from"`
	PreviousTo   time.Time       `json:"previous_to"`
	PnLChange    PctChange       `json:"pnl_change"`
	TradesChange PctChange       `json:"trades_change"`
	WinRateDelta decimal.Decimal `json:"win_rate_delta"`
}

// PreviousWindow returns the window of equal length ending where [from, to)
// starts.
func PreviousWindow(from, to time.Time) (time.Time, time.Time) {
	return from.Add(-to.Sub(from)), from
}

// Change is (current - previous) / |previous| * 100 rounded to two decimals.
// A zero previous value yields Infinite when current is positive and 0%
// otherwise.
func Change(previous, current decimal.Decimal) PctChange {
	if previous.IsZero() {
		return PctChange{Value: decimal.Zero, Infinite: current.IsPositive()}
	}
	return PctChange{Value: current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(2)}
}

// ComparePeriods contrasts the summaries of the current and the preceding
// window. The win rate is compared as a point delta.
func ComparePeriods(current, previous []Result, from, to time.Time) Comparison {
	cur, prev := Summarize(current), Summarize(previous)
	pFrom, pTo := PreviousWindow(from, to)
	return Comparison{
		Current:      cur,
		Previous:     prev,
		PreviousFrom: pFrom,
		PreviousTo:   pTo,
		PnLChange:    Change(prev.TotalPnL, cur.TotalPnL),
		TradesChange: Change(decimal.NewFromInt(int64(prev.Trades)), decimal.NewFromInt(int64(cur.Trades))),
		WinRateDelta: cur.WinRate.Sub(prev.WinRate),
	}
}
