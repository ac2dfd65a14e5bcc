package analytics

import (
	"time"

	"finboard/internal/fx"
)

type Options struct {
	Location      *time.Location
	HistogramBins int
	Unclassified  string
	BaseCurrency  string
}

type Breakdowns struct {
	Strategy  []Group `json:"strategy"`
	Asset     []Group `json:"asset"`
	Direction []Group `json:"direction"`
}

// Report bundles every aggregate over one window of results.
type Report struct {
	From       time.Time           `json:"from"`
	To         time.Time           `json:"to"`
	Currency   string              `json:"currency"`
	Summary    Summary             `json:"summary"`
	Equity     Curve               `json:"equity_curve"`
	Daily      []DayValue          `json:"daily_pnl"`
	Breakdowns Breakdowns          `json:"breakdowns"`
	Comparison Comparison          `json:"comparison"`
	Histogram  Histogram           `json:"histogram"`
	Conversion fx.ConversionReport `json:"conversion"`
}

// Build aggregates current over [from, to) and compares it with previous,
// the results of the preceding window of the same length.
func Build(current, previous []Result, from, to time.Time, opts Options) Report {
	cmp := ComparePeriods(current, previous, from, to)
	return Report{
		From:     from,
		To:       to,
		Currency: opts.BaseCurrency,
		Summary:  cmp.Current,
		Equity:   EquityCurve(current),
		Daily:    DailyPnL(current, opts.Location),
		Breakdowns: Breakdowns{
			Strategy:  Breakdown(current, ByStrategy, opts.Unclassified),
			Asset:     Breakdown(current, ByAsset, opts.Unclassified),
			Direction: Breakdown(current, ByDirection, opts.Unclassified),
		},
		Comparison: cmp,
		Histogram:  BuildHistogram(current, opts.HistogramBins, opts.BaseCurrency),
	}
}
