package analytics

import (
	"math"
	"sort"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const DefaultHistogramBins = 20

type Bin struct {
	Label string          `json:"label"`
	Lower decimal.Decimal `json:"lower"`
	Upper decimal.Decimal `json:"upper"`
	Count int             `json:"count"`
}

type Histogram struct {
	Currency string `json:"currency"`
	Bins     []Bin  `json:"bins"`
}

// BuildHistogram buckets result values into equal-width bins spanning
// [min, max]. When every value is the same the bins collapse onto that value
// and the first one holds every count, so the shape never changes.
func BuildHistogram(results []Result, bins int, currency string) Histogram {
	h := Histogram{Currency: currency, Bins: []Bin{}}
	if len(results) == 0 {
		return h
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	xs := make([]float64, len(results))
	for i, r := range results {
		xs[i] = r.Value.InexactFloat64()
	}
	sort.Float64s(xs)
	lo, hi := xs[0], xs[len(xs)-1]

	if lo == hi {
		edge := decimal.NewFromFloat(lo).Round(2)
		label := binLabel(edge, edge, currency)
		h.Bins = make([]Bin, bins)
		for i := range h.Bins {
			h.Bins[i] = Bin{Label: label, Lower: edge, Upper: edge}
		}
		h.Bins[0].Count = len(xs)
		return h
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	// stat.Histogram wants the last divider strictly above the maximum.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, xs, nil)

	h.Bins = make([]Bin, bins)
	for i := 0; i < bins; i++ {
		lower := decimal.NewFromFloat(edges[i]).Round(2)
		upper := decimal.NewFromFloat(edges[i+1]).Round(2)
		h.Bins[i] = Bin{
			Label: binLabel(lower, upper, currency),
			Lower: lower,
			Upper: upper,
			Count: int(counts[i]),
		}
	}
	return h
}

func binLabel(lower, upper decimal.Decimal, currency string) string {
	return FormatMoney(lower, currency) + " to " + FormatMoney(upper, currency)
}

// FormatMoney renders amount with the currency's symbol and separators.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
