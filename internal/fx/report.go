package fx

import "sort"

// ConversionReport counts amounts that could not be converted and were kept
// in their original currency, plus records skipped for missing data.
type ConversionReport struct {
	Degraded   int      `json:"degraded"`
	Skipped    int      `json:"skipped"`
	Currencies []string `json:"currencies,omitempty"`
}

func (r *ConversionReport) AddDegraded(currency string) {
	r.Degraded++
	for _, c := range r.Currencies {
		if c == currency {
			return
		}
	}
	r.Currencies = append(r.Currencies, currency)
	sort.Strings(r.Currencies)
}

func (r *ConversionReport) AddSkipped() { r.Skipped++ }

// Clean reports whether every amount was converted and nothing was skipped.
func (r ConversionReport) Clean() bool { return r.Degraded == 0 && r.Skipped == 0 }

// Merge folds o into r.
func (r *ConversionReport) Merge(o ConversionReport) {
	r.Skipped += o.Skipped
	r.Degraded += o.Degraded - len(o.Currencies)
	for _, c := range o.Currencies {
		r.AddDegraded(c)
	}
}
