// Package analytics aggregates closed operations into performance figures.
// Every function works on in-memory records already converted into the base
// currency; empty input yields zero values, never an error.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/fx"
)

// Trade is a closed operation as read from storage, result in the account
// currency.
type Trade struct {
	OperationID uint64
	AccountID   uint64
	Currency    string
	Asset       string
	Strategy    string
	Direction   string
	StartDate   *time.Time
	EndDate     *time.Time
	Result      *decimal.Decimal
}

// Result is a trade whose outcome has been expressed in the base currency.
type Result struct {
	OperationID uint64          `json:"operation_id"`
	AccountID   uint64          `json:"account_id"`
	Asset       string          `json:"asset"`
	Strategy    string          `json:"strategy,omitempty"`
	Direction   string          `json:"direction"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     time.Time       `json:"end_date"`
	Value       decimal.Decimal `json:"value"`
	Converted   bool            `json:"converted"`
}

type Converter interface {
	ToBase(ctx context.Context, amount decimal.Decimal, currency string, at time.Time) (decimal.Decimal, bool)
}

// Prepare converts each trade at its end date and orders the results by end
// date, then operation id. Trades missing a result or end date are skipped;
// trades whose rate is unavailable keep their original amount. Both cases are
// counted in the report.
func Prepare(ctx context.Context, conv Converter, trades []Trade) ([]Result, fx.ConversionReport) {
	var report fx.ConversionReport
	out := make([]Result, 0, len(trades))
	for _, t := range trades {
		if t.Result == nil || t.EndDate == nil || t.EndDate.IsZero() {
			report.AddSkipped()
			continue
		}
		value, ok := *t.Result, true
		if conv != nil {
			value, ok = conv.ToBase(ctx, *t.Result, t.Currency, *t.EndDate)
		}
		if !ok {
			report.AddDegraded(t.Currency)
		}
		out = append(out, Result{
			OperationID: t.OperationID,
			AccountID:   t.AccountID,
			Asset:       t.Asset,
			Strategy:    t.Strategy,
			Direction:   t.Direction,
			StartDate:   t.StartDate,
			EndDate:     *t.EndDate,
			Value:       value,
			Converted:   ok,
		})
	}
	sortResults(out)
	return out, report
}

func sortResults(rs []Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].EndDate.Equal(rs[j].EndDate) {
			return rs[i].EndDate.Before(rs[j].EndDate)
		}
		return rs[i].OperationID < rs[j].OperationID
	})
}

// chronological returns a sorted copy so callers may pass results in any order.
func chronological(rs []Result) []Result {
	out := make([]Result, len(rs))
	copy(out, rs)
	sortResults(out)
	return out
}
