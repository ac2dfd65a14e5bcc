package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/ledger"
)

// AccountHistory is one account's replayed ledger.
type AccountHistory struct {
	AccountID uint64
	Name      string
	Currency  string
	Initial   decimal.Decimal
	Entries   []ledger.Entry
}

type BalanceLine struct {
	AccountID uint64            `json:"account_id"`
	Name      string            `json:"name"`
	Currency  string            `json:"currency"`
	Balances  []decimal.Decimal `json:"balances"`
}

type StackedSeries struct {
	Dates    []string      `json:"dates"`
	Accounts []BalanceLine `json:"accounts"`
}

// StackedBalances aligns per-account daily balances on one date axis running
// from the earliest first event of any account through the day of through.
// An account reads 0 before its own first event; an account with no events
// at all reads its initial balance for the whole axis.
func StackedBalances(accounts []AccountHistory, loc *time.Location, through time.Time) StackedSeries {
	if loc == nil {
		loc = time.UTC
	}
	out := StackedSeries{Dates: []string{}, Accounts: []BalanceLine{}}

	daily := make([][]ledger.DailyBalance, len(accounts))
	var first, last time.Time
	for i, a := range accounts {
		daily[i] = ledger.Daily(a.Entries, loc, through)
		if len(daily[i]) == 0 {
			continue
		}
		if d := daily[i][0].Day; first.IsZero() || d.Before(first) {
			first = d
		}
		if d := daily[i][len(daily[i])-1].Day; last.IsZero() || d.After(last) {
			last = d
		}
	}

	for d := first; !first.IsZero() && !d.After(last); d = d.AddDate(0, 0, 1) {
		out.Dates = append(out.Dates, d.Format(dateLayout))
	}

	for i, a := range accounts {
		line := BalanceLine{AccountID: a.AccountID, Name: a.Name, Currency: a.Currency, Balances: make([]decimal.Decimal, len(out.Dates))}
		byDay := make(map[string]decimal.Decimal, len(daily[i]))
		for _, db := range daily[i] {
			byDay[db.Day.Format(dateLayout)] = db.Balance
		}
		running := decimal.Zero
		if len(daily[i]) == 0 {
			running = a.Initial
		}
		for j, day := range out.Dates {
			if b, ok := byDay[day]; ok {
				running = b
			}
			line.Balances[j] = running
		}
		out.Accounts = append(out.Accounts, line)
	}
	return out
}
