// Package ledger rebuilds account balances from their event history.
// Nothing here is persisted: balances are replayed on every call.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindDeposit    Kind = "DEPOSIT"
	KindWithdrawal Kind = "WITHDRAWAL"
	KindOperation  Kind = "OPERATION"
)

// Event is one signed change to an account balance. Seq breaks ties between
// events sharing a timestamp and should follow insertion order.
type Event struct {
	Kind        Kind            `json:"kind"`
	RefID       uint64          `json:"ref_id"`
	At          time.Time       `json:"at"`
	Seq         int             `json:"seq"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type Entry struct {
	Event
	Balance decimal.Decimal `json:"balance"`
}

func Deposit(id uint64, at time.Time, amount decimal.Decimal, description string) Event {
	return Event{Kind: KindDeposit, RefID: id, At: at, Amount: amount.Abs(), Description: description}
}

func Withdrawal(id uint64, at time.Time, amount decimal.Decimal, description string) Event {
	return Event{Kind: KindWithdrawal, RefID: id, At: at, Amount: amount.Abs().Neg(), Description: description}
}

// OperationResult books the already converted net result of a closed operation.
func OperationResult(id uint64, closedAt time.Time, result decimal.Decimal) Event {
	return Event{Kind: KindOperation, RefID: id, At: closedAt, Amount: result}
}

// Sequence assigns Seq from the current slice order and returns events.
func Sequence(events []Event) []Event {
	for i := range events {
		events[i].Seq = i
	}
	return events
}

// Replay orders events chronologically and attaches the running balance
// after each one. The input slice is not modified.
func Replay(initial decimal.Decimal, events []Event) []Entry {
	if len(events) == 0 {
		return []Entry{}
	}
	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].At.Equal(ordered[j].At) {
			return ordered[i].At.Before(ordered[j].At)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	out := make([]Entry, 0, len(ordered))
	balance := initial
	for _, ev := range ordered {
		balance = balance.Add(ev.Amount)
		out = append(out, Entry{Event: ev, Balance: balance})
	}
	return out
}

// Current is initial plus every signed amount. Order does not matter.
func Current(initial decimal.Decimal, events []Event) decimal.Decimal {
	total := initial
	for _, ev := range events {
		total = total.Add(ev.Amount)
	}
	return total
}
