// Package lifecycle derives an operation's status and dates from its
// movements. Compute is pure; persisting the result is the caller's job.
package lifecycle

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	Entry MovementType = "ENTRY"
	Exit  MovementType = "EXIT"
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

type Movement struct {
	Type     MovementType
	At       time.Time
	Quantity decimal.Decimal
}

type State struct {
	Status        Status
	StartDate     *time.Time
	EndDate       *time.Time
	EntryQuantity decimal.Decimal
	ExitQuantity  decimal.Decimal
	// Invalid is set when movements exist but none carries a timestamp.
	Invalid bool
}

// Compute derives the operation state. An operation is CLOSED only when
// entries and exits balance at a positive quantity and at least one exit has
// a timestamp; anything else is OPEN with no end date, so a closed operation
// reopens as soon as an edit breaks the balance.
func Compute(movements []Movement) State {
	st := State{Status: StatusOpen, EntryQuantity: decimal.Zero, ExitQuantity: decimal.Zero}
	if len(movements) == 0 {
		return st
	}

	var start, lastExit time.Time
	for _, m := range movements {
		switch m.Type {
		case Entry:
			st.EntryQuantity = st.EntryQuantity.Add(m.Quantity)
		case Exit:
			st.ExitQuantity = st.ExitQuantity.Add(m.Quantity)
			if !m.At.IsZero() && (lastExit.IsZero() || m.At.After(lastExit)) {
				lastExit = m.At
			}
		}
		if !m.At.IsZero() && (start.IsZero() || m.At.Before(start)) {
			start = m.At
		}
	}

	if start.IsZero() {
		st.Invalid = true
		return st
	}
	st.StartDate = &start

	if st.EntryQuantity.IsPositive() && st.EntryQuantity.Equal(st.ExitQuantity) && !lastExit.IsZero() {
		st.Status = StatusClosed
		st.EndDate = &lastExit
	}
	return st
}

// Same reports whether two states would persist identically.
func (s State) Same(o State) bool {
	return s.Status == o.Status && sameTime(s.StartDate, o.StartDate) && sameTime(s.EndDate, o.EndDate)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
