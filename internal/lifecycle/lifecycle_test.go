package lifecycle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func ts(day int) time.Time { return time.Date(2024, time.May, day, 10, 0, 0, 0, time.UTC) }

func mv(t MovementType, day int, qty int64) Movement {
	m := Movement{Type: t, Quantity: decimal.NewFromInt(qty)}
	if day > 0 {
		m.At = ts(day)
	}
	return m
}

func TestComputeNoMovements(t *testing.T) {
	st := Compute(nil)
	if st.Status != StatusOpen || st.StartDate != nil || st.EndDate != nil {
		t.Fatalf("state=%+v want open without dates", st)
	}
	if st.Invalid {
		t.Fatalf("empty set must not be flagged invalid")
	}
}

func TestComputeBalancedEntriesAndExitsClose(t *testing.T) {
	st := Compute([]Movement{
		mv(Entry, 1, 10),
		mv(Exit, 4, 15),
		mv(Entry, 2, 10),
		mv(Exit, 3, 5),
	})
	if st.Status != StatusClosed {
		t.Fatalf("status=%s want CLOSED", st.Status)
	}
	if st.EntryQuantity.String() != "20" || st.ExitQuantity.String() != "20" {
		t.Fatalf("entry=%s exit=%s want 20/20", st.EntryQuantity, st.ExitQuantity)
	}
	if st.StartDate == nil || !st.StartDate.Equal(ts(1)) {
		t.Fatalf("start=%v want %v", st.StartDate, ts(1))
	}
	if st.EndDate == nil || !st.EndDate.Equal(ts(4)) {
		t.Fatalf("end=%v want %v", st.EndDate, ts(4))
	}
}

func TestComputePartialExitStaysOpen(t *testing.T) {
	st := Compute([]Movement{mv(Entry, 1, 10), mv(Exit, 2, 4)})
	if st.Status != StatusOpen || st.EndDate != nil {
		t.Fatalf("state=%+v want open", st)
	}
	if st.StartDate == nil || !st.StartDate.Equal(ts(1)) {
		t.Fatalf("start=%v want %v", st.StartDate, ts(1))
	}
}

func TestComputeStartUsesEarliestMovementOfAnyType(t *testing.T) {
	st := Compute([]Movement{mv(Entry, 5, 1), mv(Exit, 3, 1)})
	if st.StartDate == nil || !st.StartDate.Equal(ts(3)) {
		t.Fatalf("start=%v want %v", st.StartDate, ts(3))
	}
}

func TestComputeReopensWhenBalanceBreaks(t *testing.T) {
	movements := []Movement{mv(Entry, 1, 10), mv(Exit, 2, 10)}
	closed := Compute(movements)
	if closed.Status != StatusClosed {
		t.Fatalf("status=%s want CLOSED", closed.Status)
	}

	movements[1].Quantity = decimal.NewFromInt(7)
	reopened := Compute(movements)
	if reopened.Status != StatusOpen || reopened.EndDate != nil {
		t.Fatalf("state=%+v want reopened without end date", reopened)
	}
}

func TestComputeZeroQuantitiesStayOpen(t *testing.T) {
	st := Compute([]Movement{mv(Entry, 1, 0), mv(Exit, 2, 0)})
	if st.Status != StatusOpen {
		t.Fatalf("status=%s want OPEN", st.Status)
	}
}

func TestComputeWithoutTimestampsIsInvalid(t *testing.T) {
	st := Compute([]Movement{mv(Entry, 0, 1), mv(Exit, 0, 1)})
	if !st.Invalid || st.Status != StatusOpen || st.StartDate != nil || st.EndDate != nil {
		t.Fatalf("state=%+v want invalid open without dates", st)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	movements := []Movement{mv(Entry, 1, 3), mv(Exit, 2, 1), mv(Exit, 6, 2)}
	first := Compute(movements)
	second := Compute(movements)
	if !first.Same(second) {
		t.Fatalf("first=%+v second=%+v want identical", first, second)
	}
	if first.Same(Compute(movements[:2])) {
		t.Fatalf("different movement sets must not compare equal")
	}
}
