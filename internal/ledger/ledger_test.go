package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(day int) time.Time { return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC) }

func TestCurrentDepositAndClosedLoss(t *testing.T) {
	events := Sequence([]Event{
		Deposit(1, at(1), dec("500"), "funding"),
		OperationResult(7, at(2), dec("-200")),
	})
	assert.Equal(t, "1300", Current(dec("1000"), events).String())

	history := Replay(dec("1000"), events)
	require.Len(t, history, 2)
	assert.Equal(t, "1500", history[0].Balance.String())
	assert.Equal(t, "1300", history[1].Balance.String())
}

func TestCurrentIsOrderIndependent(t *testing.T) {
	a := []Event{
		Withdrawal(1, at(5), dec("50"), ""),
		Deposit(2, at(1), dec("300"), ""),
		OperationResult(3, at(3), dec("75.5")),
	}
	b := []Event{a[2], a[0], a[1]}
	assert.True(t, Current(dec("100"), a).Equal(Current(dec("100"), b)))
	assert.Equal(t, "425.5", Current(dec("100"), a).String())

	ha := Replay(dec("100"), Sequence(a))
	hb := Replay(dec("100"), Sequence(b))
	require.Len(t, hb, 3)
	for i := range ha {
		assert.Equal(t, ha[i].RefID, hb[i].RefID)
		assert.True(t, ha[i].Balance.Equal(hb[i].Balance))
	}
	assert.Equal(t, uint64(2), ha[0].RefID)
	assert.Equal(t, "425.5", ha[2].Balance.String())
}

func TestReplayTieBreaksOnSequence(t *testing.T) {
	events := Sequence([]Event{
		Deposit(10, at(1), dec("100"), ""),
		Withdrawal(11, at(1), dec("30"), ""),
		Deposit(12, at(1), dec("5"), ""),
	})
	history := Replay(decimal.Zero, events)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"100", "70", "75"}, []string{
		history[0].Balance.String(), history[1].Balance.String(), history[2].Balance.String(),
	})
}

func TestWithdrawalIsAlwaysNegative(t *testing.T) {
	assert.Equal(t, "-20", Withdrawal(1, at(1), dec("-20"), "").Amount.String())
	assert.Equal(t, "20", Deposit(1, at(1), dec("-20"), "").Amount.String())
}

func TestReplayEmpty(t *testing.T) {
	assert.Empty(t, Replay(dec("10"), nil))
	assert.Equal(t, "10", Current(dec("10"), nil).String())
	assert.Empty(t, Daily(nil, time.UTC, at(3)))
}

func TestDailyForwardFills(t *testing.T) {
	events := Sequence([]Event{
		Deposit(1, at(1), dec("100"), ""),
		Deposit(2, at(1).Add(time.Hour), dec("10"), ""),
		Withdrawal(3, at(4), dec("20"), ""),
	})
	days := Daily(Replay(decimal.Zero, events), time.UTC, at(5))
	require.Len(t, days, 5)
	want := []string{"110", "110", "110", "90", "90"}
	for i, d := range days {
		assert.Equal(t, want[i], d.Balance.String(), "day %d", i)
		assert.True(t, d.Day.Equal(time.Date(2024, time.March, 1+i, 0, 0, 0, 0, time.UTC)), "day %d is %s", i, d.Day)
	}
}
