package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/ledger"
)

func day(d int) time.Time { return time.Date(2024, time.June, d, 15, 0, 0, 0, time.UTC) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func result(id uint64, d int, value string) Result {
	return Result{OperationID: id, EndDate: day(d), Value: dec(value), Converted: true}
}

func values(ds []decimal.Decimal) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type stubConverter struct{ rate map[string]decimal.Decimal }

func (s stubConverter) ToBase(_ context.Context, amount decimal.Decimal, currency string, _ time.Time) (decimal.Decimal, bool) {
	if currency == "BRL" {
		return amount, true
	}
	r, ok := s.rate[currency]
	if !ok {
		return amount, false
	}
	return amount.Mul(r).Round(2), true
}

func TestEquityCurveAndDrawdown(t *testing.T) {
	results := []Result{result(3, 3, "200"), result(1, 1, "100"), result(2, 2, "-50")}

	curve := EquityCurve(results)
	if got := values(curve.Values); !equalStrings(got, []string{"100", "50", "250"}) {
		t.Fatalf("curve=%v want [100 50 250]", got)
	}
	if !curve.Dates[0].Equal(day(1)) || !curve.Dates[2].Equal(day(3)) {
		t.Fatalf("dates=%v not in end date order", curve.Dates)
	}
	if dd := MaxDrawdown(results); dd.String() != "50" {
		t.Fatalf("drawdown=%s want 50", dd)
	}
}

func TestMaxDrawdownCountsLossesFromStart(t *testing.T) {
	results := []Result{result(1, 1, "-30"), result(2, 2, "10"), result(3, 3, "-5")}
	if dd := MaxDrawdown(results); dd.String() != "30" {
		t.Fatalf("drawdown=%s want 30", dd)
	}
	if dd := MaxDrawdown([]Result{result(1, 1, "10"), result(2, 2, "5")}); !dd.IsZero() {
		t.Fatalf("drawdown=%s want 0 for a rising curve", dd)
	}
}

func TestEmptyInputYieldsZeroValues(t *testing.T) {
	s := Summarize(nil)
	if s.Trades != 0 || !s.TotalPnL.IsZero() || !s.WinRate.IsZero() || !s.RiskReward.IsZero() || !s.MaxDrawdown.IsZero() {
		t.Fatalf("summary=%+v want zero", s)
	}
	if c := EquityCurve(nil); len(c.Dates) != 0 || len(c.Values) != 0 {
		t.Fatalf("curve=%+v want empty", c)
	}
	if d := DailyPnL(nil, time.UTC); len(d) != 0 {
		t.Fatalf("daily=%v want empty", d)
	}
	if h := BuildHistogram(nil, 20, "BRL"); len(h.Bins) != 0 {
		t.Fatalf("bins=%d want 0", len(h.Bins))
	}
	if g := Breakdown(nil, ByAsset, ""); len(g) != 0 {
		t.Fatalf("groups=%v want empty", g)
	}
}

func TestSummarize(t *testing.T) {
	start := day(1).Add(-2 * time.Hour)
	results := []Result{result(1, 1, "100"), result(2, 2, "-50"), result(3, 3, "200")}
	results[0].StartDate = &start

	s := Summarize(results)
	checks := map[string][2]string{
		"total":       {s.TotalPnL.String(), "250"},
		"win_rate":    {s.WinRate.String(), "66.67"},
		"average":     {s.AverageResult.String(), "83.33"},
		"max_gain":    {s.MaxGain.String(), "200"},
		"max_loss":    {s.MaxLoss.String(), "-50"},
		"avg_gain":    {s.AverageGain.String(), "150"},
		"avg_loss":    {s.AverageLoss.String(), "-50"},
		"risk_reward": {s.RiskReward.String(), "3"},
		"drawdown":    {s.MaxDrawdown.String(), "50"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Fatalf("%s=%s want=%s", name, c[0], c[1])
		}
	}
	if s.Trades != 3 || s.Wins != 2 || s.Losses != 1 {
		t.Fatalf("trades=%d wins=%d losses=%d", s.Trades, s.Wins, s.Losses)
	}
	if s.TimeInTrade != 2*time.Hour || s.TimeInTradeSeconds != 7200 {
		t.Fatalf("time in trade=%s want 2h", s.TimeInTrade)
	}
}

func TestSummarizeWithoutLosses(t *testing.T) {
	s := Summarize([]Result{result(1, 1, "10"), result(2, 2, "0")})
	if !s.RiskReward.IsZero() || !s.MaxLoss.IsZero() || !s.AverageLoss.IsZero() {
		t.Fatalf("summary=%+v want zero loss figures", s)
	}
	if s.WinRate.String() != "50" {
		t.Fatalf("win_rate=%s want 50", s.WinRate)
	}
}

func TestDailyPnLUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	results := []Result{
		{OperationID: 1, EndDate: time.Date(2024, 6, 2, 1, 0, 0, 0, time.UTC), Value: dec("10")},
		{OperationID: 2, EndDate: time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), Value: dec("5")},
		{OperationID: 3, EndDate: time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC), Value: dec("-1")},
	}
	got := DailyPnL(results, loc)
	if len(got) != 2 || got[0].Date != "2024-06-01" || got[0].Value.String() != "15" ||
		got[1].Date != "2024-06-02" || got[1].Value.String() != "-1" {
		t.Fatalf("daily=%+v", got)
	}
}

func TestBreakdown(t *testing.T) {
	results := []Result{
		{OperationID: 1, Strategy: "Breakout", Asset: "WINFUT", Direction: "BUY", Value: dec("10")},
		{OperationID: 2, Asset: "PETR4", Direction: "SELL", Value: dec("-4")},
		{OperationID: 3, Strategy: "Breakout", Asset: "PETR4", Direction: "BUY", Value: dec("6")},
	}
	byStrategy := Breakdown(results, ByStrategy, "")
	if len(byStrategy) != 2 || byStrategy[0].Key != "Breakout" || byStrategy[0].PnL.String() != "16" ||
		byStrategy[0].Trades != 2 || byStrategy[1].Key != DefaultUnclassified {
		t.Fatalf("by strategy=%+v", byStrategy)
	}
	byAsset := Breakdown(results, ByAsset, "")
	if len(byAsset) != 2 || byAsset[0].Key != "PETR4" || byAsset[0].PnL.String() != "2" {
		t.Fatalf("by asset=%+v", byAsset)
	}
	byDirection := Breakdown(results, ByDirection, "")
	if len(byDirection) != 2 || byDirection[1].Key != "SELL" || byDirection[1].Trades != 1 {
		t.Fatalf("by direction=%+v", byDirection)
	}
}

func TestChange(t *testing.T) {
	cases := []struct {
		prev, cur string
		want      string
		infinite  bool
	}{
		{"100", "150", "50", false},
		{"-100", "50", "150", false},
		{"200", "100", "-50", false},
		{"0", "10", "0", true},
		{"0", "0", "0", false},
		{"0", "-5", "0", false},
	}
	for _, tc := range cases {
		got := Change(dec(tc.prev), dec(tc.cur))
		if got.Value.String() != tc.want || got.Infinite != tc.infinite {
			t.Fatalf("prev=%s cur=%s got=%+v want=%s infinite=%v", tc.prev, tc.cur, got, tc.want, tc.infinite)
		}
	}
}

func TestComparePeriods(t *testing.T) {
	from := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	pFrom, pTo := PreviousWindow(from, to)
	if !pFrom.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) || !pTo.Equal(from) {
		t.Fatalf("previous window=%s..%s", pFrom, pTo)
	}

	current := []Result{result(1, 12, "30"), result(2, 13, "-10")}
	cmp := ComparePeriods(current, nil, from, to)
	if !cmp.PnLChange.Infinite || !cmp.TradesChange.Infinite {
		t.Fatalf("cmp=%+v want infinite changes from an empty previous window", cmp)
	}
	if cmp.WinRateDelta.String() != "50" {
		t.Fatalf("win rate delta=%s want 50", cmp.WinRateDelta)
	}

	previous := []Result{result(9, 2, "20")}
	cmp = ComparePeriods(current, previous, from, to)
	if cmp.PnLChange.Infinite || cmp.PnLChange.Value.String() != "0" {
		t.Fatalf("pnl change=%+v want 0", cmp.PnLChange)
	}
	if cmp.TradesChange.Value.String() != "100" || cmp.WinRateDelta.String() != "-50" {
		t.Fatalf("trades change=%+v win rate delta=%s", cmp.TradesChange, cmp.WinRateDelta)
	}
}

func TestBuildHistogram(t *testing.T) {
	results := []Result{result(1, 1, "100"), result(2, 2, "-50"), result(3, 3, "200")}
	h := BuildHistogram(results, 20, "BRL")
	if len(h.Bins) != 20 {
		t.Fatalf("bins=%d want 20", len(h.Bins))
	}
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	if total != 3 {
		t.Fatalf("total count=%d want 3", total)
	}
	if h.Bins[0].Count != 1 || h.Bins[12].Count != 1 || h.Bins[19].Count != 1 {
		t.Fatalf("counts first=%d mid=%d last=%d", h.Bins[0].Count, h.Bins[12].Count, h.Bins[19].Count)
	}
	if h.Bins[0].Lower.String() != "-50" || h.Bins[0].Upper.String() != "-37.5" || h.Bins[19].Upper.String() != "200" {
		t.Fatalf("edges first=[%s,%s] last upper=%s", h.Bins[0].Lower, h.Bins[0].Upper, h.Bins[19].Upper)
	}
	want := FormatMoney(dec("-50"), "BRL") + " to " + FormatMoney(dec("-37.5"), "BRL")
	if h.Bins[0].Label != want {
		t.Fatalf("label=%q want=%q", h.Bins[0].Label, want)
	}
}

func TestBuildHistogramSingleValue(t *testing.T) {
	h := BuildHistogram([]Result{result(1, 1, "7"), result(2, 2, "7")}, 20, "BRL")
	if len(h.Bins) != 20 {
		t.Fatalf("bins=%d want 20", len(h.Bins))
	}
	if h.Bins[0].Count != 2 || h.Bins[19].Count != 0 {
		t.Fatalf("first=%d last=%d want both values in the first bin", h.Bins[0].Count, h.Bins[19].Count)
	}
	if h.Bins[0].Lower.String() != "7" || h.Bins[19].Upper.String() != "7" {
		t.Fatalf("edges=[%s,%s]", h.Bins[0].Lower, h.Bins[19].Upper)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(dec("1234.5"), "USD"); got != "$1,234.50" {
		t.Fatalf("usd=%q", got)
	}
}

func TestPrepare(t *testing.T) {
	end1, end2 := day(5), day(2)
	r1, r2, r3 := dec("10"), dec("-3"), dec("4")
	trades := []Trade{
		{OperationID: 1, Currency: "USD", EndDate: &end1, Result: &r1},
		{OperationID: 2, Currency: "BRL", EndDate: &end2, Result: &r2},
		{OperationID: 3, Currency: "EUR", EndDate: &end2, Result: &r3},
		{OperationID: 4, Currency: "BRL", Result: &r1},
		{OperationID: 5, Currency: "BRL", EndDate: &end1},
	}
	got, report := Prepare(context.Background(), stubConverter{rate: map[string]decimal.Decimal{"USD": dec("5")}}, trades)
	if len(got) != 3 {
		t.Fatalf("results=%d want 3", len(got))
	}
	if got[0].OperationID != 2 || got[1].OperationID != 3 || got[2].OperationID != 1 {
		t.Fatalf("order=%d,%d,%d want 2,3,1", got[0].OperationID, got[1].OperationID, got[2].OperationID)
	}
	if got[2].Value.String() != "50" || got[1].Value.String() != "4" || got[1].Converted {
		t.Fatalf("values=%s,%s converted=%v", got[2].Value, got[1].Value, got[1].Converted)
	}
	if report.Skipped != 2 || report.Degraded != 1 || report.Currencies[0] != "EUR" {
		t.Fatalf("report=%+v", report)
	}
}

func TestStackedBalances(t *testing.T) {
	a := ledger.Replay(dec("100"), ledger.Sequence([]ledger.Event{
		ledger.Deposit(1, day(1), dec("50"), ""),
		ledger.OperationResult(2, day(3), dec("-20")),
	}))
	b := ledger.Replay(dec("0"), ledger.Sequence([]ledger.Event{
		ledger.Deposit(3, day(2), dec("10"), ""),
	}))
	series := StackedBalances([]AccountHistory{
		{AccountID: 1, Name: "a", Entries: a},
		{AccountID: 2, Name: "b", Entries: b},
		{AccountID: 3, Name: "idle", Initial: dec("42")},
	}, time.UTC, day(4))

	if !equalStrings(series.Dates, []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04"}) {
		t.Fatalf("dates=%v", series.Dates)
	}
	want := [][]string{
		{"150", "150", "130", "130"},
		{"0", "10", "10", "10"},
		{"42", "42", "42", "42"},
	}
	for i, line := range series.Accounts {
		if got := values(line.Balances); !equalStrings(got, want[i]) {
			t.Fatalf("account %d balances=%v want=%v", line.AccountID, got, want[i])
		}
	}
}

func TestBuild(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	r := Build([]Result{result(1, 1, "100"), result(2, 2, "-50")}, nil, from, to, Options{BaseCurrency: "BRL"})
	if r.Summary.Trades != 2 || len(r.Equity.Values) != 2 || len(r.Histogram.Bins) != DefaultHistogramBins {
		t.Fatalf("report=%+v", r)
	}
	if len(r.Breakdowns.Strategy) != 1 || r.Breakdowns.Strategy[0].Key != DefaultUnclassified {
		t.Fatalf("strategy breakdown=%+v", r.Breakdowns.Strategy)
	}
}
