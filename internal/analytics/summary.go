package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Summary struct {
	TotalPnL           decimal.Decimal `json:"total_pnl"`
	Trades             int             `json:"trades"`
	Wins               int             `json:"wins"`
	Losses             int             `json:"losses"`
	WinRate            decimal.Decimal `json:"win_rate"`
	AverageResult      decimal.Decimal `json:"average_result"`
	MaxGain            decimal.Decimal `json:"max_gain"`
	MaxLoss            decimal.Decimal `json:"max_loss"`
	AverageGain        decimal.Decimal `json:"average_gain"`
	AverageLoss        decimal.Decimal `json:"average_loss"`
	RiskReward         decimal.Decimal `json:"risk_reward"`
	TimeInTrade        time.Duration   `json:"-"`
	TimeInTradeSeconds int64           `json:"time_in_trade_seconds"`
	MaxDrawdown        decimal.Decimal `json:"max_drawdown"`
}

// Summarize computes the KPI set. Ratios and averages are rounded to cents;
// the win rate is a percentage with two decimals.
func Summarize(results []Result) Summary {
	s := Summary{
		TotalPnL:      decimal.Zero,
		WinRate:       decimal.Zero,
		AverageResult: decimal.Zero,
		MaxGain:       decimal.Zero,
		MaxLoss:       decimal.Zero,
		AverageGain:   decimal.Zero,
		AverageLoss:   decimal.Zero,
		RiskReward:    decimal.Zero,
		MaxDrawdown:   decimal.Zero,
	}
	if len(results) == 0 {
		return s
	}

	gains, losses := decimal.Zero, decimal.Zero
	for _, r := range results {
		s.Trades++
		s.TotalPnL = s.TotalPnL.Add(r.Value)
		switch {
		case r.Value.IsPositive():
			s.Wins++
			gains = gains.Add(r.Value)
			if r.Value.GreaterThan(s.MaxGain) {
				s.MaxGain = r.Value
			}
		case r.Value.IsNegative():
			s.Losses++
			losses = losses.Add(r.Value)
			if r.Value.LessThan(s.MaxLoss) {
				s.MaxLoss = r.Value
			}
		}
		if r.StartDate != nil && !r.StartDate.IsZero() && !r.EndDate.IsZero() {
			if d := r.EndDate.Sub(*r.StartDate); d > 0 {
				s.TimeInTrade += d
			}
		}
	}

	n := decimal.NewFromInt(int64(s.Trades))
	s.WinRate = decimal.NewFromInt(int64(s.Wins)).Div(n).Mul(hundred).Round(2)
	s.AverageResult = s.TotalPnL.Div(n).Round(2)
	avgGain, avgLoss := decimal.Zero, decimal.Zero
	if s.Wins > 0 {
		avgGain = gains.Div(decimal.NewFromInt(int64(s.Wins)))
		s.AverageGain = avgGain.Round(2)
	}
	if s.Losses > 0 {
		avgLoss = losses.Div(decimal.NewFromInt(int64(s.Losses)))
		s.AverageLoss = avgLoss.Round(2)
	}
	if !avgLoss.IsZero() {
		s.RiskReward = avgGain.Div(avgLoss).Abs().Round(2)
	}
	s.TimeInTradeSeconds = int64(s.TimeInTrade / time.Second)
	s.MaxDrawdown = MaxDrawdown(results)
	return s
}

// MaxDrawdown walks results chronologically from a zero running total and
// returns the largest distance below the highest total seen so far.
func MaxDrawdown(results []Result) decimal.Decimal {
	peak, running, worst := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range chronological(results) {
		running = running.Add(r.Value)
		if running.GreaterThan(peak) {
			peak = running
		}
		if dd := peak.Sub(running); dd.GreaterThan(worst) {
			worst = dd
		}
	}
	return worst
}
