package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finboard/internal/analytics"
	"finboard/internal/fx"
	"finboard/internal/ledger"
	"finboard/internal/models"
	"finboard/internal/repository"
)

// AnalyticsService feeds closed operations and account ledgers from storage
// into the aggregation functions.
type AnalyticsService struct {
	Repo     repository.Repository
	FX       *fx.Converter
	Accounts *AccountService
	Logger   *zap.Logger
	Options  analytics.Options
}

type BalancesView struct {
	Series     analytics.StackedSeries `json:"series"`
	Conversion fx.ConversionReport     `json:"conversion"`
}

// Location is the zone day boundaries are drawn in.
func (s *AnalyticsService) Location() *time.Location {
	if s.Options.Location == nil {
		return time.UTC
	}
	return s.Options.Location
}

func (s *AnalyticsService) options() analytics.Options {
	opts := s.Options
	opts.Location = s.Location()
	if opts.BaseCurrency == "" && s.FX != nil {
		opts.BaseCurrency = s.FX.BaseCurrency()
	}
	return opts
}

// Dashboard aggregates closed operations whose end date falls in [from, to)
// and compares them with the preceding window of equal length.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID uint64, from, to time.Time) (analytics.Report, error) {
	if !from.Before(to) {
		return analytics.Report{}, fmt.Errorf("%w: start must be before end", ErrInvalidInput)
	}
	current, report, err := s.Results(ctx, userID, &from, &to)
	if err != nil {
		return analytics.Report{}, err
	}
	pFrom, pTo := analytics.PreviousWindow(from, to)
	previous, prevReport, err := s.Results(ctx, userID, &pFrom, &pTo)
	if err != nil {
		return analytics.Report{}, err
	}
	report.Merge(prevReport)

	out := analytics.Build(current, previous, from, to, s.options())
	out.Conversion = report
	if !report.Clean() && s.Logger != nil {
		s.Logger.Warn("dashboard built with unconverted or skipped results",
			zap.Uint64("user_id", userID),
			zap.Int("degraded", report.Degraded),
			zap.Int("skipped", report.Skipped),
			zap.Strings("currencies", report.Currencies),
		)
	}
	return out, nil
}

// Results loads the user's closed operations in [from, to) converted into
// the base currency. Nil bounds are open.
func (s *AnalyticsService) Results(ctx context.Context, userID uint64, from, to *time.Time) ([]analytics.Result, fx.ConversionReport, error) {
	rows, err := s.Repo.ListClosedTrades(ctx, repository.ClosedTradesParams{UserID: userID, From: from, To: to})
	if err != nil {
		return nil, fx.ConversionReport{}, err
	}
	trades := make([]analytics.Trade, 0, len(rows))
	for _, r := range rows {
		t := analytics.Trade{
			OperationID: r.OperationID,
			AccountID:   r.AccountID,
			Currency:    r.Currency,
			Asset:       r.Ticker,
			Direction:   r.Direction,
			StartDate:   r.StartDate,
			EndDate:     r.EndDate,
			Result:      r.NetFinancialResult,
		}
		if r.StrategyName != nil {
			t.Strategy = *r.StrategyName
		}
		trades = append(trades, t)
	}
	var conv analytics.Converter
	if s.FX != nil {
		conv = s.FX
	}
	results, report := analytics.Prepare(ctx, conv, trades)
	return results, report, nil
}

// Balances replays every active account of the user day by day up to through.
func (s *AnalyticsService) Balances(ctx context.Context, userID uint64, through time.Time) (BalancesView, error) {
	active := true
	accounts, err := s.Repo.ListAccounts(ctx, repository.ListAccountsParams{
		UserID:   userID,
		IsActive: &active,
		Limit:    500,
		OrderBy:  "id",
		Asc:      boolPtr(true),
	})
	if err != nil {
		return BalancesView{}, err
	}
	var view BalancesView
	histories := make([]analytics.AccountHistory, 0, len(accounts))
	for i := range accounts {
		l, err := s.Accounts.replay(ctx, &accounts[i])
		if err != nil {
			return BalancesView{}, err
		}
		view.Conversion.Merge(l.Conversion)
		histories = append(histories, accountHistory(accounts[i], l.History))
	}
	view.Series = analytics.StackedBalances(histories, s.Location(), through)
	return view, nil
}

func (s *AnalyticsService) Snapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.PerformanceSnapshot, error) {
	return s.Repo.ListPerformanceSnapshots(ctx, params)
}

func accountHistory(a models.Account, entries []ledger.Entry) analytics.AccountHistory {
	return analytics.AccountHistory{
		AccountID: a.ID,
		Name:      a.Name,
		Currency:  a.Currency,
		Initial:   a.InitialBalance,
		Entries:   entries,
	}
}

func boolPtr(v bool) *bool { return &v }
