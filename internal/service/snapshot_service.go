package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"finboard/internal/analytics"
	"finboard/internal/models"
	"finboard/internal/repository"
)

// SnapshotService freezes each user's cumulative KPIs once a day.
type SnapshotService struct {
	Repo      repository.Repository
	Analytics *AnalyticsService
	Logger    *zap.Logger
	Flags     *SystemSettingsService
	Now       func() time.Time
}

func (s *SnapshotService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RunOnce snapshots the last completed day for every user that owns an
// account. A failing user does not stop the others; their errors are joined.
func (s *SnapshotService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil || s.Analytics == nil {
		return nil
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeaturePerformanceSnapshots, true) {
		return nil
	}
	users, err := s.Repo.ListAccountUserIDs(ctx)
	if err != nil {
		return err
	}
	day := s.now().In(s.Analytics.Location()).AddDate(0, 0, -1)
	var errs []error
	for _, userID := range users {
		if _, err := s.SnapshotUser(ctx, userID, day); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
		}
	}
	if s.Logger != nil {
		s.Logger.Info("performance snapshots written", zap.Int("users", len(users)), zap.Int("failed", len(errs)))
	}
	return errors.Join(errs...)
}

// SnapshotUser stores the KPIs of every operation closed before the end of
// day, replacing an earlier snapshot for the same day.
func (s *SnapshotService) SnapshotUser(ctx context.Context, userID uint64, day time.Time) (*models.PerformanceSnapshot, error) {
	loc := s.Analytics.Location()
	y, m, d := day.In(loc).Date()
	until := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1)

	results, report, err := s.Analytics.Results(ctx, userID, nil, &until)
	if err != nil {
		return nil, err
	}
	summary := analytics.Summarize(results)
	raw, err := json.Marshal(map[string]any{
		"summary":    summary,
		"conversion": report,
	})
	if err != nil {
		return nil, err
	}
	item := &models.PerformanceSnapshot{
		UserID:       userID,
		SnapshotDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Trades:       summary.Trades,
		TotalPnL:     summary.TotalPnL.Round(2),
		WinRate:      summary.WinRate,
		Currency:     s.Analytics.options().BaseCurrency,
		Summary:      datatypes.JSON(raw),
	}
	if err := s.Repo.UpsertPerformanceSnapshot(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
