package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"finboard/internal/fx"
)

// FXWarmupService fetches the previous day's rates ahead of the first
// dashboard request of the day.
type FXWarmupService struct {
	FX         *fx.Converter
	Currencies []string
	Logger     *zap.Logger
	Flags      *SystemSettingsService
	Now        func() time.Time
}

func (s *FXWarmupService) RunOnce(ctx context.Context) error {
	if s == nil || s.FX == nil {
		return nil
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureFXWarmup, true) {
		return nil
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	day := now.AddDate(0, 0, -1)
	var errs []error
	for _, cur := range s.Currencies {
		cur = strings.ToUpper(strings.TrimSpace(cur))
		if cur == "" || cur == s.FX.BaseCurrency() {
			continue
		}
		rate, err := s.FX.ExchangeRate(ctx, cur, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cur, err))
			continue
		}
		if s.Logger != nil {
			s.Logger.Debug("rate warmed", zap.String("currency", cur), zap.String("rate", rate.String()))
		}
	}
	return errors.Join(errs...)
}
