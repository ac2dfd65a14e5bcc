package fx

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finboard/internal/cache"
)

// RateCache keys rates by currency and calendar day on top of a byte store.
// Store errors are logged and treated as misses.
type RateCache struct {
	Store  cache.Store
	Logger *zap.Logger
}

func NewRateCache(store cache.Store, logger *zap.Logger) *RateCache {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateCache{Store: store, Logger: logger}
}

func rateKey(currency string, day time.Time) string {
	return "fx:" + currency + ":" + day.Format(dayLayout)
}

func (c *RateCache) Get(ctx context.Context, currency string, day time.Time) (decimal.Decimal, bool) {
	raw, found, err := c.Store.Get(ctx, rateKey(currency, day))
	if err != nil {
		c.Logger.Warn("rate cache read failed", zap.String("currency", currency), zap.Error(err))
		return decimal.Zero, false
	}
	if !found {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(string(raw))
	if err != nil {
		c.Logger.Warn("rate cache entry unreadable", zap.String("currency", currency), zap.Error(err))
		return decimal.Zero, false
	}
	return rate, true
}

func (c *RateCache) Add(ctx context.Context, currency string, day time.Time, rate decimal.Decimal) {
	if _, err := c.Store.Add(ctx, rateKey(currency, day), []byte(rate.String())); err != nil {
		c.Logger.Warn("rate cache write failed", zap.String("currency", currency), zap.Error(err))
	}
}
