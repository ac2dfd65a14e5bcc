// Package fx converts monetary amounts into the base currency using
// historical rates. Rates for past days are facts, so they are cached for
// the life of the cache store and never refreshed.
package fx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultMaxLookbackDays = 10
	DefaultTimeout         = 10 * time.Second
	dayLayout              = "2006-01-02"
)

var (
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	ErrBaseMismatch    = errors.New("base currency does not match rate source")
)

// RateSource quotes currency against the base currency for one calendar day.
// found=false means nothing was published that day and is not an error.
type RateSource interface {
	SellRate(ctx context.Context, currency string, day time.Time) (rate decimal.Decimal, found bool, err error)
}

// Quoter is implemented by sources that express every rate in one fixed
// currency.
type Quoter interface {
	QuoteCurrency() string
}

// CheckBase fails when source quotes in a currency other than base. Sources
// that do not implement Quoter are accepted as is.
func CheckBase(base string, source RateSource) error {
	q, ok := source.(Quoter)
	if !ok {
		return nil
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	if quote := strings.ToUpper(q.QuoteCurrency()); base != quote {
		return fmt.Errorf("%w: base %q, source quotes in %q", ErrBaseMismatch, base, quote)
	}
	return nil
}

type Converter struct {
	Base            string
	Source          RateSource
	Cache           *RateCache
	Logger          *zap.Logger
	MaxLookbackDays int
	Timeout         time.Duration
}

func NewConverter(base string, source RateSource, cache *RateCache, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		Base:            strings.ToUpper(strings.TrimSpace(base)),
		Source:          source,
		Cache:           cache,
		Logger:          logger,
		MaxLookbackDays: DefaultMaxLookbackDays,
		Timeout:         DefaultTimeout,
	}
}

// BaseCurrency is the currency every converted amount is expressed in.
func (c *Converter) BaseCurrency() string { return c.Base }

// ExchangeRate returns the rate for currency on day, stepping back one day
// at a time when no quote exists. A transport failure ends the search.
func (c *Converter) ExchangeRate(ctx context.Context, currency string, day time.Time) (decimal.Decimal, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == c.Base {
		return decimal.NewFromInt(1), nil
	}
	day = truncateDay(day)

	if c.Cache != nil {
		if rate, ok := c.Cache.Get(ctx, currency, day); ok {
			return rate, nil
		}
	}
	if c.Source == nil {
		return decimal.Zero, fmt.Errorf("%w: no rate source for %s", ErrRateUnavailable, currency)
	}

	attempts := c.MaxLookbackDays
	if attempts <= 0 {
		attempts = DefaultMaxLookbackDays
	}
	current := day
	for i := 0; i < attempts; i++ {
		rate, found, err := c.lookup(ctx, currency, current)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s on %s: %v", ErrRateUnavailable, currency, current.Format(dayLayout), err)
		}
		if found {
			if c.Cache != nil {
				c.Cache.Add(ctx, currency, day, rate)
				if !current.Equal(day) {
					c.Cache.Add(ctx, currency, current, rate)
				}
			}
			return rate, nil
		}
		current = current.AddDate(0, 0, -1)
	}
	return decimal.Zero, fmt.Errorf("%w: no quote for %s within %d days before %s",
		ErrRateUnavailable, currency, attempts, day.Format(dayLayout))
}

func (c *Converter) lookup(ctx context.Context, currency string, day time.Time) (decimal.Decimal, bool, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Source.SellRate(ctx, currency, day)
}

// ToBase converts amount into the base currency at the rate of at's day,
// rounded half-even to cents. When no rate can be found the original amount comes
// back unchanged with ok=false so one bad date does not abort a report.
func (c *Converter) ToBase(ctx context.Context, amount decimal.Decimal, currency string, at time.Time) (decimal.Decimal, bool) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == c.Base {
		return amount, true
	}
	rate, err := c.ExchangeRate(ctx, currency, at)
	if err != nil {
		c.Logger.Warn("conversion degraded to original amount",
			zap.String("currency", currency),
			zap.String("base", c.Base),
			zap.Time("at", at),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return amount, false
	}
	return amount.Mul(rate).RoundBank(2), true
}

// truncateDay keeps the calendar day of t as seen in t's own location.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
