// Package cache holds the append-only key/value stores used for data that
// never changes once known, such as historical exchange rates.
package cache

import "context"

type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Add stores value under key unless the key already exists.
	// It reports whether the value was written.
	Add(ctx context.Context, key string, value []byte) (bool, error)
}
