package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Dimension string

const (
	ByStrategy  Dimension = "strategy"
	ByAsset     Dimension = "asset"
	ByDirection Dimension = "direction"
)

// DefaultUnclassified labels results without a strategy.
const DefaultUnclassified = "Unclassified"

type Group struct {
	Key    string          `json:"key"`
	PnL    decimal.Decimal `json:"pnl"`
	Trades int             `json:"trades"`
}

// Breakdown sums results per key of dim, sorted by key.
func Breakdown(results []Result, dim Dimension, unclassified string) []Group {
	if unclassified == "" {
		unclassified = DefaultUnclassified
	}
	idx := map[string]int{}
	out := make([]Group, 0)
	for _, r := range results {
		key := groupKey(r, dim, unclassified)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, Group{Key: key, PnL: decimal.Zero})
		}
		out[i].PnL = out[i].PnL.Add(r.Value)
		out[i].Trades++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func groupKey(r Result, dim Dimension, unclassified string) string {
	switch dim {
	case ByAsset:
		return r.Asset
	case ByDirection:
		return r.Direction
	default:
		if r.Strategy == "" {
			return unclassified
		}
		return r.Strategy
	}
}
