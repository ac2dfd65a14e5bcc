package gormrepository

import (
	"context"
	"testing"

	"finboard/internal/repository"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct{ in, fallback, want int }{
		{0, 50, 50},
		{-3, 50, 50},
		{20, 50, 20},
		{9000, 50, 500},
	}
	for _, tc := range cases {
		if got := normalizeLimit(tc.in, tc.fallback); got != tc.want {
			t.Fatalf("normalizeLimit(%d,%d)=%d want=%d", tc.in, tc.fallback, got, tc.want)
		}
	}
	if got := normalizeOffset(-1); got != 0 {
		t.Fatalf("offset=%d want 0", got)
	}
}

func TestLikePattern(t *testing.T) {
	q := "  petr "
	if got := likePattern(&q); got != "%petr%" {
		t.Fatalf("pattern=%q", got)
	}
	blank := "  "
	if got := likePattern(&blank); got != "" {
		t.Fatalf("pattern=%q want empty", got)
	}
	if got := likePattern(nil); got != "" {
		t.Fatalf("pattern=%q want empty", got)
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var s *Store
	ctx := context.Background()
	if err := s.InTx(ctx, nil); err != nil {
		t.Fatalf("InTx err=%v", err)
	}
	item, err := s.GetAccount(ctx, 1, 1)
	if err != nil || item != nil {
		t.Fatalf("GetAccount item=%v err=%v", item, err)
	}
	rows, err := s.ListClosedTrades(ctx, repository.ClosedTradesParams{UserID: 1})
	if err != nil || rows != nil {
		t.Fatalf("ListClosedTrades rows=%v err=%v", rows, err)
	}
}
