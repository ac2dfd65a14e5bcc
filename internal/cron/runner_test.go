package cronrunner

import (
	"context"
	"errors"
	"testing"
)

func TestAddRejectsInvalidSpec(t *testing.T) {
	r := New(nil, context.Background(), nil)
	if _, err := r.Add("broken", "not a spec", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if r.Len() != 0 {
		t.Fatalf("entries=%d want 0", r.Len())
	}
}

func TestAddAcceptsSecondsSpec(t *testing.T) {
	r := New(nil, context.Background(), nil)
	if _, err := r.Add("snapshot", "0 30 0 * * *", func(context.Context) error { return errors.New("x") }); err != nil {
		t.Fatalf("add: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("entries=%d want 1", r.Len())
	}
	r.Start()
	r.Stop()
}
