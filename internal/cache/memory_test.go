package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AddIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	written, err := s.Add(ctx, "USD:2024-01-02", []byte("4.9"))
	require.NoError(t, err)
	assert.True(t, written)

	written, err = s.Add(ctx, "USD:2024-01-02", []byte("5.1"))
	require.NoError(t, err)
	assert.False(t, written)

	v, found, err := s.Get(ctx, "USD:2024-01-02")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "4.9", string(v))
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_GetMissing(t *testing.T) {
	v, found, err := NewMemoryStore().Get(context.Background(), "EUR:2024-01-02")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.Add(ctx, "k", []byte("abc"))
	v, _, _ := s.Get(ctx, "k")
	v[0] = 'x'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}
