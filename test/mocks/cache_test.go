package mocks

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCache_SetNX(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	cache := NewMockCache(clock)
	ctx := t.Context()

	ok, err := cache.SetNX(ctx, "lifecycle:sweep", "1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	val, err := cache.Get(ctx, "lifecycle:sweep")
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	ok, err = cache.SetNX(ctx, "lifecycle:sweep", "2", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(31 * time.Second)
	ok, err = cache.SetNX(ctx, "lifecycle:sweep", "2", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	val, _ = cache.Get(ctx, "lifecycle:sweep")
	assert.Equal(t, "2", val)

	cache.Err = errors.New("connection refused")
	_, err = cache.SetNX(ctx, "lifecycle:sweep", "3", time.Second)
	assert.Error(t, err)
}
