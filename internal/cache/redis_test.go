package cache

import (
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/cricket-predictor/internal/config"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	c, err := New(&config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_GetSetDel(t *testing.T) {
	c, _ := setupCache(t)
	ctx := t.Context()

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	require.NoError(t, c.Del(ctx, "k"))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestCache_SetNXExpires(t *testing.T) {
	c, mr := setupCache(t)
	ctx := t.Context()

	ok, err := c.SetNX(ctx, "lock", "1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "lock", "1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(31 * time.Second)

	ok, err = c.SetNX(ctx, "lock", "1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_HealthAfterServerStops(t *testing.T) {
	c, mr := setupCache(t)

	require.NoError(t, c.Health(t.Context()))
	mr.Close()
	assert.Error(t, c.Health(t.Context()))
}

func TestNew_Unreachable(t *testing.T) {
	_, err := New(&config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
}
