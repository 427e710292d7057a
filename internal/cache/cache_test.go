package cache

import (
	"testing"
	"time"

	"rfpwatch/internal/config"

	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, c Cache) {
	t.Helper()

	_, ok := c.Get("/data")
	require.False(t, ok)

	c.Set("/data", []byte(`[]`))
	got, ok := c.Get("/data")
	require.True(t, ok)
	require.Equal(t, []byte(`[]`), got)

	require.NoError(t, c.Purge())
	_, ok = c.Get("/data")
	require.False(t, ok)
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory(8, time.Minute))
}

func TestMemoryExpires(t *testing.T) {
	c := NewMemory(8, 20*time.Millisecond)
	c.Set("k", []byte("v"))
	require.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestBadger(t *testing.T) {
	c, err := OpenBadger(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer c.Close()
	exercise(t, c)
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: config.CacheNone})
	require.NoError(t, err)
	require.Nil(t, c)

	c, err = New(config.CacheConfig{Backend: config.CacheMemory, TTLSeconds: 300})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, c)

	_, err = New(config.CacheConfig{Backend: config.CacheBadger})
	require.Error(t, err)

	_, err = New(config.CacheConfig{Backend: "redis"})
	require.Error(t, err)
}
