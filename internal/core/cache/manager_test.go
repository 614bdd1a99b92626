package cache

import (
	"context"
	"testing"
	"time"

	"flavorlab-enrichment/internal/infrastructure/config"
	"flavorlab-enrichment/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestManager(t *testing.T, maxSize int, ttl time.Duration) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewManager(&config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: ttl})
	m.now = clock.now
	t.Cleanup(func() { _ = m.Close() })
	return m, clock
}

func TestManager_GetSet(t *testing.T) {
	m, _ := newTestManager(t, 10, time.Minute)
	ctx := context.Background()

	_, err := m.Get(ctx, "batch:abc")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "batch:abc", `{"records":[]}`))
	value, err := m.Get(ctx, "batch:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"records":[]}`, value)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
	assert.Equal(t, 0.5, stats["hit_ratio"])
}

func TestManager_Expiry(t *testing.T) {
	m, clock := newTestManager(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v"))
	clock.advance(2 * time.Minute)

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, int64(1), m.Stats()["evictions"])
	assert.Equal(t, 0, m.Stats()["size"])
}

func TestManager_EvictsLeastUsed(t *testing.T) {
	m, clock := newTestManager(t, 2, time.Hour)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	clock.advance(time.Second)
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestManager_OverwriteAtCapacity(t *testing.T) {
	m, _ := newTestManager(t, 1, time.Hour)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "a", "2"))

	value, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
	assert.Equal(t, int64(0), m.Stats()["evictions"])
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	m := NewManager(&config.CacheConfig{MaxSize: 1, TTL: time.Minute, CleanupInterval: time.Millisecond})
	require.NoError(t, m.Set(context.Background(), "a", "1"))

	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
	assert.Equal(t, 0, m.Stats()["size"])
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(&config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = NewStore(&config.CacheConfig{Enabled: true, Backend: config.CacheBackendMemory, MaxSize: 4, TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &Manager{}, store)
	require.NoError(t, store.Close())

	_, err = NewStore(&config.CacheConfig{Enabled: true, Backend: "memcached"})
	assert.Error(t, err)
}
