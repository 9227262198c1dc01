package l1

import (
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-response-cache/internal/config"
	"go-response-cache/internal/models"
)

func newTestBigCache(t *testing.T, clk clock.Clock) *BigCache {
	cfg := config.Default().L1.BigCache
	cfg.Shards = 16

	cache, err := NewBigCache(&cfg, clk, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func payload(body string) models.Payload {
	return models.Payload{ContentType: "application/json", Body: []byte(body)}
}

func TestNewBigCache(t *testing.T) {
	logger := zap.NewNop()
	cfg := config.Default().L1.BigCache

	cache, err := NewBigCache(&cfg, nil, logger)

	require.NoError(t, err)
	assert.NotNil(t, cache.cache)
	assert.NotNil(t, cache.clock)
	assert.Equal(t, logger, cache.logger)
	assert.True(t, cache.metricsScheduler.IsRunning())
	assert.NoError(t, cache.Close())
	assert.False(t, cache.metricsScheduler.IsRunning())
}

func TestBigCache_PutAndGet(t *testing.T) {
	clk := clock.NewMock()
	cache := newTestBigCache(t, clk)

	cache.Put("GET:/api/items?page=1", payload(`{"items":[1,2,3]}`))

	entry, found := cache.Get("GET:/api/items?page=1")
	require.True(t, found)
	assert.Equal(t, []byte(`{"items":[1,2,3]}`), entry.Payload.Body)
	assert.Equal(t, "application/json", entry.Payload.ContentType)
	assert.True(t, entry.StoredAt.Equal(clk.Now()))
	assert.Equal(t, 1, cache.Len())
}

func TestBigCache_Get_NotFound(t *testing.T) {
	cache := newTestBigCache(t, clock.NewMock())

	entry, found := cache.Get("non-existent-key")

	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestBigCache_Get_CorruptedEntry(t *testing.T) {
	cache := newTestBigCache(t, clock.NewMock())

	require.NoError(t, cache.cache.Set("GET:/broken", []byte("invalid-json")))

	entry, found := cache.Get("GET:/broken")

	assert.False(t, found)
	assert.Nil(t, entry)
	assert.Equal(t, 0, cache.Len(), "corrupted entry should be removed")
}

func TestBigCache_Delete(t *testing.T) {
	cache := newTestBigCache(t, clock.NewMock())

	cache.Put("GET:/a", payload(`1`))
	cache.Delete("GET:/a")
	cache.Delete("GET:/missing")

	_, found := cache.Get("GET:/a")
	assert.False(t, found)
}

func TestBigCache_PutEntry_KeepsStoredAt(t *testing.T) {
	clk := clock.NewMock()
	cache := newTestBigCache(t, clk)
	storedAt := clk.Now().Add(-45 * time.Second)

	cache.PutEntry("GET:/a", &models.CacheEntry{Payload: payload(`1`), StoredAt: storedAt})

	entry, found := cache.Get("GET:/a")
	require.True(t, found)
	assert.True(t, entry.StoredAt.Equal(storedAt))
}

func TestBigCache_DeleteIf(t *testing.T) {
	clk := clock.NewMock()
	cache := newTestBigCache(t, clk)

	cache.Put("GET:/a", payload(`1`))
	old, _ := cache.Get("GET:/a")
	clk.Add(time.Second)
	cache.Put("GET:/a", payload(`2`))

	assert.False(t, cache.DeleteIf("GET:/a", old.StoredAt))
	current, found := cache.Get("GET:/a")
	require.True(t, found)
	assert.Equal(t, []byte(`2`), current.Payload.Body)

	assert.True(t, cache.DeleteIf("GET:/a", current.StoredAt))
	_, found = cache.Get("GET:/a")
	assert.False(t, found)
}

func TestBigCache_Invalidate(t *testing.T) {
	cache := newTestBigCache(t, clock.NewMock())

	cache.Put("GET:/api/quizzes", payload(`[]`))
	cache.Put("GET:/api/quizzes/7", payload(`{}`))
	cache.Put("GET:/api/leaderboard", payload(`[]`))

	removed := cache.Invalidate(func(key string) bool {
		return strings.Contains(key, "/api/quizzes")
	})

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Len())
	_, found := cache.Get("GET:/api/leaderboard")
	assert.True(t, found)
}

func TestBigCache_Sweep(t *testing.T) {
	clk := clock.NewMock()
	cache := newTestBigCache(t, clk)

	cache.Put("GET:/stale", payload(`1`))
	clk.Add(90 * time.Second)
	cache.Put("GET:/fresh", payload(`2`))

	removed := cache.Sweep(60 * time.Second)

	assert.Equal(t, 1, removed)
	_, found := cache.Get("GET:/stale")
	assert.False(t, found)
	_, found = cache.Get("GET:/fresh")
	assert.True(t, found)
}
