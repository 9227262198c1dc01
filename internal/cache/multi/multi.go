package multi

import (
	"time"

	"go.uber.org/zap"

	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/models"
)

// Ensure MultiCache implements interfaces.Store
var _ interfaces.Store = (*MultiCache)(nil)

// LevelResult is a lookup result annotated with the tier that served it
type LevelResult struct {
	Entry *models.CacheEntry
	Found bool
	Level models.CacheLevel
}

// MultiCache implements a composite store that tries multiple stores in order.
// Writes and removals go to every store.
type MultiCache struct {
	caches            []interfaces.Store
	enablePropagation bool
	logger            *zap.Logger
}

// NewMultiCache creates a new MultiCache instance with provided stores, fastest first
func NewMultiCache(caches []interfaces.Store, logger *zap.Logger, enablePropagation bool) *MultiCache {
	return &MultiCache{
		caches:            caches,
		enablePropagation: enablePropagation,
		logger:            logger,
	}
}

// Get retrieves the entry from the first store that has the key
func (mc *MultiCache) Get(key string) (*models.CacheEntry, bool) {
	result := mc.GetWithLevel(key)
	return result.Entry, result.Found
}

// GetWithLevel retrieves the entry and reports which tier served it.
// With propagation enabled, a hit in a lower tier is copied into the tiers above.
func (mc *MultiCache) GetWithLevel(key string) LevelResult {
	if len(mc.caches) == 0 {
		mc.logger.Warn("No caches available for get operation", zap.String("key", key))
		return LevelResult{Level: models.CacheLevelMiss}
	}

	for i, cache := range mc.caches {
		entry, found := cache.Get(key)
		if !found {
			continue
		}
		if mc.enablePropagation && i > 0 {
			mc.propagate(key, entry, i)
		}
		return LevelResult{Entry: entry, Found: true, Level: levelFor(i)}
	}
	return LevelResult{Level: models.CacheLevelMiss}
}

// Put stores the payload in all stores
func (mc *MultiCache) Put(key string, payload models.Payload) {
	if len(mc.caches) == 0 {
		mc.logger.Warn("No caches available for put operation", zap.String("key", key))
		return
	}

	for _, cache := range mc.caches {
		cache.Put(key, payload)
	}
}

// PutEntry stores the entry in all stores, keeping its StoredAt
func (mc *MultiCache) PutEntry(key string, entry *models.CacheEntry) {
	for _, cache := range mc.caches {
		cache.PutEntry(key, entry)
	}
}

// Delete removes entry from all stores
func (mc *MultiCache) Delete(key string) {
	for _, cache := range mc.caches {
		cache.Delete(key)
	}
}

// DeleteIf asks every store to drop the entry stored at storedAt. Tiers
// stamp independently, so a tier holding a different StoredAt keeps its copy.
func (mc *MultiCache) DeleteIf(key string, storedAt time.Time) bool {
	deleted := false
	for _, cache := range mc.caches {
		if cache.DeleteIf(key, storedAt) {
			deleted = true
		}
	}
	return deleted
}

// Invalidate removes matching entries from all stores. The same logical key
// lives in several tiers, so the largest per-tier count is reported.
func (mc *MultiCache) Invalidate(match func(key string) bool) int {
	removed := 0
	for _, cache := range mc.caches {
		removed = max(removed, cache.Invalidate(match))
	}
	return removed
}

// Sweep removes stale entries from all stores, reporting the largest per-tier count
func (mc *MultiCache) Sweep(maxAge time.Duration) int {
	removed := 0
	for _, cache := range mc.caches {
		removed = max(removed, cache.Sweep(maxAge))
	}
	return removed
}

// Len returns the entry count of the largest tier
func (mc *MultiCache) Len() int {
	n := 0
	for _, cache := range mc.caches {
		n = max(n, cache.Len())
	}
	return n
}

// GetCacheCount returns the number of stores in the multi-cache
func (mc *MultiCache) GetCacheCount() int {
	return len(mc.caches)
}

// propagate copies a lower-tier hit into the faster tiers. The copy keeps
// the original StoredAt so it expires together with its source.
func (mc *MultiCache) propagate(key string, entry *models.CacheEntry, foundAt int) {
	for i := 0; i < foundAt; i++ {
		mc.caches[i].PutEntry(key, entry)
	}
	mc.logger.Debug("Propagated cache entry to upper levels", zap.String("key", key), zap.Int("found_at", foundAt))
}

func levelFor(index int) models.CacheLevel {
	if index == 0 {
		return models.CacheLevelL1
	}
	return models.CacheLevelL2
}
