package l1

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"go-response-cache/internal/config"
	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/metrics"
	"go-response-cache/internal/models"
	"go-response-cache/internal/scheduler"
)

// Ensure BigCache implements interfaces.Store
var _ interfaces.Store = (*BigCache)(nil)

// BigCache implements the L1 store using BigCache
type BigCache struct {
	// writeMu orders Put against DeleteIf; reads stay lock-free
	writeMu          sync.Mutex
	cache            *bigcache.BigCache
	clock            clock.Clock
	logger           *zap.Logger
	metricsScheduler *scheduler.Scheduler
}

// zapPrintf adapts zap to bigcache's Logger interface
type zapPrintf struct {
	sugar *zap.SugaredLogger
}

func (z zapPrintf) Printf(format string, v ...interface{}) {
	z.sugar.Debugf(format, v...)
}

// NewBigCache creates a new BigCache instance
func NewBigCache(bigcacheCfg *config.BigCacheConfig, clk clock.Clock, logger *zap.Logger) (*BigCache, error) {
	cfg := bigcache.DefaultConfig(bigcacheCfg.LifeWindow)
	cfg.Shards = bigcacheCfg.Shards
	cfg.HardMaxCacheSize = bigcacheCfg.Size // Size in MB, 0 means unbounded
	cfg.MaxEntrySize = bigcacheCfg.MaxEntrySize
	cfg.MaxEntriesInWindow = bigcacheCfg.MaxEntriesInWindow
	cfg.Verbose = false
	cfg.Logger = zapPrintf{sugar: logger.Sugar()}

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	if clk == nil {
		clk = clock.New()
	}

	bc := &BigCache{
		cache:  cache,
		clock:  clk,
		logger: logger,
	}

	// Start periodic metrics collection
	bc.startMetricsCollection()

	return bc, nil
}

// Get retrieves an entry from cache regardless of its age
func (bc *BigCache) Get(key string) (*models.CacheEntry, bool) {
	data, err := bc.cache.Get(key)
	if err != nil {
		return nil, false
	}

	entry, ok := bc.decode(key, data)
	if !ok {
		return nil, false
	}
	return entry, true
}

// Put stores a payload stamped with the current time
func (bc *BigCache) Put(key string, payload models.Payload) {
	bc.PutEntry(key, &models.CacheEntry{
		Payload:  payload,
		StoredAt: bc.clock.Now(),
	})
}

// PutEntry stores an entry keeping its StoredAt
func (bc *BigCache) PutEntry(key string, entry *models.CacheEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		bc.logger.Error("Failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l1", "encode")
		return
	}

	bc.writeMu.Lock()
	defer bc.writeMu.Unlock()

	if err := bc.cache.Set(key, data); err != nil {
		bc.logger.Error("Failed to set cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l1", "upstream")
	}
}

// Delete removes entry from cache
func (bc *BigCache) Delete(key string) {
	_ = bc.cache.Delete(key)
}

// DeleteIf removes the entry only while its StoredAt equals storedAt
func (bc *BigCache) DeleteIf(key string, storedAt time.Time) bool {
	bc.writeMu.Lock()
	defer bc.writeMu.Unlock()

	data, err := bc.cache.Get(key)
	if err != nil {
		return false
	}
	entry, ok := bc.decode(key, data)
	if !ok || !entry.StoredAt.Equal(storedAt) {
		return false
	}
	return bc.cache.Delete(key) == nil
}

// Invalidate removes every entry whose key satisfies match
func (bc *BigCache) Invalidate(match func(key string) bool) int {
	return bc.removeWhere(func(key string, _ []byte) bool {
		return match(key)
	})
}

// Sweep removes every entry older than maxAge. Undecodable entries go too.
func (bc *BigCache) Sweep(maxAge time.Duration) int {
	now := bc.clock.Now()
	return bc.removeWhere(func(key string, data []byte) bool {
		entry, ok := bc.decode(key, data)
		return !ok || entry.Age(now) > maxAge
	})
}

// Len returns the number of stored entries
func (bc *BigCache) Len() int {
	return bc.cache.Len()
}

// Close closes the cache
func (bc *BigCache) Close() error {
	// Stop metrics collection
	bc.stopMetricsCollection()

	return bc.cache.Close()
}

// removeWhere collects matching keys first, then deletes them outside iteration
func (bc *BigCache) removeWhere(match func(key string, data []byte) bool) int {
	var keys []string

	it := bc.cache.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue
		}
		if match(info.Key(), info.Value()) {
			keys = append(keys, info.Key())
		}
	}

	removed := 0
	for _, key := range keys {
		if err := bc.cache.Delete(key); err == nil {
			removed++
		}
	}
	return removed
}

func (bc *BigCache) decode(key string, data []byte) (*models.CacheEntry, bool) {
	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		bc.logger.Warn("Failed to unmarshal L1 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l1", "decode")
		_ = bc.cache.Delete(key) // Remove corrupted entry
		return nil, false
	}
	return &entry, true
}

// startMetricsCollection starts periodic metrics collection
func (bc *BigCache) startMetricsCollection() {
	bc.metricsScheduler = scheduler.NewWithClock(30*time.Second, bc.updateMetrics, bc.clock)
	bc.metricsScheduler.Start()

	// Initial collection
	bc.updateMetrics()

	bc.logger.Debug("Started L1 cache metrics collection")
}

// stopMetricsCollection stops periodic metrics collection
func (bc *BigCache) stopMetricsCollection() {
	if bc.metricsScheduler != nil {
		bc.metricsScheduler.Stop()
		bc.logger.Debug("Stopped L1 cache metrics collection")
	}
}

// updateMetrics updates cache metrics
func (bc *BigCache) updateMetrics() {
	metrics.UpdateCacheKeys("l1", int64(bc.cache.Len()))
}
