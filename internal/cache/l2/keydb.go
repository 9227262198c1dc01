package l2

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"go-response-cache/internal/config"
	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/metrics"
	"go-response-cache/internal/models"
)

// Ensure KeyDBCache implements interfaces.Store
var _ interfaces.Store = (*KeyDBCache)(nil)

// KeyDBCache implements the L2 store using Redis/KeyDB.
// Every backend error degrades to a miss or a zero count.
type KeyDBCache struct {
	client interfaces.KeyDbClient
	config *config.KeyDBConfig
	clock  clock.Clock
	logger *zap.Logger
}

// NewKeyDBCache creates a new KeyDBCache instance with provided client
func NewKeyDBCache(cfg *config.KeyDBConfig, client interfaces.KeyDbClient, clk clock.Clock, logger *zap.Logger) *KeyDBCache {
	if clk == nil {
		clk = clock.New()
	}
	return &KeyDBCache{
		client: client,
		config: cfg,
		clock:  clk,
		logger: logger,
	}
}

// Get retrieves an entry from KeyDB regardless of its age
func (kc *KeyDBCache) Get(key string) (*models.CacheEntry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), kc.config.GetReadTimeout())
	defer cancel()

	data, err := kc.client.Get(ctx, kc.storageKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			kc.logger.Error("L2 cache get error", zap.String("key", key), zap.Error(err))
			metrics.RecordCacheError("l2", "upstream")
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		kc.logger.Error("Failed to unmarshal L2 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l2", "decode")
		kc.client.Del(context.Background(), kc.storageKey(key))
		return nil, false
	}

	return &entry, true
}

// Put stores a payload stamped with the current time. The server-side
// expiry only bounds abandoned keys; freshness is decided by the caller.
func (kc *KeyDBCache) Put(key string, payload models.Payload) {
	kc.PutEntry(key, &models.CacheEntry{
		Payload:  payload,
		StoredAt: kc.clock.Now(),
	})
}

// PutEntry stores an entry keeping its StoredAt
func (kc *KeyDBCache) PutEntry(key string, entry *models.CacheEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), kc.config.GetSendTimeout())
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		kc.logger.Error("Failed to marshal L2 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l2", "encode")
		return
	}

	if err := kc.client.Set(ctx, kc.storageKey(key), data, kc.config.EntryTTL).Err(); err != nil {
		kc.logger.Error("Failed to set L2 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l2", "upstream")
	}
}

// Delete removes entry from KeyDB cache
func (kc *KeyDBCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), kc.config.GetSendTimeout())
	defer cancel()

	if err := kc.client.Del(ctx, kc.storageKey(key)).Err(); err != nil {
		kc.logger.Error("Failed to delete L2 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l2", "upstream")
	}
}

// compareAndDelete drops KEYS[1] only while it still holds ARGV[1]
const compareAndDelete = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

// DeleteIf removes the entry only while its StoredAt equals storedAt.
// The value read here is compared again server-side, so a Put that lands
// in between survives.
func (kc *KeyDBCache) DeleteIf(key string, storedAt time.Time) bool {
	ctx, cancel := context.WithTimeout(context.Background(), kc.config.GetReadTimeout())
	defer cancel()

	storageKey := kc.storageKey(key)
	data, err := kc.client.Get(ctx, storageKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			kc.logger.Error("L2 cache get error", zap.String("key", key), zap.Error(err))
			metrics.RecordCacheError("l2", "upstream")
		}
		return false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil || !entry.StoredAt.Equal(storedAt) {
		return false
	}

	removed, err := kc.client.Eval(ctx, compareAndDelete, []string{storageKey}, data).Int()
	if err != nil {
		kc.logger.Error("Failed to delete L2 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l2", "upstream")
		return false
	}
	return removed == 1
}

// Invalidate removes every entry whose key satisfies match. Matches are
// deleted page by page, so a failing SCAN still leaves the earlier pages
// invalidated and the partial result is reported as an error.
func (kc *KeyDBCache) Invalidate(match func(key string) bool) int {
	removed := 0
	err := kc.walkKeys(func(page []string) {
		var matched []string
		for _, storageKey := range page {
			if match(strings.TrimPrefix(storageKey, kc.config.KeyPrefix)) {
				matched = append(matched, storageKey)
			}
		}
		removed += kc.deleteKeys(matched)
	})
	if err != nil {
		kc.logger.Error("Partial L2 invalidation", zap.Int("removed", removed), zap.Error(err))
		metrics.RecordCacheError("l2", "invalidate")
	}
	return removed
}

// Sweep removes every entry older than maxAge
func (kc *KeyDBCache) Sweep(maxAge time.Duration) int {
	now := kc.clock.Now()
	removed := 0
	err := kc.walkKeys(func(page []string) {
		var stale []string
		for _, storageKey := range page {
			data, err := kc.getRaw(storageKey)
			if err != nil {
				// Expired server-side between SCAN and GET
				continue
			}
			var entry models.CacheEntry
			if err := json.Unmarshal([]byte(data), &entry); err != nil || entry.Age(now) > maxAge {
				stale = append(stale, storageKey)
			}
		}
		removed += kc.deleteKeys(stale)
	})
	if err != nil {
		kc.logger.Error("Partial L2 sweep", zap.Int("removed", removed), zap.Error(err))
		metrics.RecordCacheError("l2", "upstream")
	}
	return removed
}

// Len returns the number of keys under the configured prefix
func (kc *KeyDBCache) Len() int {
	count := 0
	err := kc.walkKeys(func(page []string) {
		count += len(page)
	})
	if err != nil {
		kc.logger.Error("Failed to scan L2 cache keys", zap.Error(err))
		return 0
	}
	return count
}

// Close closes the KeyDB connection
func (kc *KeyDBCache) Close() error {
	return kc.client.Close()
}

func (kc *KeyDBCache) storageKey(key string) string {
	return kc.config.KeyPrefix + key
}

// walkKeys hands every SCAN page under the prefix to visit. Each page gets
// its own read timeout, so the walk as a whole is bounded only by the
// keyspace size.
func (kc *KeyDBCache) walkKeys(visit func(page []string)) error {
	pattern := escapeGlob(kc.config.KeyPrefix) + "*"

	var cursor uint64
	for {
		page, next, err := kc.scanPage(cursor, pattern)
		if err != nil {
			return err
		}
		visit(page)
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (kc *KeyDBCache) scanPage(cursor uint64, pattern string) ([]string, uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), kc.config.GetReadTimeout())
	defer cancel()

	return kc.client.Scan(ctx, cursor, pattern, kc.config.ScanCount).Result()
}

func (kc *KeyDBCache) getRaw(storageKey string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), kc.config.GetReadTimeout())
	defer cancel()

	return kc.client.Get(ctx, storageKey).Result()
}

func (kc *KeyDBCache) deleteKeys(keys []string) int {
	if len(keys) == 0 {
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), kc.config.GetSendTimeout())
	defer cancel()

	removed, err := kc.client.Del(ctx, keys...).Result()
	if err != nil {
		kc.logger.Error("Failed to delete L2 cache entries", zap.Int("count", len(keys)), zap.Error(err))
		metrics.RecordCacheError("l2", "upstream")
		return 0
	}
	return int(removed)
}

// escapeGlob quotes the characters SCAN MATCH treats specially
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
