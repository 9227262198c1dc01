package service

import (
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/metrics"
	"go-response-cache/internal/models"
)

// CacheService owns the process-wide store and applies freshness rules on top of it.
// One instance is shared by every mount of the response cache.
type CacheService struct {
	store  interfaces.Store
	clock  clock.Clock
	logger *zap.Logger
}

// Stats is a snapshot of the cache for the admin API
type Stats struct {
	Entries int `json:"entries"`
}

// NewCacheService creates a new cache service over store
func NewCacheService(store interfaces.Store, clk clock.Clock, logger *zap.Logger) *CacheService {
	if clk == nil {
		clk = clock.New()
	}
	return &CacheService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Lookup returns the entry for key if it is younger than window.
// An older entry is removed on the spot and reported as a miss, unless a
// newer one has replaced it in the meantime.
func (s *CacheService) Lookup(key string, window time.Duration) (*models.CacheEntry, bool) {
	timer := metrics.TimeCacheOperation("get")
	defer timer()

	entry, found := s.store.Get(key)
	if !found {
		return nil, false
	}

	if !entry.IsFresh(s.clock.Now(), window) {
		if s.store.DeleteIf(key, entry.StoredAt) {
			metrics.RecordCacheEvictions("expired", 1)
			s.logger.Debug("Cache entry expired", zap.String("key", key), zap.Duration("age", entry.Age(s.clock.Now())))
		}
		return nil, false
	}

	return entry, true
}

// Store saves payload under key, replacing any previous entry
func (s *CacheService) Store(key string, payload models.Payload) {
	timer := metrics.TimeCacheOperation("put")
	defer timer()

	s.store.Put(key, payload)
}

// ClearCache removes every entry whose key contains pattern.
// Matching nothing is not an error.
func (s *CacheService) ClearCache(pattern string) int {
	removed := s.store.Invalidate(func(key string) bool {
		return strings.Contains(key, pattern)
	})

	metrics.RecordCacheEvictions("invalidate", removed)
	s.logger.Info("Cache cleared", zap.String("pattern", pattern), zap.Int("removed", removed))
	return removed
}

// Sweep removes every entry older than maxAge
func (s *CacheService) Sweep(maxAge time.Duration) int {
	timer := metrics.TimeCacheOperation("sweep")
	defer timer()

	removed := s.store.Sweep(maxAge)
	metrics.RecordCacheEvictions("sweep", removed)
	return removed
}

// Stats returns a snapshot of the store
func (s *CacheService) Stats() Stats {
	return Stats{Entries: s.store.Len()}
}
