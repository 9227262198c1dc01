package noop

import (
	"time"

	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/models"
)

// Ensure NoOpCache implements interfaces.Store
var _ interfaces.Store = (*NoOpCache)(nil)

// NoOpCache is a no-operation store for disabled tiers
type NoOpCache struct{}

// NewNoOpCache creates a new no-operation store instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns cache miss
func (n *NoOpCache) Get(key string) (*models.CacheEntry, bool) {
	return nil, false
}

// Put does nothing
func (n *NoOpCache) Put(key string, payload models.Payload) {}

// PutEntry does nothing
func (n *NoOpCache) PutEntry(key string, entry *models.CacheEntry) {}

// Delete does nothing
func (n *NoOpCache) Delete(key string) {}

// DeleteIf never finds anything to delete
func (n *NoOpCache) DeleteIf(key string, storedAt time.Time) bool {
	return false
}

// Invalidate removes nothing
func (n *NoOpCache) Invalidate(match func(key string) bool) int {
	return 0
}

// Sweep removes nothing
func (n *NoOpCache) Sweep(maxAge time.Duration) int {
	return 0
}

// Len is always zero
func (n *NoOpCache) Len() int {
	return 0
}
