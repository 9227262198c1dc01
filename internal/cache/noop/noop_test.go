package noop

import (
	"testing"
	"time"

	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/models"
)

func TestNewNoOpCache(t *testing.T) {
	cache := NewNoOpCache()

	// Verify it implements the Store interface
	var _ interfaces.Store = cache

	if cache == nil {
		t.Errorf("NewNoOpCache() should return a *NoOpCache instance")
	}
}

func TestNoOpCache_Get(t *testing.T) {
	cache := NewNoOpCache()

	// Test with various keys
	testCases := []string{
		"GET:/api/items",
		"",
		"GET:/api/items?q=!@#$%^&*()",
	}

	for _, key := range testCases {
		t.Run("key="+key, func(t *testing.T) {
			entry, found := cache.Get(key)

			if entry != nil {
				t.Errorf("Get(%q) entry = %v, want nil", key, entry)
			}
			if found {
				t.Errorf("Get(%q) found = true, want false", key)
			}
		})
	}
}

func TestNoOpCache_PutThenGet(t *testing.T) {
	cache := NewNoOpCache()

	cache.Put("GET:/api/items", models.Payload{Body: []byte(`{"items":[]}`)})

	if _, found := cache.Get("GET:/api/items"); found {
		t.Errorf("Get() after Put() found = true, want false")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}
}

func TestNoOpCache_Removals(t *testing.T) {
	cache := NewNoOpCache()

	cache.Delete("GET:/api/items")
	cache.PutEntry("GET:/api/items", &models.CacheEntry{StoredAt: time.Unix(1700000000, 0)})

	if cache.DeleteIf("GET:/api/items", time.Unix(1700000000, 0)) {
		t.Errorf("DeleteIf() = true, want false")
	}

	if n := cache.Invalidate(func(string) bool { return true }); n != 0 {
		t.Errorf("Invalidate() = %d, want 0", n)
	}
	if n := cache.Sweep(time.Second); n != 0 {
		t.Errorf("Sweep() = %d, want 0", n)
	}
}
