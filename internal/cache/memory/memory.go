package memory

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/models"
)

// Ensure Store implements interfaces.Store
var _ interfaces.Store = (*Store)(nil)

// Store is an unbounded in-process store. Entries leave only through
// Delete, Invalidate or Sweep.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*models.CacheEntry
	clock   clock.Clock
}

// NewStore creates an empty in-memory store
func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.New()
	}
	return &Store{
		entries: make(map[string]*models.CacheEntry),
		clock:   clk,
	}
}

// Get returns the entry for key regardless of its age
func (s *Store) Get(key string) (*models.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Put replaces the entry for key with a new one stamped now
func (s *Store) Put(key string, payload models.Payload) {
	s.PutEntry(key, &models.CacheEntry{
		Payload:  payload,
		StoredAt: s.clock.Now(),
	})
}

// PutEntry replaces the entry for key, keeping its StoredAt
func (s *Store) PutEntry(key string, entry *models.CacheEntry) {
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
}

// Delete removes key if present
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeleteIf removes key only while it still holds the entry stored at storedAt
func (s *Store) DeleteIf(key string, storedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !entry.StoredAt.Equal(storedAt) {
		return false
	}
	delete(s.entries, key)
	return true
}

// Invalidate removes every entry whose key satisfies match
func (s *Store) Invalidate(match func(key string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Sweep removes every entry older than maxAge
func (s *Store) Sweep(maxAge time.Duration) int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.Age(now) > maxAge {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
