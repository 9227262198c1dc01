package interfaces

import (
	"time"

	"go-response-cache/internal/models"
)

//go:generate mockgen -package=mock -source=cache.go -destination=mock/cache.go

// Store maps cache keys to stored payloads. Implementations never fail:
// backend errors are reported as a miss or a zero count.
type Store interface {
	Get(key string) (*models.CacheEntry, bool)     // returns entry and found flag, regardless of age
	Put(key string, payload models.Payload)        // overwrites, stamping the current time
	PutEntry(key string, entry *models.CacheEntry) // overwrites, keeping entry.StoredAt
	Delete(key string)
	DeleteIf(key string, storedAt time.Time) bool // removes key only while its StoredAt equals storedAt
	Invalidate(match func(key string) bool) int   // returns number of entries removed
	Sweep(maxAge time.Duration) int               // removes entries older than maxAge
	Len() int
}
