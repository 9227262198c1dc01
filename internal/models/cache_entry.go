package models

import (
	"net/http"
	"time"
)

// CacheLevel identifies the store tier an entry was served from
type CacheLevel string

const (
	CacheLevelL1   CacheLevel = "l1"
	CacheLevelL2   CacheLevel = "l2"
	CacheLevelMiss CacheLevel = "miss"
)

// Payload is the JSON body a downstream handler emitted, as stored in cache
type Payload struct {
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// CacheEntry is a stored payload stamped with the moment it became available
type CacheEntry struct {
	Payload  Payload   `json:"payload"`
	StoredAt time.Time `json:"stored_at"`
}

// Age returns how long ago the entry was stored relative to now
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// IsFresh reports whether the entry is younger than the freshness window
func (e *CacheEntry) IsFresh(now time.Time, window time.Duration) bool {
	return e.Age(now) < window
}

// CapturedResponse is everything a downstream handler wrote for one request
type CapturedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Succeeded reports whether the response resolves a pending request successfully.
// Only the nominal 200 counts as success.
func (c *CapturedResponse) Succeeded() bool {
	return c.StatusCode == http.StatusOK
}

// Payload converts the captured response into a cacheable payload
func (c *CapturedResponse) Payload() Payload {
	var contentType string
	if c.Header != nil {
		contentType = c.Header.Get("Content-Type")
	}
	return Payload{ContentType: contentType, Body: c.Body}
}
