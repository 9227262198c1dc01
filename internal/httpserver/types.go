package httpserver

import "time"

// ClearCacheRequest is the body of POST /cache/clear.
// An explicit empty pattern clears every entry.
type ClearCacheRequest struct {
	Pattern *string `json:"pattern"`
}

// ClearCacheResponse reports how many entries were removed
type ClearCacheResponse struct {
	Success bool   `json:"success"`
	Pattern string `json:"pattern"`
	Removed int    `json:"removed"`
}

// MountInfo describes one configured mount point
type MountInfo struct {
	Prefix          string `json:"prefix"`
	FreshnessWindow string `json:"freshness_window"`
	Bypass          bool   `json:"bypass,omitempty"`
}

// StatsResponse is the body of GET /cache/stats
type StatsResponse struct {
	Entries int         `json:"entries"`
	Pending int         `json:"pending"`
	Mounts  []MountInfo `json:"mounts"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
