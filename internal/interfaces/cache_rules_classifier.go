package interfaces

import (
	"time"
)

//go:generate mockgen -package=mock -source=cache_rules_classifier.go -destination=mock/cache_rules_classifier.go

// MountRule describes one path prefix the pipeline is mounted on
type MountRule struct {
	Prefix          string
	FreshnessWindow time.Duration
	Bypass          bool
}

// CacheRulesClassifier resolves per-mount caching behaviour
type CacheRulesClassifier interface {
	// Mounts returns mount rules ordered from most to least specific prefix
	Mounts() []MountRule
	// InvalidationPatterns returns the cache patterns a successful write invalidates
	InvalidationPatterns(method, path string) []string
}
