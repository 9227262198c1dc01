package cache_rules

import "time"

// RouteRule configures the pipeline mounted at a path prefix
type RouteRule struct {
	Prefix          string        `yaml:"prefix" validate:"required,startswith=/"`
	FreshnessWindow time.Duration `yaml:"freshness_window" validate:"gte=0"`
	Bypass          bool          `yaml:"bypass"`
}

// InvalidationRule clears cache patterns after a successful write under Prefix.
// An empty Methods list matches every write method.
type InvalidationRule struct {
	Methods  []string `yaml:"methods" validate:"dive,oneof=POST PUT PATCH DELETE"`
	Prefix   string   `yaml:"prefix" validate:"required,startswith=/"`
	Patterns []string `yaml:"patterns" validate:"required,min=1,dive,required"`
}

// CacheRulesConfig represents the cache rules file
type CacheRulesConfig struct {
	Routes        []RouteRule        `yaml:"routes" validate:"dive"`
	Invalidations []InvalidationRule `yaml:"invalidations" validate:"dive"`
}
