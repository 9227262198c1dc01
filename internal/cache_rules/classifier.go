package cache_rules

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-response-cache/internal/interfaces"
)

// RootPrefix is the catch-all mount every classifier provides
const RootPrefix = "/"

// Classifier implements the CacheRulesClassifier interface
type Classifier struct {
	logger        *zap.Logger
	mounts        []interfaces.MountRule
	invalidations []InvalidationRule
}

// Ensure Classifier implements the CacheRulesClassifier interface
var _ interfaces.CacheRulesClassifier = (*Classifier)(nil)

// NewClassifier creates a classifier from rules. A nil config yields a single
// catch-all mount with defaultWindow and no invalidation rules.
func NewClassifier(logger *zap.Logger, config *CacheRulesConfig, defaultWindow time.Duration) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = &CacheRulesConfig{}
	}

	mounts := make([]interfaces.MountRule, 0, len(config.Routes)+1)
	hasRoot := false
	for _, route := range config.Routes {
		window := route.FreshnessWindow
		if window == 0 {
			window = defaultWindow
		}
		if route.Prefix == RootPrefix {
			hasRoot = true
		}
		mounts = append(mounts, interfaces.MountRule{
			Prefix:          route.Prefix,
			FreshnessWindow: window,
			Bypass:          route.Bypass,
		})
	}
	if !hasRoot {
		mounts = append(mounts, interfaces.MountRule{Prefix: RootPrefix, FreshnessWindow: defaultWindow})
	}

	// Longest prefix first so the most specific mount wins in the router
	sort.SliceStable(mounts, func(i, j int) bool {
		return len(mounts[i].Prefix) > len(mounts[j].Prefix)
	})

	for _, m := range mounts {
		logger.Debug("Mount configured",
			zap.String("prefix", m.Prefix),
			zap.Duration("freshness_window", m.FreshnessWindow),
			zap.Bool("bypass", m.Bypass))
	}

	return &Classifier{
		logger:        logger,
		mounts:        mounts,
		invalidations: config.Invalidations,
	}
}

// Mounts implements CacheRulesClassifier interface
func (c *Classifier) Mounts() []interfaces.MountRule {
	out := make([]interfaces.MountRule, len(c.mounts))
	copy(out, c.mounts)
	return out
}

// MaxFreshnessWindow returns the longest window of any caching mount
func (c *Classifier) MaxFreshnessWindow() time.Duration {
	var longest time.Duration
	for _, m := range c.mounts {
		if !m.Bypass && m.FreshnessWindow > longest {
			longest = m.FreshnessWindow
		}
	}
	return longest
}

// InvalidationPatterns implements CacheRulesClassifier interface
func (c *Classifier) InvalidationPatterns(method, path string) []string {
	if method == http.MethodGet || method == http.MethodHead {
		return nil
	}

	var patterns []string
	seen := make(map[string]struct{})
	for _, rule := range c.invalidations {
		if !strings.HasPrefix(path, rule.Prefix) || !matchesMethod(rule.Methods, method) {
			continue
		}
		for _, p := range rule.Patterns {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			patterns = append(patterns, p)
		}
	}
	return patterns
}

func matchesMethod(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}
