package main

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"go-response-cache/internal/cache"
	"go-response-cache/internal/cache/l1"
	"go-response-cache/internal/cache/l2"
	"go-response-cache/internal/cache/memory"
	"go-response-cache/internal/cache/multi"
	"go-response-cache/internal/cache/noop"
	"go-response-cache/internal/cache/reaper"
	"go-response-cache/internal/cache/service"
	"go-response-cache/internal/cache_rules"
	"go-response-cache/internal/config"
	"go-response-cache/internal/httpserver"
	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/middleware"
)

// CompositionRoot holds all application dependencies and is the single
// place where they are created and wired together.
type CompositionRoot struct {
	// Configuration
	Config     *config.Config
	Logger     *zap.Logger
	Clock      clock.Clock
	CacheRules *cache_rules.Classifier

	// Cache components
	L1Cache    interfaces.Store
	L2Cache    interfaces.Store
	Store      *multi.MultiCache
	KeyBuilder interfaces.KeyBuilder

	// Services
	CacheService *service.CacheService
	Reaper       *reaper.Reaper
	Deduplicator *middleware.Deduplicator
	Monitor      *middleware.PerformanceMonitor

	// Servers
	Gateway     *httpserver.Gateway
	AdminServer *httpserver.Server
}

// NewCompositionRoot creates and initializes all application dependencies.
//
// Initialization order:
// 1. Logger
// 2. Configuration and cache rules
// 3. Cache stores (L1, L2, tiered store)
// 4. Services (cache service, reaper, pipeline stages)
// 5. HTTP servers
func NewCompositionRoot(configPath, rulesPath string) (*CompositionRoot, error) {
	root := &CompositionRoot{Clock: clock.New()}

	// Initialize logger first
	if err := root.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, classifier, err := loadSettings(configPath, rulesPath, root.Logger)
	if err != nil {
		return nil, err
	}
	root.Config = cfg
	root.CacheRules = classifier

	if err := root.initCacheComponents(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache components: %w", err)
	}

	root.initServices()

	if err := root.initHTTPServers(); err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP servers: %w", err)
	}

	return root, nil
}

// initLogger initializes the application logger
func (r *CompositionRoot) initLogger() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	r.Logger = logger
	return nil
}

// loadSettings loads the configuration and the optional cache rules
func loadSettings(configPath, rulesPath string, logger *zap.Logger) (*config.Config, *cache_rules.Classifier, error) {
	cfg, err := config.LoadConfig(configPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var rules *cache_rules.CacheRulesConfig
	if rulesPath != "" {
		rules, err = cache_rules.LoadCacheRulesConfig(rulesPath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load cache rules: %w", err)
		}
	} else {
		logger.Info("No cache rules file configured, caching everything under /")
	}

	return cfg, cache_rules.NewClassifier(logger, rules, cfg.Cache.FreshnessWindow), nil
}

// initCacheComponents initializes all cache-related components
func (r *CompositionRoot) initCacheComponents() error {
	if err := r.initL1Cache(); err != nil {
		return fmt.Errorf("failed to initialize L1 cache: %w", err)
	}

	if err := r.initL2Cache(); err != nil {
		return fmt.Errorf("failed to initialize L2 cache: %w", err)
	}

	r.Store = multi.NewMultiCache(
		[]interfaces.Store{r.L1Cache, r.L2Cache},
		r.Logger,
		r.Config.MultiCache.EnablePropagation,
	)

	r.KeyBuilder = cache.NewKeyBuilder()
	return nil
}

// initL1Cache initializes the in-process tier
func (r *CompositionRoot) initL1Cache() error {
	if r.Config.L1.Engine == config.L1EngineBigCache {
		l1Cache, err := l1.NewBigCache(&r.Config.L1.BigCache, r.Clock, r.Logger)
		if err != nil {
			return err
		}
		r.L1Cache = l1Cache
		r.Logger.Info("BigCache (L1) initialized", zap.Int("size_mb", r.Config.L1.BigCache.Size))
		return nil
	}

	r.L1Cache = memory.NewStore(r.Clock)
	r.Logger.Info("In-memory (L1) store initialized")
	return nil
}

// initL2Cache initializes the shared KeyDB tier
func (r *CompositionRoot) initL2Cache() error {
	if !r.Config.KeyDB.Enabled {
		r.L2Cache = noop.NewNoOpCache()
		r.Logger.Info("KeyDB (L2) disabled")
		return nil
	}

	redis.SetLogger(NewRedisLogger(r.Logger.Named("keydb")))
	keydbURL := GetKeyDBURL(r.Logger)

	keydbClient, err := l2.NewRedisKeyDbClient(&r.Config.KeyDB, keydbURL, r.Logger)
	if err != nil {
		r.Logger.Warn("Failed to connect to KeyDB, falling back to no L2 cache",
			zap.String("keydb_url", redactURL(keydbURL)),
			zap.Error(err))
		r.L2Cache = noop.NewNoOpCache()
		return nil
	}

	if maxWindow := r.CacheRules.MaxFreshnessWindow(); r.Config.KeyDB.EntryTTL < maxWindow {
		r.Logger.Warn("KeyDB entry TTL is shorter than the longest freshness window",
			zap.Duration("entry_ttl", r.Config.KeyDB.EntryTTL),
			zap.Duration("freshness_window", maxWindow))
	}

	r.L2Cache = l2.NewKeyDBCache(&r.Config.KeyDB, keydbClient, r.Clock, r.Logger)
	r.Logger.Info("KeyDB (L2) initialized", zap.String("keydb_url", redactURL(keydbURL)))
	return nil
}

// initServices initializes the cache service, reaper and pipeline stages
func (r *CompositionRoot) initServices() {
	r.CacheService = service.NewCacheService(r.Store, r.Clock, r.Logger)

	// Sweep against the longest window so no mount loses an entry it still considers fresh
	maxAge := r.CacheRules.MaxFreshnessWindow()
	if maxAge == 0 {
		maxAge = r.Config.Cache.FreshnessWindow
	}
	r.Reaper = reaper.New(r.CacheService, maxAge, r.Config.Cache.ReaperInterval, r.Clock, r.Logger)

	r.Deduplicator = middleware.NewDeduplicator(r.KeyBuilder, r.Logger)
	r.Monitor = middleware.NewPerformanceMonitor(
		r.Config.Performance.WarnThreshold,
		r.Config.Performance.SevereThreshold,
		r.Clock,
		r.Logger,
	)
}

// initHTTPServers initializes the gateway and admin servers
func (r *CompositionRoot) initHTTPServers() error {
	downstream, err := httpserver.NewUpstreamProxy(&r.Config.Upstream, r.Logger)
	if err != nil {
		return err
	}

	router := httpserver.NewRouter(httpserver.Pipeline{
		CacheService: r.CacheService,
		KeyBuilder:   r.KeyBuilder,
		Classifier:   r.CacheRules,
		Deduplicator: r.Deduplicator,
		Monitor:      r.Monitor,
		Downstream:   downstream,
		Logger:       r.Logger,
	})

	r.Gateway = httpserver.NewGateway(&r.Config.Server, router, r.Logger)
	r.AdminServer = httpserver.NewServer(
		r.Config.Admin.ListenAddr,
		r.CacheService,
		r.Deduplicator,
		r.CacheRules,
		r.Logger,
	)
	return nil
}

// Cleanup performs cleanup of all resources
func (r *CompositionRoot) Cleanup() error {
	var errors []error

	// Close L1 cache
	if l1BigCache, ok := r.L1Cache.(*l1.BigCache); ok {
		if err := l1BigCache.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close L1 cache: %w", err))
		}
	}

	// Close L2 cache
	if l2KeyDBCache, ok := r.L2Cache.(*l2.KeyDBCache); ok {
		if err := l2KeyDBCache.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close L2 cache: %w", err))
		}
	}

	// Sync logger last so close errors above are flushed
	if r.Logger != nil {
		_ = r.Logger.Sync()
	}

	// Return first error if any
	if len(errors) > 0 {
		return errors[0]
	}

	return nil
}
