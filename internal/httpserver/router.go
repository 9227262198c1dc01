package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"go-response-cache/internal/cache/service"
	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/middleware"
)

// Pipeline holds the shared pieces every mount point is assembled from
type Pipeline struct {
	CacheService *service.CacheService
	KeyBuilder   interfaces.KeyBuilder
	Classifier   interfaces.CacheRulesClassifier
	Deduplicator *middleware.Deduplicator
	Monitor      *middleware.PerformanceMonitor
	Downstream   http.Handler
	Logger       *zap.Logger
}

// NewRouter mounts one pipeline per rule, most specific prefix first.
// Caching mounts run monitor, write invalidation, cache, dedup, downstream;
// bypass mounts skip cache and dedup.
func NewRouter(p Pipeline) *mux.Router {
	router := mux.NewRouter()
	router.SkipClean(true)

	invalidator := middleware.NewWriteInvalidator(p.CacheService, p.Classifier, p.Logger)

	for _, mount := range p.Classifier.Mounts() {
		stages := []middleware.Stage{p.Monitor.Handler, invalidator.Handler}
		if !mount.Bypass {
			responseCache := middleware.NewResponseCache(
				p.CacheService,
				p.KeyBuilder,
				mount.Prefix,
				mount.FreshnessWindow,
				p.Logger.With(zap.String("mount", mount.Prefix)),
			)
			stages = append(stages, responseCache.Handler, p.Deduplicator.Handler)
		}

		router.PathPrefix(mount.Prefix).Handler(middleware.Chain(p.Downstream, stages...))
		p.Logger.Info("Mounted pipeline",
			zap.String("prefix", mount.Prefix),
			zap.Duration("freshness_window", mount.FreshnessWindow),
			zap.Bool("bypass", mount.Bypass))
	}

	return router
}
