package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"go-response-cache/internal/cache/service"
	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/metrics"
	"go-response-cache/internal/models"
	"go-response-cache/internal/utils"
)

// ResponseCache serves fresh stored payloads for GET requests and stores
// successful downstream results. Every other method passes through untouched.
type ResponseCache struct {
	service    *service.CacheService
	keyBuilder interfaces.KeyBuilder
	mount      string
	window     time.Duration
	logger     *zap.Logger
}

// NewResponseCache creates the cache stage for one mount point
func NewResponseCache(
	cacheService *service.CacheService,
	keyBuilder interfaces.KeyBuilder,
	mount string,
	window time.Duration,
	logger *zap.Logger,
) *ResponseCache {
	return &ResponseCache{
		service:    cacheService,
		keyBuilder: keyBuilder,
		mount:      mount,
		window:     window,
		logger:     logger,
	}
}

// Handler returns next decorated with the cache stage
func (c *ResponseCache) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := c.keyBuilder.Build(r.Method, r.URL.RequestURI())

		if entry, found := c.service.Lookup(key, c.window); found {
			metrics.RecordCacheHit(c.mount)
			c.logger.Debug("Cache hit", zap.String("key", key), zap.String("mount", c.mount))
			if err := utils.WritePayload(w, entry.Payload.ContentType, entry.Payload.Body); err != nil {
				c.logger.Debug("Failed to write cached response", zap.String("key", key), zap.Error(err))
			}
			return
		}
		metrics.RecordCacheMiss(c.mount)

		r, hook := withResolveHook(r, func(resp *models.CapturedResponse) {
			c.store(key, resp)
		})

		capture := NewResponseCapture()
		next.ServeHTTP(capture, r)
		resp := capture.Result()

		if !hook.handled {
			c.store(key, resp)
		}

		if err := replay(w, resp); err != nil {
			c.logger.Debug("Failed to write response", zap.String("key", key), zap.Error(err))
		}
	})
}

func (c *ResponseCache) store(key string, resp *models.CapturedResponse) {
	if !resp.Succeeded() {
		return
	}
	c.service.Store(key, resp.Payload())
	metrics.RecordCacheStore(c.mount)
	c.logger.Debug("Response cached", zap.String("key", key), zap.Int("size", len(resp.Body)))
}
