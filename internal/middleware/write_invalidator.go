package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"go-response-cache/internal/cache/service"
	"go-response-cache/internal/interfaces"
)

// WriteInvalidator clears cached reads after a successful write.
// Patterns come from the rules classifier; without rules it does nothing.
type WriteInvalidator struct {
	service    *service.CacheService
	classifier interfaces.CacheRulesClassifier
	logger     *zap.Logger
}

// NewWriteInvalidator creates the invalidation stage
func NewWriteInvalidator(cacheService *service.CacheService, classifier interfaces.CacheRulesClassifier, logger *zap.Logger) *WriteInvalidator {
	return &WriteInvalidator{
		service:    cacheService,
		classifier: classifier,
		logger:     logger,
	}
}

// Handler returns next decorated with write invalidation
func (i *WriteInvalidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		patterns := i.classifier.InvalidationPatterns(r.Method, r.URL.Path)
		if len(patterns) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		// Clear before the status line reaches the client so a follow-up read
		// cannot observe the old payload.
		recorder := newStatusRecorder(w)
		recorder.onHeader = func(statusCode int) {
			if statusCode < 200 || statusCode >= 300 {
				return
			}
			removed := 0
			for _, pattern := range patterns {
				removed += i.service.ClearCache(pattern)
			}
			i.logger.Debug("Invalidated after write",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Strings("patterns", patterns),
				zap.Int("removed", removed))
		}

		next.ServeHTTP(recorder, r)

		// A handler that writes nothing still produces an implicit 200
		if !recorder.wroteHeader {
			recorder.WriteHeader(http.StatusOK)
		}
	})
}
