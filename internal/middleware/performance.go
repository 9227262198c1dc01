package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-response-cache/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// PerformanceMonitor measures every request and reports slow ones.
// It never alters the response.
type PerformanceMonitor struct {
	clock           clock.Clock
	warnThreshold   time.Duration
	severeThreshold time.Duration
	logger          *zap.Logger
}

// NewPerformanceMonitor creates a monitor with the given thresholds
func NewPerformanceMonitor(warnThreshold, severeThreshold time.Duration, clk clock.Clock, logger *zap.Logger) *PerformanceMonitor {
	if clk == nil {
		clk = clock.New()
	}
	return &PerformanceMonitor{
		clock:           clk,
		warnThreshold:   warnThreshold,
		severeThreshold: severeThreshold,
		logger:          logger,
	}
}

// Handler returns next decorated with timing. A request without an
// X-Request-ID gets one before it is forwarded, so upstream logs can be
// matched against the slow-request log.
func (m *PerformanceMonitor) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := m.clock.Now()
		id := ensureRequestID(r)
		recorder := newStatusRecorder(w)

		next.ServeHTTP(recorder, r)

		elapsed := m.clock.Since(start)
		metrics.RecordRequestDuration(r.Method, strconv.Itoa(recorder.statusCode), elapsed)

		if elapsed < m.warnThreshold {
			return
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("uri", r.URL.RequestURI()),
			zap.Int("status", recorder.statusCode),
			zap.Duration("duration", elapsed),
			zap.String("request_id", id),
		}

		if elapsed >= m.severeThreshold {
			metrics.RecordSlowRequest("severe")
			m.logger.Warn("Very slow request", fields...)
			return
		}
		metrics.RecordSlowRequest("warn")
		m.logger.Info("Slow request", fields...)
	})
}

func ensureRequestID(r *http.Request) string {
	if id := r.Header.Get(requestIDHeader); id != "" {
		return id
	}
	id := uuid.NewString()
	r.Header.Set(requestIDHeader, id)
	return id
}
