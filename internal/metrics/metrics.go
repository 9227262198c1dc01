package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Response cache lookups per mount
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"mount"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"mount"},
	)

	CacheStores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_stores_total",
			Help: "Total number of responses written to the cache",
		},
		[]string{"mount"},
	)

	// Entries removed, by reason: invalidate, sweep, expired
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_evictions_total",
			Help: "Total number of cache entries removed",
		},
		[]string{"reason"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"level", "kind"},
	)

	CacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "response_cache_keys",
			Help: "Number of keys currently held in the cache",
		},
		[]string{"level"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "response_cache_operation_duration_seconds",
			Help:    "Duration of cache store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Deduplication: role is leader or follower
	DedupRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_requests_total",
			Help: "Total number of GET requests seen by the deduplicator",
		},
		[]string{"role"},
	)

	DedupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_failures_total",
			Help: "Total number of deduplicated executions that resolved with a failure",
		},
	)

	DedupInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dedup_in_flight",
			Help: "Number of downstream executions currently shared by the deduplicator",
		},
	)

	// Request latency as seen by the performance monitor
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests passing through the pipeline",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "status"},
	)

	SlowRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_slow_requests_total",
			Help: "Total number of requests over a latency threshold",
		},
		[]string{"severity"},
	)
)

// RecordCacheHit records a cache hit for a mount
func RecordCacheHit(mount string) {
	CacheHits.WithLabelValues(mount).Inc()
}

// RecordCacheMiss records a cache miss for a mount
func RecordCacheMiss(mount string) {
	CacheMisses.WithLabelValues(mount).Inc()
}

// RecordCacheStore records a response written to the cache
func RecordCacheStore(mount string) {
	CacheStores.WithLabelValues(mount).Inc()
}

// RecordCacheEvictions records removed entries
func RecordCacheEvictions(reason string, count int) {
	if count <= 0 {
		return
	}
	CacheEvictions.WithLabelValues(reason).Add(float64(count))
}

// RecordCacheError records a cache backend error with level and kind
func RecordCacheError(level, kind string) {
	CacheErrors.WithLabelValues(level, kind).Inc()
}

// UpdateCacheKeys updates the number of keys in cache
func UpdateCacheKeys(level string, count int64) {
	CacheKeys.WithLabelValues(level).Set(float64(count))
}

// TimeCacheOperation returns a timer function for measuring a cache operation
func TimeCacheOperation(operation string) func() {
	timer := prometheus.NewTimer(CacheOperationDuration.WithLabelValues(operation))
	return func() {
		timer.ObserveDuration()
	}
}

// RecordDedupLeader records a request that executed downstream on behalf of others
func RecordDedupLeader() {
	DedupRequests.WithLabelValues("leader").Inc()
}

// RecordDedupFollower records a request that joined an in-flight execution
func RecordDedupFollower() {
	DedupRequests.WithLabelValues("follower").Inc()
}

// RecordDedupFailure records a shared execution that resolved with a failure
func RecordDedupFailure() {
	DedupFailures.Inc()
}

// RecordRequestDuration records the latency of a completed request
func RecordRequestDuration(method, status string, duration time.Duration) {
	RequestDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// RecordSlowRequest records a request over the warn or severe threshold
func RecordSlowRequest(severity string) {
	SlowRequests.WithLabelValues(severity).Inc()
}
