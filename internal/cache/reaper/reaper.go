package reaper

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"go-response-cache/internal/cache/service"
	"go-response-cache/internal/metrics"
	"go-response-cache/internal/scheduler"
)

// Reaper periodically evicts cache entries older than maxAge,
// whether or not they are ever looked up again.
type Reaper struct {
	service   *service.CacheService
	maxAge    time.Duration
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// New creates a reaper sweeping every interval
func New(svc *service.CacheService, maxAge, interval time.Duration, clk clock.Clock, logger *zap.Logger) *Reaper {
	if clk == nil {
		clk = clock.New()
	}
	r := &Reaper{
		service: svc,
		maxAge:  maxAge,
		logger:  logger,
	}
	r.scheduler = scheduler.NewWithClock(interval, func() { r.Run() }, clk)
	return r
}

// Start begins periodic sweeping
func (r *Reaper) Start() {
	r.scheduler.Start()
	r.logger.Info("Cache reaper started", zap.Duration("max_age", r.maxAge))
}

// Stop halts periodic sweeping
func (r *Reaper) Stop() {
	r.scheduler.Stop()
}

// Run performs a single sweep and returns the number of entries removed
func (r *Reaper) Run() int {
	removed := r.service.Sweep(r.maxAge)
	if removed > 0 {
		r.logger.Info("Reaped stale cache entries", zap.Int("removed", removed))
	}

	stats := r.service.Stats()
	metrics.UpdateCacheKeys("total", int64(stats.Entries))
	return removed
}
