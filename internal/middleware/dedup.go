package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/metrics"
	"go-response-cache/internal/models"
	"go-response-cache/internal/utils"
)

type pendingCall struct {
	waiters []chan *models.CapturedResponse
}

type resolveHookKey struct{}

// resolveHook is handed down by an outer stage through the request context.
// The leader calls fn while its key is still pending; handled tells the
// outer stage that the deduplicator already took care of the result.
type resolveHook struct {
	fn      func(resp *models.CapturedResponse)
	handled bool
}

// withResolveHook attaches fn to r for the deduplication stage below
func withResolveHook(r *http.Request, fn func(resp *models.CapturedResponse)) (*http.Request, *resolveHook) {
	hook := &resolveHook{fn: fn}
	return r.WithContext(context.WithValue(r.Context(), resolveHookKey{}, hook)), hook
}

func resolveHookFrom(ctx context.Context) *resolveHook {
	hook, _ := ctx.Value(resolveHookKey{}).(*resolveHook)
	return hook
}

// Deduplicator collapses concurrent identical GET requests into a single
// downstream execution. The first request for a key leads; requests arriving
// while it runs wait for and reuse its outcome.
type Deduplicator struct {
	mu         sync.Mutex
	pending    map[string]*pendingCall
	keyBuilder interfaces.KeyBuilder
	logger     *zap.Logger
}

// NewDeduplicator creates a deduplicator with an empty pending table
func NewDeduplicator(keyBuilder interfaces.KeyBuilder, logger *zap.Logger) *Deduplicator {
	return &Deduplicator{
		pending:    make(map[string]*pendingCall),
		keyBuilder: keyBuilder,
		logger:     logger,
	}
}

// Pending returns the number of keys with a computation in flight
func (d *Deduplicator) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Waiters returns how many followers are attached to key's computation
func (d *Deduplicator) Waiters(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if call, ok := d.pending[key]; ok {
		return len(call.waiters)
	}
	return 0
}

// Handler returns next decorated with the deduplication stage
func (d *Deduplicator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := d.keyBuilder.Build(r.Method, r.URL.RequestURI())

		d.mu.Lock()
		if call, ok := d.pending[key]; ok {
			ch := make(chan *models.CapturedResponse, 1)
			call.waiters = append(call.waiters, ch)
			d.mu.Unlock()

			// The leader resolves the result for everyone on this key
			if hook := resolveHookFrom(r.Context()); hook != nil {
				hook.handled = true
			}

			metrics.RecordDedupFollower()
			d.logger.Debug("Joined in-flight request", zap.String("key", key))
			d.follow(w, r, key, ch)
			return
		}
		call := &pendingCall{}
		d.pending[key] = call
		metrics.DedupInFlight.Inc()
		d.mu.Unlock()

		metrics.RecordDedupLeader()
		d.lead(w, r, key, call, next)
	})
}

func (d *Deduplicator) lead(w http.ResponseWriter, r *http.Request, key string, call *pendingCall, next http.Handler) {
	resp := d.execute(r, key, next)

	// Runs before the pending entry goes away, so an identical request
	// arriving meanwhile still joins this call instead of going downstream.
	if hook := resolveHookFrom(r.Context()); hook != nil {
		hook.fn(resp)
		hook.handled = true
	}

	d.mu.Lock()
	delete(d.pending, key)
	waiters := call.waiters
	metrics.DedupInFlight.Dec()
	d.mu.Unlock()

	if !resp.Succeeded() {
		metrics.RecordDedupFailure()
		d.logger.Warn("Deduplicated request failed",
			zap.String("key", key),
			zap.Int("status", resp.StatusCode),
			zap.Int("waiters", len(waiters)))
	} else if len(waiters) > 0 {
		d.logger.Debug("Deduplicated request resolved", zap.String("key", key), zap.Int("waiters", len(waiters)))
	}

	for _, ch := range waiters {
		ch <- resp
	}

	if err := replay(w, resp); err != nil {
		d.logger.Debug("Failed to write response", zap.String("key", key), zap.Error(err))
	}
}

// execute runs the downstream handler detached from the leader's own
// cancellation, since followers depend on its outcome.
func (d *Deduplicator) execute(r *http.Request, key string, next http.Handler) (resp *models.CapturedResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			message := fmt.Sprint(rec)
			if err, ok := rec.(error); ok {
				message = err.Error()
			}
			d.logger.Error("Downstream handler panicked", zap.String("key", key), zap.String("panic", message))

			body, _ := json.Marshal(map[string]string{"error": message})
			resp = &models.CapturedResponse{
				StatusCode: http.StatusInternalServerError,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       body,
			}
		}
	}()

	capture := NewResponseCapture()
	next.ServeHTTP(capture, r.WithContext(context.WithoutCancel(r.Context())))
	return capture.Result()
}

func (d *Deduplicator) follow(w http.ResponseWriter, r *http.Request, key string, ch <-chan *models.CapturedResponse) {
	select {
	case resp := <-ch:
		var err error
		if resp.Succeeded() {
			payload := resp.Payload()
			err = utils.WritePayload(w, payload.ContentType, payload.Body)
		} else {
			err = utils.WriteError(w, http.StatusInternalServerError, utils.ExtractErrorMessage(resp.Body, resp.StatusCode))
		}
		if err != nil {
			d.logger.Debug("Failed to write deduplicated response", zap.String("key", key), zap.Error(err))
		}
	case <-r.Context().Done():
		d.logger.Debug("Waiter disconnected before result", zap.String("key", key))
	}
}
