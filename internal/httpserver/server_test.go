package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-response-cache/internal/cache"
	"go-response-cache/internal/cache/memory"
	"go-response-cache/internal/cache/service"
	"go-response-cache/internal/cache_rules"
	"go-response-cache/internal/middleware"
	"go-response-cache/internal/models"
)

func setupAdminServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clk := clock.NewMock()
	store := memory.NewStore(clk)
	cacheService := service.NewCacheService(store, clk, logger)
	dedup := middleware.NewDeduplicator(cache.NewKeyBuilder(), logger)
	classifier := cache_rules.NewClassifier(logger, &cache_rules.CacheRulesConfig{
		Routes: []cache_rules.RouteRule{{Prefix: "/api/auth", Bypass: true}},
	}, time.Minute)

	store.Put("GET:/api/quizzes", models.Payload{Body: []byte(`[]`)})
	store.Put("GET:/api/quizzes/1", models.Payload{Body: []byte(`{}`)})
	store.Put("GET:/api/users", models.Payload{Body: []byte(`[]`)})

	return NewServer(":0", cacheService, dedup, classifier, logger), store
}

func doRequest(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewReader(body)))
	return rec
}

func TestServer_HandleHealth(t *testing.T) {
	server, _ := setupAdminServer(t)

	rec := doRequest(server.Handler(), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestServer_HandleClear(t *testing.T) {
	server, store := setupAdminServer(t)

	rec := doRequest(server.Handler(), http.MethodPost, "/cache/clear", []byte(`{"pattern":"quizzes"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ClearCacheResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "quizzes", resp.Pattern)
	assert.Equal(t, 2, resp.Removed)
	assert.Equal(t, 1, store.Len())
}

func TestServer_HandleClear_NoMatch(t *testing.T) {
	server, store := setupAdminServer(t)

	rec := doRequest(server.Handler(), http.MethodPost, "/cache/clear", []byte(`{"pattern":"nothing-here"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ClearCacheResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Removed)
	assert.Equal(t, 3, store.Len())
}

func TestServer_HandleClear_EmptyPatternClearsAll(t *testing.T) {
	server, store := setupAdminServer(t)

	rec := doRequest(server.Handler(), http.MethodPost, "/cache/clear", []byte(`{"pattern":""}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestServer_HandleClear_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "invalid JSON", body: `{pattern`, wantErr: "Invalid request"},
		{name: "missing pattern", body: `{}`, wantErr: "Missing required field: pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, store := setupAdminServer(t)

			rec := doRequest(server.Handler(), http.MethodPost, "/cache/clear", []byte(tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.wantErr, resp["error"])
			assert.Equal(t, 3, store.Len())
		})
	}
}

func TestServer_HandleStats(t *testing.T) {
	server, _ := setupAdminServer(t)

	rec := doRequest(server.Handler(), http.MethodGet, "/cache/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Entries)
	assert.Equal(t, 0, resp.Pending)
	assert.Equal(t, []MountInfo{
		{Prefix: "/api/auth", FreshnessWindow: "1m0s", Bypass: true},
		{Prefix: "/", FreshnessWindow: "1m0s"},
	}, resp.Mounts)
}

func TestServer_Metrics(t *testing.T) {
	server, _ := setupAdminServer(t)

	rec := doRequest(server.Handler(), http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dedup_in_flight")
}

func TestServer_MethodNotAllowed(t *testing.T) {
	server, _ := setupAdminServer(t)

	rec := doRequest(server.Handler(), http.MethodGet, "/cache/clear", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
