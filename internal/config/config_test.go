package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func createTestConfigFile(t *testing.T, content string) string {
	tmpFile, err := os.CreateTemp("", "response_cache_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	if err := tmpFile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	return tmpFile.Name()
}

func TestLoadConfig(t *testing.T) {
	logger := zaptest.NewLogger(t)

	validConfig := `
server:
  listen_addr: ":3000"
upstream:
  url: "http://api:5000"
  timeout: 15s
cache:
  freshness_window: 30s
  reaper_interval: 45s
performance:
  warn_threshold: 200ms
  severe_threshold: 800ms
l1:
  engine: bigcache
  bigcache:
    shards: 64
    size: 128
keydb:
  enabled: true
  key_prefix: "quiz:"
  connection:
    connect_timeout: 2s
    send_timeout: 2s
    read_timeout: 2s
  keepalive:
    pool_size: 20
    max_idle_timeout: 20s
multi_cache:
  enable_propagation: true
`

	configFile := createTestConfigFile(t, validConfig)
	defer os.Remove(configFile)

	config, err := LoadConfig(configFile, logger)
	require.NoError(t, err)

	assert.Equal(t, ":3000", config.Server.ListenAddr)
	assert.Equal(t, "http://api:5000", config.Upstream.URL)
	assert.Equal(t, 15*time.Second, config.Upstream.Timeout)
	assert.Equal(t, 30*time.Second, config.Cache.FreshnessWindow)
	assert.Equal(t, 45*time.Second, config.Cache.ReaperInterval)
	assert.Equal(t, 200*time.Millisecond, config.Performance.WarnThreshold)
	assert.Equal(t, 800*time.Millisecond, config.Performance.SevereThreshold)

	assert.Equal(t, L1EngineBigCache, config.L1.Engine)
	assert.Equal(t, 64, config.L1.BigCache.Shards)
	assert.Equal(t, 128, config.L1.BigCache.Size)

	assert.True(t, config.KeyDB.Enabled)
	assert.Equal(t, "quiz:", config.KeyDB.KeyPrefix)
	assert.Equal(t, 2*time.Second, config.KeyDB.GetReadTimeout())
	assert.Equal(t, 2*time.Second, config.KeyDB.GetSendTimeout())
	assert.Equal(t, 20, config.KeyDB.Keepalive.PoolSize)
	assert.Equal(t, 60*time.Second, config.KeyDB.EntryTTL)
	assert.True(t, config.MultiCache.EnablePropagation)

	// Untouched sections fall back to defaults
	assert.Equal(t, ":9090", config.Admin.ListenAddr)
}

func TestLoadConfig_Defaults(t *testing.T) {
	logger := zaptest.NewLogger(t)

	configFile := createTestConfigFile(t, "upstream:\n  url: \"http://localhost:5000\"\n")
	defer os.Remove(configFile)

	config, err := LoadConfig(configFile, logger)
	require.NoError(t, err)

	assert.Equal(t, DefaultFreshnessWindow, config.Cache.FreshnessWindow)
	assert.Equal(t, DefaultReaperInterval, config.Cache.ReaperInterval)
	assert.Equal(t, DefaultWarnThreshold, config.Performance.WarnThreshold)
	assert.Equal(t, DefaultSevereThreshold, config.Performance.SevereThreshold)
	assert.Equal(t, L1EngineMemory, config.L1.Engine)
	assert.False(t, config.KeyDB.Enabled)
	assert.Equal(t, 1024, config.L1.BigCache.Shards)
}

func TestLoadConfig_Errors(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "invalid yaml",
			content: "server: [unclosed",
		},
		{
			name:    "unknown l1 engine",
			content: "l1:\n  engine: ristretto\n",
		},
		{
			name:    "severe below warn",
			content: "performance:\n  warn_threshold: 2s\n  severe_threshold: 1s\n",
		},
		{
			name:    "shards not a power of two",
			content: "l1:\n  bigcache:\n    shards: 100\n",
		},
		{
			name:    "invalid upstream url",
			content: "upstream:\n  url: \"not a url\"\n",
		},
		{
			name:    "negative freshness window",
			content: "cache:\n  freshness_window: -5s\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := createTestConfigFile(t, tt.content)
			defer os.Remove(configFile)

			_, err := LoadConfig(configFile, logger)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := LoadConfig("/nonexistent/response_cache.yaml", logger)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestDefault(t *testing.T) {
	config := Default()

	require.NoError(t, config.Validate())
	assert.Equal(t, 60*time.Second, config.Cache.FreshnessWindow)
	assert.Equal(t, 500*time.Millisecond, config.Performance.WarnThreshold)
	assert.Equal(t, 1000*time.Millisecond, config.Performance.SevereThreshold)
}
