package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFreshnessWindow = 60 * time.Second
	DefaultReaperInterval  = 60 * time.Second
	DefaultWarnThreshold   = 500 * time.Millisecond
	DefaultSevereThreshold = 1000 * time.Millisecond

	L1EngineMemory   = "memory"
	L1EngineBigCache = "bigcache"
)

// Config represents the main configuration structure
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Admin       AdminConfig       `yaml:"admin"`
	Upstream    UpstreamConfig    `yaml:"upstream"`
	Cache       CacheConfig       `yaml:"cache"`
	Performance PerformanceConfig `yaml:"performance"`
	L1          L1Config          `yaml:"l1"`
	KeyDB       KeyDBConfig       `yaml:"keydb"`
	MultiCache  MultiCacheConfig  `yaml:"multi_cache"`
}

// ServerConfig configures the public listener the pipeline is served on
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" validate:"gte=0"`
}

// AdminConfig configures the health, metrics and cache management listener
type AdminConfig struct {
	ListenAddr string `yaml:"listen_addr" validate:"required"`
}

// UpstreamConfig points at the API backend that serves cache misses
type UpstreamConfig struct {
	URL     string        `yaml:"url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// CacheConfig holds the response cache timing settings
type CacheConfig struct {
	FreshnessWindow time.Duration `yaml:"freshness_window" validate:"gt=0"`
	ReaperInterval  time.Duration `yaml:"reaper_interval" validate:"gt=0"`
}

// PerformanceConfig holds the latency classification thresholds
type PerformanceConfig struct {
	WarnThreshold   time.Duration `yaml:"warn_threshold" validate:"gt=0"`
	SevereThreshold time.Duration `yaml:"severe_threshold" validate:"gtefield=WarnThreshold"`
}

// L1Config selects the in-process store engine
type L1Config struct {
	Engine   string         `yaml:"engine" validate:"oneof=memory bigcache"`
	BigCache BigCacheConfig `yaml:"bigcache"`
}

// BigCacheConfig tunes the bigcache engine. Size 0 leaves the cache unbounded.
type BigCacheConfig struct {
	Shards             int           `yaml:"shards" validate:"pow2"`
	Size               int           `yaml:"size" validate:"gte=0"`          // MB
	MaxEntrySize       int           `yaml:"max_entry_size" validate:"gt=0"` // bytes, initial sizing hint
	MaxEntriesInWindow int           `yaml:"max_entries_in_window" validate:"gt=0"`
	LifeWindow         time.Duration `yaml:"life_window" validate:"gt=0"`
}

// KeyDBConfig configures the optional shared L2 store
type KeyDBConfig struct {
	Enabled    bool             `yaml:"enabled"`
	KeyPrefix  string           `yaml:"key_prefix" validate:"required_if=Enabled true"`
	EntryTTL   time.Duration    `yaml:"entry_ttl" validate:"gte=0"`
	ScanCount  int64            `yaml:"scan_count" validate:"gte=0"`
	Connection ConnectionConfig `yaml:"connection"`
	Keepalive  KeepaliveConfig  `yaml:"keepalive"`
}

// ConnectionConfig holds KeyDB client timeouts
type ConnectionConfig struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gte=0"`
	SendTimeout    time.Duration `yaml:"send_timeout" validate:"gte=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"gte=0"`
}

// KeepaliveConfig holds KeyDB connection pool settings
type KeepaliveConfig struct {
	PoolSize       int           `yaml:"pool_size" validate:"gte=0"`
	MaxIdleTimeout time.Duration `yaml:"max_idle_timeout" validate:"gte=0"`
}

// MultiCacheConfig controls the tiered store
type MultiCacheConfig struct {
	EnablePropagation bool `yaml:"enable_propagation"`
}

// GetReadTimeout returns the KeyDB read timeout
func (k *KeyDBConfig) GetReadTimeout() time.Duration {
	return k.Connection.ReadTimeout
}

// GetSendTimeout returns the KeyDB write timeout
func (k *KeyDBConfig) GetSendTimeout() time.Duration {
	return k.Connection.SendTimeout
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from file path
func LoadConfig(configPath string, logger *zap.Logger) (*Config, error) {
	logger.Info("Loading configuration", zap.String("path", configPath))

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var config Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	// Apply defaults
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration against its constraints
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Admin.ListenAddr == "" {
		c.Admin.ListenAddr = ":9090"
	}
	if c.Upstream.URL == "" {
		c.Upstream.URL = "http://localhost:5000"
	}

	if c.Cache.FreshnessWindow == 0 {
		c.Cache.FreshnessWindow = DefaultFreshnessWindow
	}
	if c.Cache.ReaperInterval == 0 {
		c.Cache.ReaperInterval = DefaultReaperInterval
	}
	if c.Performance.WarnThreshold == 0 {
		c.Performance.WarnThreshold = DefaultWarnThreshold
	}
	if c.Performance.SevereThreshold == 0 {
		c.Performance.SevereThreshold = DefaultSevereThreshold
	}

	if c.L1.Engine == "" {
		c.L1.Engine = L1EngineMemory
	}
	if c.L1.BigCache.Shards == 0 {
		c.L1.BigCache.Shards = 1024
	}
	if c.L1.BigCache.MaxEntrySize == 0 {
		c.L1.BigCache.MaxEntrySize = 500
	}
	if c.L1.BigCache.MaxEntriesInWindow == 0 {
		c.L1.BigCache.MaxEntriesInWindow = 10000
	}
	if c.L1.BigCache.LifeWindow == 0 {
		c.L1.BigCache.LifeWindow = 10 * time.Minute
	}

	if c.KeyDB.KeyPrefix == "" {
		c.KeyDB.KeyPrefix = "response-cache:"
	}
	if c.KeyDB.EntryTTL == 0 {
		c.KeyDB.EntryTTL = 2 * c.Cache.FreshnessWindow
	}
	if c.KeyDB.ScanCount == 0 {
		c.KeyDB.ScanCount = 100
	}
	if c.KeyDB.Connection.ConnectTimeout == 0 {
		c.KeyDB.Connection.ConnectTimeout = time.Second
	}
	if c.KeyDB.Connection.SendTimeout == 0 {
		c.KeyDB.Connection.SendTimeout = time.Second
	}
	if c.KeyDB.Connection.ReadTimeout == 0 {
		c.KeyDB.Connection.ReadTimeout = time.Second
	}
	if c.KeyDB.Keepalive.PoolSize == 0 {
		c.KeyDB.Keepalive.PoolSize = 10
	}
	if c.KeyDB.Keepalive.MaxIdleTimeout == 0 {
		c.KeyDB.Keepalive.MaxIdleTimeout = 10 * time.Second
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("pow2", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n > 0 && n&(n-1) == 0
	})
	return v
}
