package cache_rules

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadCacheRulesConfig loads cache rules from a YAML file
func LoadCacheRulesConfig(rulesPath string, logger *zap.Logger) (*CacheRulesConfig, error) {
	logger.Info("Loading cache rules config", zap.String("path", rulesPath))

	file, err := os.Open(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache rules file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var config CacheRulesConfig
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode YAML cache rules: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("cache rules validation failed: %w", err)
	}

	logger.Info("Cache rules config loaded successfully",
		zap.Int("routes", len(config.Routes)),
		zap.Int("invalidations", len(config.Invalidations)))

	return &config, nil
}

// validateConfig validates the cache rules configuration structure
func validateConfig(config *CacheRulesConfig) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(config.Routes))
	for _, route := range config.Routes {
		if _, ok := seen[route.Prefix]; ok {
			return fmt.Errorf("duplicate route prefix %q", route.Prefix)
		}
		seen[route.Prefix] = struct{}{}
	}

	return nil
}
