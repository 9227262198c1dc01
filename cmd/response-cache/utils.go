package main

import (
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	configFileEnv       = "RESPONSE_CACHE_CONFIG_FILE"
	rulesFileEnv        = "RESPONSE_CACHE_RULES_FILE"
	defaultConfigFile   = "/app/response_cache.yaml"
	keydbURLEnv         = "KEYDB_URL"
	keydbURLFileEnv     = "CACHE_KEYDB_URL_FILE"
	defaultKeyDBURL     = "redis://keydb:6379"
	defaultKeyDBURLFile = "/app/.keydb-url"
)

// GetConfigPath returns the config path: flag, then environment, then default
func GetConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv(configFileEnv); path != "" {
		return path
	}
	return defaultConfigFile
}

// GetRulesPath returns the cache rules path: flag, then environment.
// An empty result means no rules file.
func GetRulesPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(rulesFileEnv)
}

// GetKeyDBURL returns KeyDB URL with the following priority:
// 1. KEYDB_URL environment variable
// 2. CACHE_KEYDB_URL_FILE file content
// 3. Default value
func GetKeyDBURL(logger *zap.Logger) string {
	// Priority 1: Environment variable
	if keydbURL := os.Getenv(keydbURLEnv); keydbURL != "" {
		logger.Debug("Using KeyDB URL from environment variable")
		return keydbURL
	}

	// Priority 2: Configurable connection file path
	connectionFile := os.Getenv(keydbURLFileEnv)
	if connectionFile == "" {
		connectionFile = defaultKeyDBURLFile
	}

	if content, err := os.ReadFile(connectionFile); err == nil {
		keydbURL := strings.TrimSpace(string(content))
		if len(keydbURL) > 0 {
			logger.Debug("Using KeyDB URL from connection file", zap.String("file", connectionFile))
			return keydbURL
		}
	} else {
		logger.Debug("KeyDB connection file not found or empty", zap.String("file", connectionFile))
	}

	// Priority 3: Default
	logger.Debug("Using default KeyDB URL")
	return defaultKeyDBURL
}

// redactURL hides the password of a connection URL for logging
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
