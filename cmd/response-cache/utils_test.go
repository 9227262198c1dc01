package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestGetKeyDBURL(t *testing.T) {
	t.Run("environment variable wins", func(t *testing.T) {
		t.Setenv(keydbURLEnv, "redis://env:6379")
		assert.Equal(t, "redis://env:6379", GetKeyDBURL(zaptest.NewLogger(t)))
	})

	t.Run("connection file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".keydb-url")
		require.NoError(t, os.WriteFile(path, []byte("  redis://file:6380\n"), 0600))
		t.Setenv(keydbURLEnv, "")
		t.Setenv(keydbURLFileEnv, path)

		assert.Equal(t, "redis://file:6380", GetKeyDBURL(zaptest.NewLogger(t)))
	})

	t.Run("empty connection file falls back to default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".keydb-url")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))
		t.Setenv(keydbURLEnv, "")
		t.Setenv(keydbURLFileEnv, path)

		assert.Equal(t, defaultKeyDBURL, GetKeyDBURL(zaptest.NewLogger(t)))
	})

	t.Run("missing connection file falls back to default", func(t *testing.T) {
		t.Setenv(keydbURLEnv, "")
		t.Setenv(keydbURLFileEnv, filepath.Join(t.TempDir(), "missing"))

		assert.Equal(t, defaultKeyDBURL, GetKeyDBURL(zaptest.NewLogger(t)))
	})
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(configFileEnv, "")
	assert.Equal(t, defaultConfigFile, GetConfigPath(""))

	t.Setenv(configFileEnv, "/etc/cache.yaml")
	assert.Equal(t, "/etc/cache.yaml", GetConfigPath(""))
	assert.Equal(t, "/tmp/flag.yaml", GetConfigPath("/tmp/flag.yaml"))
}

func TestGetRulesPath(t *testing.T) {
	t.Setenv(rulesFileEnv, "")
	assert.Equal(t, "", GetRulesPath(""))

	t.Setenv(rulesFileEnv, "/etc/rules.yaml")
	assert.Equal(t, "/etc/rules.yaml", GetRulesPath(""))
	assert.Equal(t, "/tmp/rules.yaml", GetRulesPath("/tmp/rules.yaml"))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "redis://:xxxxx@keydb:6379/0", redactURL("redis://:secret@keydb:6379/0"))
	assert.Equal(t, "redis://keydb:6379", redactURL("redis://keydb:6379"))
	assert.Equal(t, "<invalid url>", redactURL("redis://%zz"))
}
