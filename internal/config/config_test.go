package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the yaml file and fills defaults", func(t *testing.T) {
		// Given: a config file with a few settings
		path := writeConfig(t, `
mode: server
jwt-secret-key: secret
redis:
  host: cache
session:
  store: redis
  ttl: 30m
`)

		// When: it is loaded
		config, err := Load(path)

		// Then: file values and defaults are both present
		require.NoError(t, err)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "9090", config.HTTPPort)
		assert.Equal(t, "cache:6379", config.Redis.GetRedisAddr())
		assert.Equal(t, StoreRedis, config.Session.Store)
		assert.Equal(t, 30*time.Minute, config.Session.TTL)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		// Given: a terminal config and an env override of the log level
		path := writeConfig(t, "mode: terminal\n")
		t.Setenv("LOG_LEVEL", "debug")

		// When: it is loaded
		config, err := Load(path)

		// Then: the env value wins and no jwt secret is needed
		require.NoError(t, err)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, ModeTerminal, config.Mode)
		assert.Equal(t, StoreMemory, config.Session.Store)
		assert.True(t, config.Terminal.Sound)
	})

	t.Run("Server mode needs a jwt secret", func(t *testing.T) {
		path := writeConfig(t, "mode: server\n")

		_, err := Load(path)

		require.ErrorIs(t, err, ErrNoJWTSecret)
	})

	t.Run("Unknown mode is rejected", func(t *testing.T) {
		path := writeConfig(t, "mode: kiosk\n")

		_, err := Load(path)

		require.ErrorIs(t, err, ErrUnknownMode)
	})

	t.Run("Unknown store is rejected", func(t *testing.T) {
		path := writeConfig(t, "mode: terminal\nsession:\n  store: sqlite\n")

		_, err := Load(path)

		require.ErrorIs(t, err, ErrUnknownStore)
	})

	t.Run("MustLoad panics on a missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
