package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/slidinglog/rate-limiter/slidinglog"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "memory", cfg.Storage.Type)
	require.Equal(t, 30*time.Second, cfg.Storage.SweepInterval)
	require.Equal(t, 100, cfg.Limits.Default.Capacity)
	require.Equal(t, time.Minute, cfg.Limits.Default.Window)
	require.Empty(t, cfg.Limits.Clients)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RATELIMITER_STORAGE__TYPE", "redis")
	t.Setenv("RATELIMITER_STORAGE__REDIS__ADDR", "redis:6380")
	t.Setenv("RATELIMITER_LIMITS__DEFAULT__CAPACITY", "7")
	t.Setenv("RATELIMITER_LIMITS__DEFAULT__WINDOW", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "redis", cfg.Storage.Type)
	require.Equal(t, "redis:6380", cfg.Storage.Redis.Addr)
	require.Equal(t, 7, cfg.Limits.Default.Capacity)
	require.Equal(t, 30*time.Second, cfg.Limits.Default.Window)
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: ":9090"
limits:
  default:
    capacity: 50
    window: 2m
  clients:
    client-1:
      capacity: 5
      window: 1m
    client-2:
      capacity: 2
      window: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, 50, cfg.Limits.Default.Capacity)
	require.Len(t, cfg.Limits.Clients, 2)
	require.Equal(t, Rule{Capacity: 5, Window: time.Minute}, cfg.Limits.Clients["client-1"])
	require.Equal(t, Rule{Capacity: 2, Window: 10 * time.Second}, cfg.Limits.Clients["client-2"])
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadRejectsInvalidRules(t *testing.T) {
	t.Run("non-positive window", func(t *testing.T) {
		path := writeConfigFile(t, `
limits:
  default:
    capacity: 10
    window: 0s
`)
		_, err := Load(path)
		require.ErrorIs(t, err, slidinglog.ErrInvalidConfiguration)
	})

	t.Run("negative client capacity", func(t *testing.T) {
		path := writeConfigFile(t, `
limits:
  clients:
    bad-client:
      capacity: -1
      window: 1m
`)
		_, err := Load(path)
		require.ErrorIs(t, err, slidinglog.ErrInvalidConfiguration)
	})
}

func TestRuleValidate(t *testing.T) {
	require.NoError(t, Rule{Capacity: 0, Window: time.Second}.Validate())
	require.NoError(t, Rule{Capacity: 1, Window: time.Millisecond}.Validate())
	require.ErrorIs(t, Rule{Capacity: -1, Window: time.Second}.Validate(), slidinglog.ErrInvalidConfiguration)
	require.ErrorIs(t, Rule{Capacity: 1, Window: 0}.Validate(), slidinglog.ErrInvalidConfiguration)
	require.ErrorIs(t, Rule{Capacity: 1, Window: 500 * time.Microsecond}.Validate(), slidinglog.ErrInvalidConfiguration)
}
