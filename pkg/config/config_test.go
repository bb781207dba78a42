package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/pkg/observability"
	"github.com/wardenhq/warden/pkg/store"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "redis://localhost:6379", cfg.Store.URL)
	assert.Equal(t, 0, cfg.Store.DB)
	assert.Empty(t, cfg.Store.KeyPrefix)
	assert.Equal(t, store.DefaultOpTimeout, cfg.Store.OpTimeout)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("WARDEN_HOST", "127.0.0.1")
	t.Setenv("WARDEN_PORT", "9000")
	t.Setenv("WARDEN_REDIS_URL", "redis://redis.internal:6380")
	t.Setenv("WARDEN_REDIS_DB", "3")
	t.Setenv("WARDEN_REDIS_OP_TIMEOUT", "500ms")
	t.Setenv("WARDEN_LOG_LEVEL", "debug")
	t.Setenv("WARDEN_METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "redis://redis.internal:6380", cfg.Store.URL)
	assert.Equal(t, 3, cfg.Store.DB)
	assert.Equal(t, 500*time.Millisecond, cfg.Store.OpTimeout)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestTestModePrefixesKeys(t *testing.T) {
	t.Setenv("WARDEN_TEST_MODE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, store.TestKeyPrefix, cfg.Store.KeyPrefix)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "server port is required",
		},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.Server.Port = "http" },
			wantErr: "invalid server port",
		},
		{
			name:    "missing redis URL",
			mutate:  func(c *Config) { c.Store.URL = "" },
			wantErr: "redis URL is required",
		},
		{
			name:    "bad redis scheme",
			mutate:  func(c *Config) { c.Store.URL = "http://localhost:6379" },
			wantErr: "invalid redis URL",
		},
		{
			name:    "negative redis DB",
			mutate:  func(c *Config) { c.Store.DB = -1 },
			wantErr: "redis DB must be non-negative",
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr: "shutdown timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
