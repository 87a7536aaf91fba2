package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-etl/core/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Remote.PageLimit)
	assert.Equal(t, 3, cfg.Remote.MaxRetries)
	assert.Equal(t, 50, cfg.Sync.BatchSize)
	assert.Equal(t, 30, cfg.Sync.InactiveWindowDays)
	assert.Equal(t, 60, cfg.Sync.OverlapMinutes)
	assert.Equal(t, "etl-snapshots", cfg.Storage.Bucket)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("REMOTE_BASE_URL", "https://example.service-now.com")
	t.Setenv("SYNC_BATCH_SIZE", "25")
	t.Setenv("ARCHIVE_ENABLED", "true")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://example.service-now.com", cfg.Remote.BaseURL)
	assert.Equal(t, 25, cfg.Sync.BatchSize)
	assert.True(t, cfg.Archive.Enabled)
}
