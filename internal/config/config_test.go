package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/provider"
	"invoicedesk/internal/services"
)

func TestLoadDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), cfg.DatabasePath)
	assert.Equal(t, filepath.Join(dir, LocalStorageFile), cfg.LocalStoragePath)
	assert.Equal(t, provider.DefaultReadyTimeout, cfg.Bridge.ReadyTimeout)
	assert.Equal(t, services.DefaultCacheTTL, cfg.Cache.TTL)
	assert.True(t, cfg.LocalStorage.Watch)
	assert.NotNil(t, cfg.Logger)
}

func TestLoadAppliesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
log_level: debug
bridge:
  ready_timeout: 2s
  ready_interval: 50ms
cache:
  ttl: 500ms
local_storage:
  watch: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Bridge.ReadyTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.HostOptions().ReadyInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Cache.TTL)
	assert.False(t, cfg.LocalStorage.Watch)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), cfg.DatabasePath)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("log_level: loud\n"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.LogLevel)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("bridge: [\n"), 0644))
	_, err = Load(dir)
	assert.Error(t, err)
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv(DataDirEnv, "/tmp/invoicedesk-test")
	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/invoicedesk-test", dir)
}
