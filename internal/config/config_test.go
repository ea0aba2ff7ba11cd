package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.GPUTimeout)
	assert.Equal(t, "", cfg.GPUToolPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LowerPriority)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := `
poll_interval: 1s
gpu_timeout: 500ms
gpu_tool: /opt/tools/nvidia-smi
log_level: debug
lower_priority: false
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, err := loadFrom(file)
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.GPUTimeout)
	assert.Equal(t, "/opt/tools/nvidia-smi", cfg.GPUToolPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.LowerPriority)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("poll_interval: 1s\n"), 0o644))

	t.Setenv("STATPANE_POLL_INTERVAL", "100ms")

	cfg, err := loadFrom(file)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("STATPANE_POLL_INTERVAL", "soon")

	cfg, err := loadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
}

func TestMalformedFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("poll_interval: [broken\n"), 0o644))

	_, err := loadFrom(file)
	assert.Error(t, err)
}

func TestUnsupportedLogLevel(t *testing.T) {
	t.Setenv("STATPANE_LOG_LEVEL", "chatty")

	_, err := loadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBoolEnvParsing(t *testing.T) {
	t.Setenv("STATPANE_LOW_PRIORITY", "off")

	cfg, err := loadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.LowerPriority)
}
