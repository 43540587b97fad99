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
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 25*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, time.Second, cfg.SignOffPollInterval)
	assert.Equal(t, 60, cfg.SignOffTimeoutMin)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 4, cfg.MaxParallel)
	assert.Equal(t, 0.5, cfg.EscalationThreshold)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forge.yaml")
	content := `
log_level: debug
log_format: text
max_parallel: 8
escalation_threshold: 0.7
model:
  provider: anthropic
  name: claude-sonnet-4-20250514
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 8, cfg.MaxParallel)
	assert.Equal(t, 0.7, cfg.EscalationThreshold)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	// Unset values keep their defaults.
	assert.Equal(t, 5, cfg.MaxIterations)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FORGE_LOG_LEVEL", "warn")
	t.Setenv("FORGE_MAX_ITERATIONS", "9")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 9, cfg.MaxIterations)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("escalation_threshold: 1.5\n"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
