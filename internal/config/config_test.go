// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 10000, cfg.Store.Capacity)
	assert.Equal(t, 24*time.Hour, cfg.Learning.LearningWindow)
	assert.Equal(t, 0.7, cfg.Learning.MinPatternConfidence)
	assert.Equal(t, 0.6, cfg.Learning.AdmissionThreshold)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
store:
  capacity: 500
learning:
  learning_window: 12h
  min_pattern_confidence: 0.8
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Store.Capacity)
	assert.Equal(t, 12*time.Hour, cfg.Learning.LearningWindow)
	assert.Equal(t, 0.8, cfg.Learning.MinPatternConfidence)

	// Untouched fields keep their defaults.
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 0.6, cfg.Learning.AdmissionThreshold)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADAPTCACHE_PORT", "7070")
	t.Setenv("ADAPTCACHE_LOG_LEVEL", "debug")
	t.Setenv("ADAPTCACHE_STORE_CAPACITY", "2500")
	t.Setenv("ADAPTCACHE_LEARNING_WINDOW", "6h")
	t.Setenv("ADAPTCACHE_ANALYSIS_INTERVAL", "15m")
	t.Setenv("ADAPTCACHE_MIN_CONFIDENCE", "0.9")
	t.Setenv("ADAPTCACHE_ADMISSION_THRESHOLD", "0.5")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 2500, cfg.Store.Capacity)
	assert.Equal(t, 6*time.Hour, cfg.Learning.LearningWindow)
	assert.Equal(t, 15*time.Minute, cfg.Learning.AnalysisInterval)
	assert.Equal(t, 0.9, cfg.Learning.MinPatternConfidence)
	assert.Equal(t, 0.5, cfg.Learning.AdmissionThreshold)
}

func TestLoadFromEnv_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("ADAPTCACHE_PORT", "not-a-port")
	t.Setenv("ADAPTCACHE_LEARNING_WINDOW", "soon")
	t.Setenv("ADAPTCACHE_MIN_CONFIDENCE", "very")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Learning.LearningWindow)
	assert.Equal(t, 0.7, cfg.Learning.MinPatternConfidence)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("ADAPTCACHE_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnvOrDefault("ADAPTCACHE_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnvOrDefault("ADAPTCACHE_UNSET_KEY", "fallback"))
}
