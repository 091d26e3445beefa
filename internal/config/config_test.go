package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfigPath, EnvAddr, EnvDataDir, EnvLogLevel, EnvTRMBaseURL, EnvTRMTimeout, EnvAlignOverrides} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, logger.InfoLevel, cfg.Level())
	assert.Equal(t, "https://www.datos.gov.co", cfg.TRM.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.TRM.Timeout)
	assert.Equal(t, 3, cfg.TRM.MaxRetries)
	assert.False(t, cfg.Advisor.AlignOverrides)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, ":9090")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvTRMTimeout, "3s")
	t.Setenv(EnvAlignOverrides, "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, logger.DebugLevel, cfg.Level())
	assert.Equal(t, 3*time.Second, cfg.TRM.Timeout)
	assert.True(t, cfg.Advisor.AlignOverrides)
}

func TestLoadYAMLOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, ":9090")

	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":7070"
data_dir: /var/lib/tracker
trm:
  base_url: http://localhost:9999
  timeout: 2s
  max_retries: 5
advisor:
  align_overrides: true
`), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "/var/lib/tracker", cfg.DataDir)
	assert.Equal(t, "http://localhost:9999", cfg.TRM.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.TRM.Timeout)
	assert.Equal(t, 5, cfg.TRM.MaxRetries)
	assert.Equal(t, time.Second, cfg.TRM.Backoff)
	assert.True(t, cfg.Advisor.AlignOverrides)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv(EnvLogLevel, "chatty")
	t.Setenv(EnvTRMBaseURL, "ftp://example.com")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
	assert.Contains(t, err.Error(), "trm.base_url")
}
