package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.company-information.service.gov.uk", cfg.Registry.BaseURL)
	assert.Equal(t, 30, cfg.Registry.TimeoutSecs)
	assert.InDelta(t, 2.0, cfg.Registry.RateLimit, 0.001)
	assert.Equal(t, 10, cfg.Registry.RateBurst)
	assert.Equal(t, 100, cfg.Registry.PageSize)
	assert.Equal(t, 730, cfg.Scan.RecentFormationDays)
	assert.Equal(t, 1000, cfg.CSV.RowsPerPage)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chdirTemp(t)

	yaml := `
registry:
  api_key: test-key
  page_size: 50
scan:
  recent_formation_days: 365
csv:
  path: /data/companies.csv
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Registry.APIKey)
	assert.Equal(t, 50, cfg.Registry.PageSize)
	assert.Equal(t, 365, cfg.Scan.RecentFormationDays)
	assert.Equal(t, "/data/companies.csv", cfg.CSV.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Registry.TimeoutSecs)
	assert.Equal(t, 1000, cfg.CSV.RowsPerPage)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chdirTemp(t)

	yaml := `
registry:
  api_key: file-key
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PHOENIX_REGISTRY_API_KEY", "env-key")
	t.Setenv("PHOENIX_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "env-key", cfg.Registry.APIKey)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PHOENIX_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Registry.APIKey = "test-key"
	cfg.Registry.BaseURL = "https://api.company-information.service.gov.uk"
	cfg.Registry.TimeoutSecs = 30
	cfg.Registry.RateLimit = 2.0
	cfg.Registry.PageSize = 100
	cfg.Scan.RecentFormationDays = 730
	cfg.CSV.RowsPerPage = 1000
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateScan_AllPresent(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("scan"))
}

func TestValidateScan_MissingKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Registry.APIKey = ""

	err := cfg.Validate("scan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "registry.api_key is required")
}

func TestValidatePageSizeBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Registry.PageSize = 0
	err := cfg.Validate("batch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "registry.page_size must be between 1 and 100")

	cfg.Registry.PageSize = 101
	err = cfg.Validate("batch")
	assert.Error(t, err)

	cfg.Registry.PageSize = 100
	assert.NoError(t, cfg.Validate("batch"))
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_RowsPerPage(t *testing.T) {
	cfg := validDefaults()
	cfg.CSV.RowsPerPage = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "csv.rows_per_page must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("scan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry.api_key is required")
	assert.Contains(t, err.Error(), "registry.rate_limit must be > 0")
	assert.Contains(t, err.Error(), "scan.recent_formation_days must be > 0")
}
