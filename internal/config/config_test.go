package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chtemp moves the test into an empty directory so no stray config.yaml
// is picked up.
func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "atlas.db", cfg.Store.Path)
	assert.Equal(t, 0, cfg.Cache.MaxAgeHours)
	assert.Equal(t, 60, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, "maps", cfg.Render.OutDir)
	assert.Equal(t, "html", cfg.Render.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 64, cfg.Server.CacheSize)
	assert.Equal(t, 300, cfg.Server.CacheTTLSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Census.APIKey)
	assert.Empty(t, cfg.BEA.WorkbookURL)
	assert.Empty(t, cfg.Maps.File)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/atlas
cache:
  max_age_hours: 168
log:
  level: debug
  format: console
server:
  port: 9090
maps:
  file: custom-maps.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/atlas", cfg.Store.DatabaseURL)
	assert.Equal(t, 168, cfg.Cache.MaxAgeHours)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "custom-maps.yaml", cfg.Maps.File)
	// Defaults still apply for unset values
	assert.Equal(t, 60, cfg.Fetch.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("ATLAS_STORE_DRIVER", "postgres")
	t.Setenv("ATLAS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("ATLAS_SERVER_PORT", "3000")
	t.Setenv("ATLAS_CENSUS_API_KEY", "abc123")
	t.Setenv("ATLAS_BEA_WORKBOOK_URL", "https://apps.bea.gov/custom.xlsx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "abc123", cfg.Census.APIKey)
	assert.Equal(t, "https://apps.bea.gov/custom.xlsx", cfg.BEA.WorkbookURL)
}

// validDefaults returns a Config with all defaults populated for
// validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "atlas.db"
	cfg.Fetch.TimeoutSecs = 60
	cfg.Fetch.MaxRetries = 3
	cfg.Render.Format = "html"
	cfg.Server.Port = 8080
	cfg.Server.CacheSize = 64
	cfg.Server.CacheTTLSecs = 300
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("render"))
	assert.NoError(t, cfg.Validate("fetch"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidate_SQLiteRequiresPath(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Path = ""

	err := cfg.Validate("render")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path is required")
}

func TestValidate_PostgresRequiresURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("fetch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/atlas"
	assert.NoError(t, cfg.Validate("fetch"))
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "oracle"

	err := cfg.Validate("render")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidate_RenderFormat(t *testing.T) {
	cfg := validDefaults()

	for _, format := range []string{"html", "svg", "geojson", "all"} {
		cfg.Render.Format = format
		assert.NoError(t, cfg.Validate("render"), format)
	}

	cfg.Render.Format = "pdf"
	err := cfg.Validate("render")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "render.format")
}

func TestValidate_ServePort(t *testing.T) {
	cfg := validDefaults()

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate("serve"))

	cfg.Server.Port = 8080
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidate_FetchBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Fetch.TimeoutSecs = 0
	err := cfg.Validate("fetch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.timeout_secs")

	cfg.Fetch.TimeoutSecs = 60
	cfg.Fetch.MaxRetries = -1
	err = cfg.Validate("fetch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.max_retries")
}

func TestValidate_NegativeCacheAge(t *testing.T) {
	cfg := validDefaults()
	cfg.Cache.MaxAgeHours = -1

	err := cfg.Validate("render")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cache.max_age_hours")
}

func TestValidate_UnknownMode(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("deploy")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
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
