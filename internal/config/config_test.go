package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// No config.yaml in a fresh temp dir.
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "schema-gap.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 25, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 25*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, 2, cfg.Fetch.Retries)
	assert.Equal(t, int64(4<<20), cfg.Fetch.MaxBodyBytes)
	assert.Equal(t, 4, cfg.Fetch.MaxConcurrent)
	assert.InDelta(t, 2.0, cfg.Fetch.RatePerHost, 0.001)
	assert.Equal(t, time.Hour, cfg.Fetch.CacheTTL())
	assert.False(t, cfg.Fetch.RenderJS)
	assert.Contains(t, cfg.Fetch.AcceptLanguage, "fr-FR")
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/gap
log:
  level: debug
  format: console
server:
  port: 9090
fetch:
  max_concurrent: 8
  render_js: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/gap", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Fetch.MaxConcurrent)
	assert.True(t, cfg.Fetch.RenderJS)
	// Defaults still apply for unset values
	assert.Equal(t, 25, cfg.Fetch.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SCHEMAGAP_STORE_DRIVER", "none")
	t.Setenv("SCHEMAGAP_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("SCHEMAGAP_SERVER_PORT", "3000")
	t.Setenv("SCHEMAGAP_FETCH_RETRIES", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Fetch.Retries)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
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
	cfg.Store.Driver = DriverSQLite
	cfg.Store.DatabaseURL = "schema-gap.db"
	cfg.Fetch.MaxConcurrent = 4
	cfg.Fetch.TimeoutSecs = 25
	cfg.Fetch.Retries = 2
	cfg.Fetch.RatePerHost = 2
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_DefaultsPass(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"compare", "serve", "runs", "cache"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mysql"`)
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidate_NoneDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = DriverNone
	cfg.Store.DatabaseURL = ""

	assert.NoError(t, cfg.Validate("compare"))

	err := cfg.Validate("runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be none")
}

func TestValidate_ConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Fetch.MaxConcurrent = 0
	err := cfg.Validate("compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.max_concurrent must be between 1 and 64")

	cfg.Fetch.MaxConcurrent = 65
	assert.Error(t, cfg.Validate("compare"))

	cfg.Fetch.MaxConcurrent = 64
	assert.NoError(t, cfg.Validate("compare"))
}

func TestValidate_FetchFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Fetch.TimeoutSecs = 0
	cfg.Fetch.Retries = -1
	cfg.Fetch.RatePerHost = -1

	err := cfg.Validate("compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.timeout_secs must be > 0")
	assert.Contains(t, err.Error(), "fetch.retries must be >= 0")
	assert.Contains(t, err.Error(), "fetch.rate_per_host must be >= 0")
}

func TestValidate_ServePort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	assert.NoError(t, cfg.Validate("compare"), "port only matters for serve")

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidate_UnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
