// Package config loads schema-gap settings from config.yaml and SCHEMAGAP_*
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries        int     `yaml:"retries" mapstructure:"retries"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	AcceptLanguage string  `yaml:"accept_language" mapstructure:"accept_language"`
	MaxBodyBytes   int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxConcurrent  int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RatePerHost    float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
	CacheTTLMins   int     `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	RenderJS       bool    `yaml:"render_js" mapstructure:"render_js"`
	BrowserURL     string  `yaml:"browser_url" mapstructure:"browser_url"`
	// FirecrawlKey enables the hosted Firecrawl fallback.
	FirecrawlKey   string  `yaml:"firecrawl_key" mapstructure:"firecrawl_key"`
}

// Timeout returns the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// CacheTTL returns how long fetched pages stay cached. Zero disables caching.
func (f FetchConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLMins) * time.Minute
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCHEMAGAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.database_url", "schema-gap.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("fetch.timeout_secs", 25)
	v.SetDefault("fetch.retries", 2)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.accept_language", "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7")
	v.SetDefault("fetch.max_body_bytes", 4<<20)
	v.SetDefault("fetch.max_concurrent", 4)
	v.SetDefault("fetch.rate_per_host", 2.0)
	v.SetDefault("fetch.cache_ttl_mins", 60)
	v.SetDefault("fetch.render_js", false)
	v.SetDefault("fetch.browser_url", "")
	v.SetDefault("fetch.firecrawl_key", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Mode is one of "compare",
// "serve", "runs" or "cache".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case DriverNone:
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of sqlite, postgres, none", c.Store.Driver))
	}

	switch mode {
	case "compare", "serve":
		if c.Fetch.MaxConcurrent < 1 || c.Fetch.MaxConcurrent > 64 {
			problems = append(problems, "fetch.max_concurrent must be between 1 and 64")
		}
		if c.Fetch.TimeoutSecs <= 0 {
			problems = append(problems, "fetch.timeout_secs must be > 0")
		}
		if c.Fetch.Retries < 0 {
			problems = append(problems, "fetch.retries must be >= 0")
		}
		if c.Fetch.RatePerHost < 0 {
			problems = append(problems, "fetch.rate_per_host must be >= 0")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "runs", "cache":
		if c.Store.Driver == DriverNone {
			problems = append(problems, "store.driver must not be none for "+mode)
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
