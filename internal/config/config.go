// Package config loads application configuration from config files and
// the environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Census CensusConfig `yaml:"census" mapstructure:"census"`
	BEA    BEAConfig    `yaml:"bea" mapstructure:"bea"`
	Maps   MapsConfig   `yaml:"maps" mapstructure:"maps"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CacheConfig bounds how long stored syncs stay usable.
type CacheConfig struct {
	// MaxAgeHours expires stored boundary and dataset rows. Zero keeps
	// them until an explicit refresh.
	MaxAgeHours int `yaml:"max_age_hours" mapstructure:"max_age_hours"`
}

// FetchConfig configures the download layer.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// CensusConfig holds Census Bureau API settings.
type CensusConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// BEAConfig holds Bureau of Economic Analysis settings.
type BEAConfig struct {
	// WorkbookURL overrides the pinned GDP-by-state release workbook.
	WorkbookURL string `yaml:"workbook_url" mapstructure:"workbook_url"`
}

// MapsConfig points at user-defined map definitions.
type MapsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// RenderConfig sets render command defaults.
type RenderConfig struct {
	OutDir string `yaml:"out_dir" mapstructure:"out_dir"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         int `yaml:"port" mapstructure:"port"`
	CacheSize    int `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLSecs int `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
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
	v.AddConfigPath("$HOME/.atlas")

	// Environment
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a meaningful default still get an empty one
	// so environment-only overrides reach Unmarshal.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "atlas.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("cache.max_age_hours", 0)
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.temp_dir", "")
	v.SetDefault("census.api_key", "")
	v.SetDefault("bea.workbook_url", "")
	v.SetDefault("maps.file", "")
	v.SetDefault("render.out_dir", "maps")
	v.SetDefault("render.format", "html")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_size", 64)
	v.SetDefault("server.cache_ttl_secs", 300)
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

// renderFormats are the artifact encodings the render command accepts.
var renderFormats = map[string]bool{
	"html":    true,
	"svg":     true,
	"geojson": true,
	"all":     true,
}

// Validate checks the fields the given mode depends on. Modes are
// "render", "fetch", and "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Cache.MaxAgeHours < 0 {
		problems = append(problems, "cache.max_age_hours must be >= 0")
	}
	if c.Fetch.TimeoutSecs <= 0 {
		problems = append(problems, "fetch.timeout_secs must be > 0")
	}
	if c.Fetch.MaxRetries < 0 {
		problems = append(problems, "fetch.max_retries must be >= 0")
	}

	switch mode {
	case "render":
		if !renderFormats[c.Render.Format] {
			problems = append(problems, "render.format must be html, svg, geojson, or all")
		}
	case "fetch":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.CacheSize <= 0 {
			problems = append(problems, "server.cache_size must be > 0")
		}
		if c.Server.CacheTTLSecs < 0 {
			problems = append(problems, "server.cache_ttl_secs must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
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
