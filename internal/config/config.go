// Package config loads application configuration and initialises logging.
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
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Scan     ScanConfig     `yaml:"scan" mapstructure:"scan"`
	CSV      CSVConfig      `yaml:"csv" mapstructure:"csv"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RegistryConfig holds Companies House API settings.
type RegistryConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	PageSize    int     `yaml:"page_size" mapstructure:"page_size"`
}

// ScanConfig configures scan behavior.
type ScanConfig struct {
	RecentFormationDays int `yaml:"recent_formation_days" mapstructure:"recent_formation_days"`
}

// CSVConfig configures the embedded CSV viewer.
type CSVConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`
	RowsPerPage int    `yaml:"rows_per_page" mapstructure:"rows_per_page"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("PHOENIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. api_key and csv.path default empty so the env vars bind
	// without a config file.
	v.SetDefault("registry.api_key", "")
	v.SetDefault("registry.base_url", "https://api.company-information.service.gov.uk")
	v.SetDefault("registry.timeout_secs", 30)
	v.SetDefault("registry.rate_limit", 2.0) // 600 requests per 5 minutes
	v.SetDefault("registry.rate_burst", 10)
	v.SetDefault("registry.page_size", 100)
	v.SetDefault("scan.recent_formation_days", 730)
	v.SetDefault("csv.path", "")
	v.SetDefault("csv.rows_per_page", 1000)
	v.SetDefault("server.port", 8080)
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

// Validate checks the fields required for the given run mode. Modes are the
// command names: scan, batch, serve.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	switch mode {
	case "scan", "batch", "serve":
		check(c.Registry.APIKey != "", "registry.api_key is required")
		check(c.Registry.BaseURL != "", "registry.base_url is required")
		check(c.Registry.TimeoutSecs > 0, "registry.timeout_secs must be > 0")
		check(c.Registry.RateLimit > 0, "registry.rate_limit must be > 0")
		check(c.Registry.PageSize >= 1 && c.Registry.PageSize <= 100, "registry.page_size must be between 1 and 100")
		check(c.Scan.RecentFormationDays > 0, "scan.recent_formation_days must be > 0")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode == "serve" {
		check(c.Server.Port > 0, "server.port must be > 0")
		check(c.CSV.RowsPerPage > 0, "csv.rows_per_page must be > 0")
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
