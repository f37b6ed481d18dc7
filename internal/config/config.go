// Package config provides configuration management for the trading dashboard.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "tradedesk/internal/errors"
)

// FileName is the base name of the configuration file.
const FileName = "config"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Quote     QuoteConfig     `mapstructure:"quote"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	UI        UIConfig        `mapstructure:"ui"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// StoreConfig selects where trades and the watchlist are kept.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite", "memory"
	Path   string `mapstructure:"path"`
}

// QuoteConfig configures the market quote lookup.
type QuoteConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// AnalyticsConfig holds performance analytics settings.
type AnalyticsConfig struct {
	HeatmapMonth string `mapstructure:"heatmap_month"` // YYYY-MM
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Listen  string `mapstructure:"listen"`
	BaseURL string `mapstructure:"base_url"` // prefix for share links
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradedesk"
	}
	return filepath.Join(home, ".config", "tradedesk")
}

// Path returns the configuration file path inside configDir.
func Path(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, FileName+".toml")
}

// Default returns the built-in configuration rooted at configDir.
func Default(configDir string) *Config {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	v := viper.New()
	setDefaults(v, configDir)

	cfg := &Config{}
	// defaults only; cannot fail
	_ = v.Unmarshal(cfg)
	cfg.Dir = configDir
	return cfg
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.path", filepath.Join(configDir, "tradedesk.db"))

	v.SetDefault("quote.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("quote.timeout", "10s")
	v.SetDefault("quote.max_attempts", 1)
	v.SetDefault("quote.user_agent", "")

	v.SetDefault("analytics.heatmap_month", "2025-06")

	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "tradedesk.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is replaced by a commented template and defaults are used.
// A .env file in the working directory or configDir is loaded first.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env is optional
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	cfg, err := loadConfigFile(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading %s.toml: %w", FileName, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Dir = configDir
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEDESK_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TRADEDESK_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("TRADEDESK_QUOTE_URL"); v != "" {
		cfg.Quote.BaseURL = v
	}
	if v := os.Getenv("TRADEDESK_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("TRADEDESK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return invalid("store.path must be set for the sqlite driver")
		}
	case DriverMemory:
	default:
		return invalid("invalid store driver: %s (must be 'sqlite' or 'memory')", c.Store.Driver)
	}

	u, err := url.Parse(c.Quote.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("quote.base_url must be an http(s) URL, got %q", c.Quote.BaseURL)
	}
	if c.Quote.Timeout <= 0 {
		return invalid("quote.timeout must be positive")
	}
	if c.Quote.MaxAttempts < 1 {
		return invalid("quote.max_attempts must be at least 1")
	}

	if _, err := time.Parse("2006-01", c.Analytics.HeatmapMonth); err != nil {
		return invalid("analytics.heatmap_month must be YYYY-MM, got %q", c.Analytics.HeatmapMonth)
	}

	if strings.TrimSpace(c.Server.Listen) == "" {
		return invalid("server.listen must be set")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAge < 0 {
		return invalid("logging rotation limits must be non-negative")
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrConfigInvalid, fmt.Sprintf(format, args...))
}

// InMemory reports whether the configured store is not persisted.
func (c *Config) InMemory() bool {
	return c.Store.Driver == DriverMemory
}
