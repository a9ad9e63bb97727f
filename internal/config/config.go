// Package config handles configuration loading for coindeck.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Market  MarketConfig  `mapstructure:"market"  yaml:"market"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Data    DataConfig    `mapstructure:"data"    yaml:"data"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// MarketConfig holds market data source settings.
type MarketConfig struct {
	Currency        string        `mapstructure:"currency"         yaml:"currency"`         // quote currency, e.g. "usd"
	PerPage         int           `mapstructure:"per_page"         yaml:"per_page"`         // coins per market page
	APIBase         string        `mapstructure:"api_base"         yaml:"api_base"`         // override for the CoinGecko base URL
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"` // between refresh cycles
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// DataConfig holds local persistence settings.
type DataConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"` // directory for the settings database
}

// NewsConfig holds news feed settings.
type NewsConfig struct {
	Feeds    []string      `mapstructure:"feeds"     yaml:"feeds"`     // extra RSS feed URLs
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Addr returns the host:port the API server should bind to.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.coindeck/config.yaml (home directory)
//  3. /etc/coindeck/config.yaml (system)
//
// Environment variables override config file values.
// Format: COINDECK_<SECTION>_<KEY>, e.g., COINDECK_API_PORT
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".coindeck"))
	v.AddConfigPath("/etc/coindeck")

	v.SetEnvPrefix("COINDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not required to exist; defaults + env vars suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("COINDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Market defaults
	v.SetDefault("market.currency", "usd")
	v.SetDefault("market.per_page", 50)
	v.SetDefault("market.api_base", "")
	v.SetDefault("market.refresh_interval", "60s")

	// API defaults
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Data defaults
	v.SetDefault("data.dir", filepath.Join(homeDir(), ".coindeck"))

	// News defaults
	v.SetDefault("news.feeds", []string{})
	v.SetDefault("news.cache_ttl", "10m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory, or "." if unavailable.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
