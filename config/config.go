// Package config loads the atr settings from an optional YAML file, ATR_*
// environment variables and a .env file.
//
// Keys are nested, the environment variable of "rates.redis_addr" is
// ATR_RATES_REDIS_ADDR:
//
//	store:
//	  driver: file          # file, memory or postgres
//	  path: assets.jsonl
//	  dsn: postgres://localhost/atr
//	rates:
//	  url: https://api.exchangerate-api.com/v4/latest/USD
//	  path: $.rates
//	  cache_dir: /tmp
//	  redis_addr: localhost:6379
//	  redis_ttl: 1h
//	display_currency: EUR
//	log_level: info
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of all settings.
const envPrefix = "ATR"

// Store drivers.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Drivers lists the supported store drivers.
var Drivers = []string{DriverFile, DriverMemory, DriverPostgres}

// Config holds every atr setting.
type Config struct {
	Store           Store  `mapstructure:"store"`
	Rates           Rates  `mapstructure:"rates"`
	DisplayCurrency string `mapstructure:"display_currency"`
	LogLevel        string `mapstructure:"log_level"`
}

// Store selects and configures the asset store.
type Store struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// Rates configures the exchange rate source.
type Rates struct {
	URL       string        `mapstructure:"url"`
	Path      string        `mapstructure:"path"`
	CacheDir  string        `mapstructure:"cache_dir"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisTTL  time.Duration `mapstructure:"redis_ttl"`
}

// DefaultFile returns the default configuration file, $HOME/.atr.yaml.
func DefaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".atr.yaml")
}

// newViper builds a viper instance with defaults for every key, so that
// AutomaticEnv can bind all of them.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.path", "assets.jsonl")
	v.SetDefault("store.dsn", "")
	v.SetDefault("rates.url", "https://api.exchangerate-api.com/v4/latest/USD")
	v.SetDefault("rates.path", "$.rates")
	v.SetDefault("rates.cache_dir", os.TempDir())
	v.SetDefault("rates.redis_addr", "")
	v.SetDefault("rates.redis_ttl", time.Hour)
	v.SetDefault("display_currency", "USD")
	v.SetDefault("log_level", "info")
	return v
}

// Load loads the .env file of the working directory if any, then reads file
// if it exists and applies the ATR_* environment variables.
// An empty file only uses the environment.
//
// The result is not validated: callers apply their own overrides, then call
// Validate.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	v := newViper()
	if file != "" {
		v.SetConfigFile(file)
		err := v.ReadInConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	cfg.DisplayCurrency = strings.ToUpper(strings.TrimSpace(cfg.DisplayCurrency))
	return cfg, nil
}

// Validate checks the settings that don't depend on external resources.
func (c *Config) Validate() error {
	switch {
	case !slices.Contains(Drivers, c.Store.Driver):
		return fmt.Errorf("store.driver: unknown driver %q, want one of %s", c.Store.Driver, strings.Join(Drivers, ", "))
	case c.Store.Driver == DriverFile && c.Store.Path == "":
		return errors.New("store.path: required by the file driver")
	case c.Store.Driver == DriverPostgres && c.Store.DSN == "":
		return errors.New("store.dsn: required by the postgres driver")
	case c.Rates.RedisTTL < 0:
		return fmt.Errorf("rates.redis_ttl: must not be negative, got %v", c.Rates.RedisTTL)
	case c.DisplayCurrency == "":
		return errors.New("display_currency: required")
	}
	return nil
}
