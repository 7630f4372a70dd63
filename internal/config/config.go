// Package config loads application configuration from an optional YAML
// file with environment-variable overrides. Environment always wins so
// deployments can patch a checked-in file without editing it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// DefaultCurrency fills offers whose provider omitted a currency.
	DefaultCurrency string `yaml:"default_currency"`

	// CloseTolerance is the mileage shortfall still classified as close
	// to affordable. Zero keeps the built-in default.
	CloseTolerance int `yaml:"close_tolerance"`

	// PairingPoolLimit caps each leg pool before round-trip pairing.
	PairingPoolLimit int `yaml:"pairing_pool_limit"`

	// SearchTimeout bounds one provider fan-out.
	SearchTimeout time.Duration `yaml:"search_timeout"`

	// MaxRetries is the per-provider retry count within a fan-out.
	MaxRetries int `yaml:"max_retries"`

	// DatabaseURL is the Postgres connection string. When empty, balances
	// are kept in memory and lost on restart.
	DatabaseURL string `yaml:"database_url"`

	CacheEnabled  bool          `yaml:"cache_enabled"`
	RedisHost     string        `yaml:"redis_host"`
	RedisPort     string        `yaml:"redis_port"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`

	Amadeus   ProviderConfig `yaml:"amadeus"`
	Duffel    ProviderConfig `yaml:"duffel"`
	SeatsAero ProviderConfig `yaml:"seatsaero"`
}

// ProviderConfig is one upstream's credentials and endpoint. A provider
// without an APIKey is not registered.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE if set, then environment variables.
func Load() (Config, error) {
	cfg := Config{
		Port:             "8080",
		LogLevel:         "info",
		DefaultCurrency:  "USD",
		PairingPoolLimit: 25,
		SearchTimeout:    10 * time.Second,
		MaxRetries:       3,
		CacheEnabled:     false,
		RedisHost:        "localhost",
		RedisPort:        "6379",
		RedisTTL:         5 * time.Minute,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.DefaultCurrency, "DEFAULT_CURRENCY")
	setInt(&cfg.CloseTolerance, "CLOSE_TOLERANCE")
	setInt(&cfg.PairingPoolLimit, "PAIRING_POOL_LIMIT")
	setDuration(&cfg.SearchTimeout, "SEARCH_TIMEOUT")
	setInt(&cfg.MaxRetries, "MAX_RETRIES")
	setString(&cfg.DatabaseURL, "DATABASE_URL")

	setBool(&cfg.CacheEnabled, "CACHE_ENABLED")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.RedisDB, "REDIS_DB")
	setDuration(&cfg.RedisTTL, "REDIS_TTL")

	setString(&cfg.Amadeus.APIKey, "AMADEUS_API_KEY")
	setString(&cfg.Amadeus.BaseURL, "AMADEUS_BASE_URL")
	setString(&cfg.Duffel.APIKey, "DUFFEL_ACCESS_TOKEN")
	setString(&cfg.Duffel.BaseURL, "DUFFEL_BASE_URL")
	setString(&cfg.SeatsAero.APIKey, "SEATSAERO_API_KEY")
	setString(&cfg.SeatsAero.BaseURL, "SEATSAERO_BASE_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = cast.ToInt(v)
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = cast.ToBool(v)
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
