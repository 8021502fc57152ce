// Package config holds the process wide settings of packbox.
//
// Values come from Defaults, optionally overlaid by a TOML file, and
// finally by command line flags (see cmd/packbox).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/andrebq/packbox/auth"
	"github.com/andrebq/packbox/store"
)

type (
	Config struct {
		Bind        string
		DBDriver    string
		DBDSN       string
		SecretEnv   string
		TokenTTL    time.Duration
		CacheTTL    time.Duration
		KDFWorkers  int
		Metrics     bool
		CORSOrigins []string
		LogLevel    string
		LogFormat   string
	}

	fileConfig struct {
		Bind        string   `toml:"bind"`
		DBDriver    string   `toml:"db_driver"`
		DBDSN       string   `toml:"db_dsn"`
		SecretEnv   string   `toml:"secret_env"`
		TokenTTL    string   `toml:"token_ttl"`
		CacheTTL    string   `toml:"cache_ttl"`
		KDFWorkers  int      `toml:"kdf_workers"`
		Metrics     bool     `toml:"metrics"`
		CORSOrigins []string `toml:"cors_origins"`
		LogLevel    string   `toml:"log_level"`
		LogFormat   string   `toml:"log_format"`
	}
)

func Defaults() Config {
	return Config{
		Bind:      ":1080",
		DBDriver:  store.DriverSQLite,
		DBDSN:     "packbox-data/packbox.db",
		SecretEnv: auth.SecretEnvVar,
		TokenTTL:  auth.DefaultTokenTTL,
		CacheTTL:  store.DefaultCacheTTL,
		Metrics:   true,
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// LoadFile overlays the keys defined in the TOML file at path on top of base
func LoadFile(path string, base Config) (Config, error) {
	cfg := base
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("unable to load config %v, cause %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown keys in config %v: %v", path, undecoded)
	}
	if meta.IsDefined("bind") {
		cfg.Bind = strings.TrimSpace(raw.Bind)
	}
	if meta.IsDefined("db_driver") {
		cfg.DBDriver = strings.TrimSpace(raw.DBDriver)
	}
	if meta.IsDefined("db_dsn") {
		cfg.DBDSN = strings.TrimSpace(raw.DBDSN)
	}
	if meta.IsDefined("secret_env") {
		cfg.SecretEnv = strings.TrimSpace(raw.SecretEnv)
	}
	if meta.IsDefined("token_ttl") {
		cfg.TokenTTL, err = time.ParseDuration(strings.TrimSpace(raw.TokenTTL))
		if err != nil {
			return Config{}, fmt.Errorf("parse token_ttl: %w", err)
		}
	}
	if meta.IsDefined("cache_ttl") {
		cfg.CacheTTL, err = time.ParseDuration(strings.TrimSpace(raw.CacheTTL))
		if err != nil {
			return Config{}, fmt.Errorf("parse cache_ttl: %w", err)
		}
	}
	if meta.IsDefined("kdf_workers") {
		cfg.KDFWorkers = raw.KDFWorkers
	}
	if meta.IsDefined("metrics") {
		cfg.Metrics = raw.Metrics
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = raw.CORSOrigins
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.TrimSpace(raw.LogFormat)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Bind == "":
		return fmt.Errorf("config: bind address cannot be empty")
	case c.DBDriver != store.DriverSQLite && c.DBDriver != store.DriverPostgres:
		return store.UnsupportedDriver{Driver: c.DBDriver}
	case c.DBDSN == "":
		return fmt.Errorf("config: db_dsn cannot be empty")
	case c.SecretEnv == "":
		return fmt.Errorf("config: secret_env cannot be empty")
	case c.TokenTTL <= 0:
		return fmt.Errorf("config: token_ttl must be positive, got %v", c.TokenTTL)
	case c.CacheTTL <= 0:
		return fmt.Errorf("config: cache_ttl must be positive, got %v", c.CacheTTL)
	case c.KDFWorkers < 0:
		return fmt.Errorf("config: kdf_workers cannot be negative, got %v", c.KDFWorkers)
	}
	return nil
}
