// Package config loads depot's TOML configuration, applies the environment
// overlay file and DEPOT_* variable overrides, and finalizes every section.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/depot/pkg/database"
	"github.com/JaimeStill/depot/pkg/staging"
	"github.com/JaimeStill/depot/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvDepotEnv             = "DEPOT_ENV"
	EnvDepotShutdownTimeout = "DEPOT_SHUTDOWN_TIMEOUT"
	EnvDepotVersion         = "DEPOT_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "DEPOT_DB_URL",
	Host:            "DEPOT_DB_HOST",
	Port:            "DEPOT_DB_PORT",
	Name:            "DEPOT_DB_NAME",
	User:            "DEPOT_DB_USER",
	Password:        "DEPOT_DB_PASSWORD",
	SSLMode:         "DEPOT_DB_SSL_MODE",
	MaxOpenConns:    "DEPOT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "DEPOT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DEPOT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "DEPOT_DB_CONN_TIMEOUT",
}

var stagingEnv = &staging.Env{
	SystemName: "DEPOT_STAGING_SYSTEM_NAME",
	BaseDir:    "DEPOT_STAGING_BASE_DIR",
	SpoolDir:   "DEPOT_STAGING_SPOOL_DIR",
}

var storageEnv = &storage.Env{
	Provider:         "DEPOT_STORAGE_PROVIDER",
	Bucket:           "DEPOT_STORAGE_BUCKET",
	Region:           "DEPOT_STORAGE_REGION",
	CredentialsFile:  "DEPOT_STORAGE_CREDENTIALS_FILE",
	Profile:          "DEPOT_STORAGE_PROFILE",
	Endpoint:         "DEPOT_STORAGE_ENDPOINT",
	AccessKey:        "DEPOT_STORAGE_ACCESS_KEY",
	SecretKey:        "DEPOT_STORAGE_SECRET_KEY",
	UseSSL:           "DEPOT_STORAGE_USE_SSL",
	PublicBase:       "DEPOT_STORAGE_PUBLIC_BASE",
	ConnectionString: "DEPOT_STORAGE_CONNECTION_STRING",
	AccountURL:       "DEPOT_STORAGE_ACCOUNT_URL",
}

// Config is the root configuration for the depot service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Staging         staging.Config  `toml:"staging"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the DEPOT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDepotEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads config.toml from the working directory if present, merges the
// config.<DEPOT_ENV>.toml overlay if present, and finalizes all values.
// Without either file, defaults and environment variables supply everything.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Staging.Merge(&overlay.Staging)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Staging.Finalize(stagingEnv); err != nil {
		return fmt.Errorf("staging: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvDepotShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvDepotVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvDepotEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
