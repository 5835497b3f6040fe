package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the local staging tree parameters.
type Config struct {
	SystemName string `toml:"system_name"`
	BaseDir    string `toml:"base_dir"`
	SpoolDir   string `toml:"spool_dir"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	SystemName string
	BaseDir    string
	SpoolDir   string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.resolveSpool()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.SystemName != "" {
		c.SystemName = overlay.SystemName
	}
	if overlay.BaseDir != "" {
		c.BaseDir = overlay.BaseDir
	}
	if overlay.SpoolDir != "" {
		c.SpoolDir = overlay.SpoolDir
	}
}

func (c *Config) loadDefaults() {
	if c.SystemName == "" {
		c.SystemName = "defaults"
	}
	if c.BaseDir == "" {
		c.BaseDir = "/tmp/upload-file"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.SystemName != "" {
		if v := os.Getenv(env.SystemName); v != "" {
			c.SystemName = v
		}
	}
	if env.BaseDir != "" {
		if v := os.Getenv(env.BaseDir); v != "" {
			c.BaseDir = v
		}
	}
	if env.SpoolDir != "" {
		if v := os.Getenv(env.SpoolDir); v != "" {
			c.SpoolDir = v
		}
	}
}

// the spool lives under the base dir by default so moves stay on one device
func (c *Config) resolveSpool() {
	if c.SpoolDir == "" {
		c.SpoolDir = filepath.Join(c.BaseDir, ".spool")
	}
}

func (c *Config) validate() error {
	if !filepath.IsAbs(c.BaseDir) {
		return fmt.Errorf("base_dir must be absolute: %s", c.BaseDir)
	}
	if !filepath.IsAbs(c.SpoolDir) {
		return fmt.Errorf("spool_dir must be absolute: %s", c.SpoolDir)
	}
	if c.SystemName == "." || c.SystemName == ".." || strings.ContainsAny(c.SystemName, `/\`) {
		return fmt.Errorf("invalid system_name: %q", c.SystemName)
	}
	return nil
}
