package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/depot/pkg/formatting"
	"github.com/JaimeStill/depot/pkg/middleware"
	"github.com/JaimeStill/depot/pkg/openapi"
	"github.com/JaimeStill/depot/pkg/pagination"
)

const (
	EnvAPIBasePath      = "DEPOT_API_BASE_PATH"
	EnvAPIMaxUploadSize = "DEPOT_API_MAX_UPLOAD_SIZE"
	EnvAPIMetricsPath   = "DEPOT_API_METRICS_PATH"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "DEPOT_CORS_ENABLED",
	Origins:          "DEPOT_CORS_ORIGINS",
	AllowedMethods:   "DEPOT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DEPOT_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DEPOT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DEPOT_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "DEPOT_OPENAPI_TITLE",
	Description: "DEPOT_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "DEPOT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "DEPOT_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limits, CORS, OpenAPI, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	MetricsPath   string                `toml:"metrics_path"`
	CORS          middleware.CORSConfig `toml:"cors"`
	OpenAPI       openapi.Config        `toml:"openapi"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. Finalize guarantees it parses.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.MetricsPath != "" {
		c.MetricsPath = overlay.MetricsPath
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIMetricsPath); v != "" {
		c.MetricsPath = v
	}
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive: %s", c.MaxUploadSize)
	}
	return nil
}
