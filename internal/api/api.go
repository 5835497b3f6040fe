// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/depot/internal/config"
	"github.com/JaimeStill/depot/internal/infrastructure"
	"github.com/JaimeStill/depot/pkg/middleware"
	"github.com/JaimeStill/depot/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, runtime, cfg); err != nil {
		return nil, err
	}

	metrics, err := middleware.Metrics(infrastructure.MetricsNamespace, infra.Metrics)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(metrics)
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
