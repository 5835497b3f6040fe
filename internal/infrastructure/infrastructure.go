// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies every domain system draws on: logging,
// lifecycle, the ledger database, the object store, the staging tree, and
// the metrics registry.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/depot/internal/config"
	"github.com/JaimeStill/depot/pkg/database"
	"github.com/JaimeStill/depot/pkg/lifecycle"
	"github.com/JaimeStill/depot/pkg/staging"
	"github.com/JaimeStill/depot/pkg/storage"
)

// MetricsNamespace prefixes every depot metric.
const MetricsNamespace = "depot"

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Spool     *staging.Spool
	Persister *staging.Persister
	Metrics   *prometheus.Registry
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	spool := staging.NewSpool(cfg.Staging.SpoolDir, logger)
	persister := staging.NewPersister(&cfg.Staging, spool, staging.DefaultSource(), logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Spool:     spool,
		Persister: persister,
		Metrics:   reg,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Spool.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("spool start failed: %w", err)
	}
	return nil
}
