package api

import (
	"fmt"

	"github.com/JaimeStill/depot/internal/infrastructure"
	"github.com/JaimeStill/depot/internal/uploads"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Uploads uploads.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	observer, err := uploads.NewPrometheusObserver(infrastructure.MetricsNamespace, runtime.Metrics)
	if err != nil {
		return nil, fmt.Errorf("uploads metrics: %w", err)
	}

	uploadsSystem := uploads.New(uploads.Deps{
		Persister:  runtime.Persister,
		Spool:      runtime.Spool,
		Storage:    runtime.Storage,
		Ledger:     uploads.NewLedger(runtime.Database.Connection(), runtime.Pagination),
		Observer:   observer,
		Pagination: runtime.Pagination,
		Logger:     runtime.Logger,
	})

	return &Domain{
		Uploads: uploadsSystem,
	}, nil
}
