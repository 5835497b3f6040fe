package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/depot/internal/config"
	"github.com/JaimeStill/depot/internal/uploads"
	"github.com/JaimeStill/depot/pkg/openapi"
	"github.com/JaimeStill/depot/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime, cfg *config.Config) error {
	storage := newStorageHandler(runtime.Storage, runtime.Logger)

	groups := []routes.Group{
		domain.Uploads.Handler(runtime.MaxUploadSize).Routes(),
		storage.routes(),
	}
	routes.Register(mux, groups...)

	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(uploads.Schemas())
	spec.Components.AddSchemas(storageSchemas)
	routes.Document(spec, groups...)

	serve, err := spec.Handler()
	if err != nil {
		return fmt.Errorf("openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", serve)

	return nil
}
