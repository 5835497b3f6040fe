package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/depot/pkg/handlers"
	"github.com/JaimeStill/depot/pkg/openapi"
	"github.com/JaimeStill/depot/pkg/routes"
	"github.com/JaimeStill/depot/pkg/storage"
)

// StorageInfo describes the configured object store.
type StorageInfo struct {
	Provider string `json:"provider"`
	Bucket   string `json:"bucket"`
}

var infoOp = &openapi.Operation{
	Summary: "Describe the configured object store",
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Storage info", "StorageInfo"),
	},
}

var storageSchemas = map[string]*openapi.Schema{
	"StorageInfo": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"provider": {Type: "string", Example: "s3"},
			"bucket":   {Type: "string", Example: "upload-file"},
		},
	},
}

type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Tags:   []string{"Storage"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.info, OpenAPI: infoOp},
		},
	}
}

func (h *storageHandler) info(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, StorageInfo{
		Provider: h.store.Provider(),
		Bucket:   h.store.Bucket(),
	})
}
