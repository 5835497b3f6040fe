package uploads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/depot/pkg/handlers"
	"github.com/JaimeStill/depot/pkg/pagination"
	"github.com/JaimeStill/depot/pkg/routes"
	"github.com/JaimeStill/depot/pkg/staging"
)

// batchLimit bounds how many files of one multipart request are staged at once.
const batchLimit = 4

// Handler provides HTTP endpoints for upload operations.
type Handler struct {
	sys           System
	spool         Spooler
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler. Multipart files are received through spool.
func NewHandler(
	sys System,
	spool Spooler,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		spool:         spool,
		logger:        logger.With("handler", "uploads"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for upload endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/uploads",
		Tags:   []string{"Uploads"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload, OpenAPI: uploadOp},
			{Method: "POST", Pattern: "/base64", Handler: h.UploadBase64, OpenAPI: base64Op},
		},
		Children: []routes.Group{
			{
				Prefix: "/transfers",
				Tags:   []string{"Transfers"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.ListTransfers, OpenAPI: listTransfersOp},
					{Method: "GET", Pattern: "/{id}", Handler: h.FindTransfer, OpenAPI: findTransferOp},
					{Method: "POST", Pattern: "", Handler: h.Transfer, OpenAPI: transferOp},
				},
			},
		},
	}
}

// Upload stages every file part of a multipart request. Parts are spooled as
// they stream in and then persisted concurrently. A single file responds with
// its staged record; several respond with one BatchResult per file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	uploads, err := h.receive(r)
	if err != nil {
		for _, up := range uploads {
			h.spool.Discard(up.TempPath)
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if len(uploads) == 1 {
		staged, err := h.sys.StoreFile(r.Context(), uploads[0])
		if err != nil {
			h.spool.Discard(uploads[0].TempPath)
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondJSON(w, http.StatusCreated, staged)
		return
	}

	results := make([]BatchResult, len(uploads))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchLimit)

	for i, up := range uploads {
		g.Go(func() error {
			results[i].Filename = up.OriginalName
			staged, err := h.sys.StoreFile(ctx, up)
			if err != nil {
				h.spool.Discard(up.TempPath)
				h.logger.Warn("batch file rejected", "filename", up.OriginalName, "error", err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].Staged = staged
			return nil
		})
	}
	_ = g.Wait()

	handlers.RespondJSON(w, http.StatusOK, results)
}

// receive spools every file part of the multipart body.
// On error the uploads spooled so far are returned for cleanup.
func (h *Handler) receive(r *http.Request) ([]staging.Upload, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	var uploads []staging.Upload
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return uploads, bodyError(err)
		}

		if part.FileName() == "" {
			part.Close()
			continue
		}

		up, err := h.spool.Accept(part, part.FileName())
		part.Close()
		if err != nil {
			return uploads, bodyError(err)
		}
		uploads = append(uploads, up)
	}

	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	return uploads, nil
}

// UploadBase64 stages an encoded image sent as JSON or as a url-encoded form
// with filename, payload, and overwrite fields.
func (h *Handler) UploadBase64(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	cmd, err := decodeBase64Command(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	staged, err := h.sys.StoreBase64Image(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, staged)
}

func decodeBase64Command(r *http.Request) (Base64Command, error) {
	var cmd Base64Command

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			return cmd, bodyError(err)
		}
		return cmd, nil
	}

	if err := r.ParseForm(); err != nil {
		return cmd, bodyError(err)
	}
	cmd.FileName = r.PostFormValue("filename")
	cmd.Payload = r.PostFormValue("payload")
	cmd.Overwrite, _ = strconv.ParseBool(r.PostFormValue("overwrite"))
	return cmd, nil
}

// Transfer puts a staged file into the object store.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var cmd TransferCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		err = bodyError(err)
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	t, err := h.sys.Transfer(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, t)
}

// ListTransfers returns a page of recorded transfers.
func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListTransfers(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// FindTransfer returns one recorded transfer by its UUID path parameter.
func (h *Handler) FindTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	t, err := h.sys.FindTransfer(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

// bodyError classifies a failure while reading the request body. Local
// spool failures keep their staging error.
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return ErrFileTooLarge
	case errors.Is(err, staging.ErrDirectory), errors.Is(err, staging.ErrWrite):
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidBody, err)
}
