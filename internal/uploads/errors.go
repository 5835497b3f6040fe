package uploads

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/JaimeStill/depot/pkg/images"
	"github.com/JaimeStill/depot/pkg/staging"
	"github.com/JaimeStill/depot/pkg/storage"
)

// Domain errors for upload operations.
var (
	ErrInvalidPath  = errors.New("path is outside the staging directory")
	ErrNotFound     = errors.New("transfer not found")
	ErrDuplicate    = errors.New("transfer already recorded")
	ErrNoFiles      = errors.New("request contains no files")
	ErrFileTooLarge = errors.New("request exceeds maximum upload size")
	ErrInvalidBody  = errors.New("invalid request body")
)

// MapHTTPStatus maps upload, staging, image, and storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidPath),
		errors.Is(err, ErrNoFiles),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, images.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, staging.ErrMissingSource),
		errors.Is(err, staging.ErrNotAnUpload),
		errors.Is(err, staging.ErrUnresolvableName),
		errors.Is(err, staging.ErrDirectory),
		errors.Is(err, staging.ErrCopy),
		errors.Is(err, staging.ErrWrite):
		return staging.MapHTTPStatus(err)
	case errors.Is(err, storage.ErrEmptyKey),
		errors.Is(err, storage.ErrInvalidKey),
		errors.Is(err, storage.ErrEmptyBucket):
		return storage.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}

// errorKind labels err for the failures metric.
func errorKind(err error) string {
	kinds := []struct {
		target error
		kind   string
	}{
		{staging.ErrMissingSource, "missing_source"},
		{staging.ErrNotAnUpload, "not_an_upload"},
		{staging.ErrUnresolvableName, "unresolvable_name"},
		{staging.ErrDirectory, "directory"},
		{staging.ErrCopy, "copy"},
		{staging.ErrWrite, "write"},
		{images.ErrDecode, "decode"},
		{ErrInvalidPath, "invalid_path"},
		{fs.ErrNotExist, "not_found"},
		{storage.ErrEmptyKey, "invalid_key"},
		{storage.ErrInvalidKey, "invalid_key"},
		{storage.ErrEmptyBucket, "invalid_key"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	return "other"
}
