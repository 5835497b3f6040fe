package staging

import (
	"errors"
	"net/http"
)

var (
	// ErrDirectory indicates the staging directory could not be created or secured.
	ErrDirectory = errors.New("staging directory could not be created, check the path and its permissions")
	// ErrMissingSource indicates no uploaded file was supplied.
	ErrMissingSource = errors.New("no uploaded file was supplied")
	// ErrNotAnUpload indicates the supplied temp path is not a verified upload.
	ErrNotAnUpload = errors.New("source is not a verified upload")
	// ErrCopy indicates the move from the temp location to the staging path failed.
	ErrCopy = errors.New("failed to move upload into the staging directory, check the directory and its permissions")
	// ErrWrite indicates writing bytes to the staging path failed.
	ErrWrite = errors.New("failed to write file into the staging directory, check the directory and its permissions")
	// ErrUnresolvableName indicates no usable file name could be derived.
	ErrUnresolvableName = errors.New("file name could not be resolved")
)

// MapHTTPStatus maps staging errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingSource),
		errors.Is(err, ErrUnresolvableName):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAnUpload):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
