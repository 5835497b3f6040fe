package storage

import (
	"errors"
	"net/http"
)

var (
	// ErrEmptyKey indicates an empty object key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the object key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrEmptyBucket indicates no bucket was named for a put.
	ErrEmptyBucket = errors.New("storage bucket must not be empty")
	// ErrUnknownProvider indicates the configured provider is not supported.
	ErrUnknownProvider = errors.New("unknown storage provider")
)

// MapHTTPStatus maps storage errors to HTTP status codes. Failures reported
// by the remote store map to 502.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrEmptyKey) || errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrEmptyBucket) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
