// Package storage puts staged files into a remote object store. S3, MinIO
// and Azure Blob Storage backends share one System interface; each reports
// the public URL of the object it wrote.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JaimeStill/depot/pkg/lifecycle"
)

// PutInput describes one object to write. Size is -1 when unknown.
type PutInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// System writes objects to a remote store.
type System interface {
	// Start registers a startup hook that checks or provisions the default bucket.
	Start(lc *lifecycle.Coordinator) error
	// Put streams in.Body to in.Bucket under in.Key and returns the object URL.
	// Remote failures are returned wrapped, never retried.
	Put(ctx context.Context, in PutInput) (string, error)
	// Provider names the backend, e.g. "s3".
	Provider() string
	// Bucket returns the configured default bucket.
	Bucket() string
}

// New creates the storage system selected by cfg.Provider.
// Clients are constructed here; no connection is made until Start or Put.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderS3:
		return newS3(cfg, logger)
	case ProviderMinio:
		return newMinio(cfg, logger)
	case ProviderAzure:
		return newAzure(cfg, logger)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}

func (in PutInput) validate() error {
	if in.Bucket == "" {
		return ErrEmptyBucket
	}
	return validateKey(in.Key)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

// escapeKey path-escapes each segment of key for use in a URL.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}
