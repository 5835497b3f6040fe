package staging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/JaimeStill/depot/pkg/lifecycle"
)

// Verifier reports whether a temp path is a genuine upload received by this
// process. Paths it does not recognize are never moved into the staging tree.
type Verifier interface {
	IsUpload(path string) bool
	Release(path string)
}

// Spool receives incoming upload streams into temp files and remembers
// which temp paths it created. It is the Verifier used in production.
type Spool struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	files map[string]struct{}
}

// NewSpool creates a Spool writing temp files into dir.
func NewSpool(dir string, logger *slog.Logger) *Spool {
	return &Spool{
		dir:    filepath.Clean(dir),
		logger: logger.With("system", "spool"),
		files:  make(map[string]struct{}),
	}
}

// Dir returns the spool directory.
func (s *Spool) Dir() string {
	return s.dir
}

// Start provisions the spool directory at startup and removes unclaimed
// temp files at shutdown.
func (s *Spool) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting spool", "dir", s.dir)

	lc.OnStartup(func() {
		if err := EnsureDirectory(s.dir); err != nil {
			s.logger.Error("spool directory initialization failed", "error", err)
			return
		}
		s.logger.Info("spool ready", "dir", s.dir)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if n := s.purge(); n > 0 {
			s.logger.Info("removed unclaimed spool files", "count", n)
		}
	})

	return nil
}

// Accept copies r into a new temp file and registers it as an upload.
func (s *Spool) Accept(r io.Reader, originalName string) (Upload, error) {
	if err := EnsureDirectory(s.dir); err != nil {
		return Upload{}, err
	}

	f, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return Upload{}, fmt.Errorf("%w: create spool file: %v", ErrWrite, err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(f.Name())
		return Upload{}, fmt.Errorf("write spool file: %w", err)
	}

	path := filepath.Clean(f.Name())

	s.mu.Lock()
	s.files[path] = struct{}{}
	s.mu.Unlock()

	return Upload{
		TempPath:     path,
		OriginalName: originalName,
		SizeBytes:    n,
	}, nil
}

// IsUpload reports whether path was created by Accept, has not been released,
// and is still a regular file.
func (s *Spool) IsUpload(path string) bool {
	path = filepath.Clean(path)

	s.mu.Lock()
	_, ok := s.files[path]
	s.mu.Unlock()
	if !ok {
		return false
	}

	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}

// Release forgets path. The file itself is left alone.
func (s *Spool) Release(path string) {
	s.mu.Lock()
	delete(s.files, filepath.Clean(path))
	s.mu.Unlock()
}

// Discard removes an unclaimed temp file and forgets it.
func (s *Spool) Discard(path string) {
	s.Release(path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("spool discard failed", "path", path, "error", err)
	}
}

func (s *Spool) purge() int {
	s.mu.Lock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	s.files = make(map[string]struct{})
	s.mu.Unlock()

	removed := 0
	for _, p := range paths {
		if err := os.Remove(p); err == nil {
			removed++
		}
	}
	return removed
}
