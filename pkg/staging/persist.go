package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Upload describes a file already received into temp storage.
type Upload struct {
	TempPath     string
	OriginalName string
	SizeBytes    int64
	Overwrite    bool
}

// Persister places uploaded content into the staging tree of one logical system.
type Persister struct {
	baseDir    string
	systemName string
	source     Source
	verifier   Verifier
	logger     *slog.Logger
}

// NewPersister creates a Persister for the configured system.
// verifier decides which temp paths PersistUpload accepts.
func NewPersister(cfg *Config, verifier Verifier, source Source, logger *slog.Logger) *Persister {
	return &Persister{
		baseDir:    cfg.BaseDir,
		systemName: cfg.SystemName,
		source:     source,
		verifier:   verifier,
		logger:     logger.With("system", "staging"),
	}
}

// BaseDir returns the root of the staging tree.
func (p *Persister) BaseDir() string {
	return p.baseDir
}

// SystemName returns the logical system files are staged for.
func (p *Persister) SystemName() string {
	return p.systemName
}

// Source returns the clock and random source used for naming.
func (p *Persister) Source() Source {
	return p.source
}

// Directory returns today's staging directory.
func (p *Persister) Directory() string {
	return p.source.Directory(p.baseDir, p.systemName)
}

// Destination resolves the full staging path for originalName. fallbackExt
// is used only when originalName has no extension of its own.
func (p *Persister) Destination(originalName, fallbackExt string, overwrite bool) (string, error) {
	name, err := p.source.FileNameWithExt(originalName, fallbackExt, overwrite)
	if err != nil {
		return "", err
	}
	return filepath.Join(p.Directory(), name), nil
}

// PersistUpload moves a verified temp file into today's staging directory and
// returns its absolute path.
//
// The source is checked before anything touches the filesystem, so a path
// the verifier does not recognize never causes a directory or file write.
func (p *Persister) PersistUpload(up Upload) (string, error) {
	if up.TempPath == "" {
		return "", ErrMissingSource
	}
	if _, err := os.Lstat(up.TempPath); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrMissingSource, up.TempPath)
	}
	if p.verifier == nil || !p.verifier.IsUpload(up.TempPath) {
		p.logger.Warn("rejected unverified upload source", "path", up.TempPath)
		return "", fmt.Errorf("%w: %s", ErrNotAnUpload, up.TempPath)
	}

	dest, err := p.Destination(up.OriginalName, "", up.Overwrite)
	if err != nil {
		return "", err
	}

	if err := EnsureDirectory(filepath.Dir(dest)); err != nil {
		return "", err
	}

	if err := os.Rename(up.TempPath, dest); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopy, err)
	}
	p.verifier.Release(up.TempPath)

	abs, err := filepath.Abs(dest)
	if err != nil {
		abs = dest
	}

	p.logger.Info("upload staged", "path", abs, "size", up.SizeBytes)
	return abs, nil
}

// PersistBytes writes data to destination, replacing any existing content,
// and returns the absolute path.
func (p *Persister) PersistBytes(data []byte, destination string) (string, error) {
	if err := EnsureDirectory(filepath.Dir(destination)); err != nil {
		return "", err
	}

	if err := writeFile(destination, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	abs, err := filepath.Abs(destination)
	if err != nil {
		abs = destination
	}

	p.logger.Info("bytes staged", "path", abs, "size", len(data))
	return abs, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return err
	}

	n, err := f.Write(data)
	if err == nil && n < len(data) {
		err = fmt.Errorf("short write: %d of %d bytes", n, len(data))
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
