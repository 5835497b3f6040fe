package staging_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/depot/pkg/staging"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPersister(t *testing.T, verifier staging.Verifier) (*staging.Persister, string) {
	t.Helper()
	base := t.TempDir()
	cfg := &staging.Config{BaseDir: base}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return staging.NewPersister(cfg, verifier, staging.DefaultSource(), discardLogger()), base
}

func newSpooled(t *testing.T, base string) (*staging.Persister, *staging.Spool) {
	t.Helper()
	spool := staging.NewSpool(filepath.Join(t.TempDir(), "spool"), discardLogger())
	cfg := &staging.Config{BaseDir: base, SystemName: "defaults"}
	return staging.NewPersister(cfg, spool, staging.DefaultSource(), discardLogger()), spool
}

func TestEnsureDirectoryIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := staging.EnsureDirectory(dir); err != nil {
		t.Fatalf("first call: %v", err)
	}

	marker := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(marker, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := staging.EnsureDirectory(dir); err != nil {
		t.Fatalf("second call: %v", err)
	}

	data, err := os.ReadFile(marker)
	if err != nil || string(data) != "keep" {
		t.Errorf("existing content disturbed: %q, %v", data, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != staging.DirMode {
		t.Errorf("mode = %v, want %v", info.Mode().Perm(), staging.DirMode)
	}
}

func TestEnsureDirectoryConcurrent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "defaults", "20261019")

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Go(func() {
			errs <- staging.EnsureDirectory(dir)
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent create failed: %v", err)
		}
	}
}

func TestEnsureDirectoryAcceptsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := staging.EnsureDirectory(path); err != nil {
		t.Errorf("existing file should count as present: %v", err)
	}
}

func TestEnsureDirectoryFailure(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	err := staging.EnsureDirectory(filepath.Join(parent, "child"))
	if !errors.Is(err, staging.ErrDirectory) {
		t.Errorf("err = %v, want ErrDirectory", err)
	}
}

func TestPersistUploadScenario(t *testing.T) {
	base := t.TempDir()
	p, spool := newSpooled(t, base)

	content := []byte("0123456789")
	up, err := spool.Accept(bytes.NewReader(content), "report.csv")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if up.SizeBytes != 10 {
		t.Errorf("size = %d, want 10", up.SizeBytes)
	}

	path, err := p.PersistUpload(up)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}

	if want := p.Directory(); filepath.Dir(path) != want {
		t.Errorf("dir = %s, want %s", filepath.Dir(path), want)
	}
	if !strings.HasPrefix(path, filepath.Join(base, "defaults")) {
		t.Errorf("path %s not under %s/defaults", path, base)
	}
	if !regexp.MustCompile(`report_\d+\d{4}\.csv$`).MatchString(path) {
		t.Errorf("unexpected name %s", filepath.Base(path))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content = %q, want %q", got, content)
	}

	if _, err := os.Stat(up.TempPath); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
	if spool.IsUpload(up.TempPath) {
		t.Error("temp path should be released after the move")
	}
}

func TestPersistUploadRejectsUnverified(t *testing.T) {
	base := t.TempDir()
	p, _ := newSpooled(t, base)

	_, err := p.PersistUpload(staging.Upload{TempPath: "/etc/passwd", OriginalName: "passwd"})
	if !errors.Is(err, staging.ErrNotAnUpload) {
		t.Fatalf("err = %v, want ErrNotAnUpload", err)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("filesystem written: %v", entries)
	}
}

func TestPersistUploadFailures(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		p, _ := newPersister(t, nil)
		_, err := p.PersistUpload(staging.Upload{OriginalName: "a.txt"})
		if !errors.Is(err, staging.ErrMissingSource) {
			t.Errorf("err = %v, want ErrMissingSource", err)
		}
	})

	t.Run("absent source", func(t *testing.T) {
		p, spool := newSpooled(t, t.TempDir())

		up, err := spool.Accept(strings.NewReader("x"), "a.txt")
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Remove(up.TempPath); err != nil {
			t.Fatal(err)
		}
		if _, err := p.PersistUpload(up); !errors.Is(err, staging.ErrMissingSource) {
			t.Errorf("err = %v, want ErrMissingSource", err)
		}
	})

	t.Run("unresolvable name", func(t *testing.T) {
		p, spool := newSpooled(t, t.TempDir())

		up, err := spool.Accept(strings.NewReader("x"), "")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := p.PersistUpload(up); !errors.Is(err, staging.ErrUnresolvableName) {
			t.Errorf("err = %v, want ErrUnresolvableName", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		root := t.TempDir()
		blocker := filepath.Join(root, "blocker")
		if err := os.WriteFile(blocker, nil, 0o644); err != nil {
			t.Fatal(err)
		}

		p, spool := newSpooled(t, blocker)

		up, err := spool.Accept(strings.NewReader("x"), "a.txt")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := p.PersistUpload(up); !errors.Is(err, staging.ErrDirectory) {
			t.Errorf("err = %v, want ErrDirectory", err)
		}
	})

	t.Run("copy", func(t *testing.T) {
		p, spool := newSpooled(t, t.TempDir())

		up, err := spool.Accept(strings.NewReader("x"), "a.txt")
		if err != nil {
			t.Fatal(err)
		}

		// the destination name is a non-empty directory, so rename fails
		dest, err := p.Destination("a.txt", "", true)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(filepath.Join(dest, "occupied"), 0o755); err != nil {
			t.Fatal(err)
		}

		up.Overwrite = true
		if _, err := p.PersistUpload(up); !errors.Is(err, staging.ErrCopy) {
			t.Errorf("err = %v, want ErrCopy", err)
		}
	})
}

func TestPersistBytes(t *testing.T) {
	p, _ := newPersister(t, nil)

	dest, err := p.Destination("photo", "png", true)
	if err != nil {
		t.Fatal(err)
	}

	path, err := p.PersistBytes([]byte("first content"), dest)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := p.PersistBytes([]byte("second"), dest); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want overwritten content", got)
	}
	if filepath.Base(path) != "photo.png" {
		t.Errorf("name = %s, want photo.png", filepath.Base(path))
	}
}

func TestPersistBytesFailures(t *testing.T) {
	p, base := newPersister(t, nil)

	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := p.PersistBytes([]byte("x"), filepath.Join(blocker, "sub", "a.png")); !errors.Is(err, staging.ErrDirectory) {
		t.Errorf("err = %v, want ErrDirectory", err)
	}

	dir := filepath.Join(base, "dir-as-file")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := p.PersistBytes([]byte("x"), dir); !errors.Is(err, staging.ErrWrite) {
		t.Errorf("err = %v, want ErrWrite", err)
	}
}
