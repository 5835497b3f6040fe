package staging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/depot/pkg/lifecycle"
	"github.com/JaimeStill/depot/pkg/staging"
)

func TestSpoolAccept(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	spool := staging.NewSpool(dir, discardLogger())

	up, err := spool.Accept(strings.NewReader("hello"), "greeting.txt")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if filepath.Dir(up.TempPath) != dir {
		t.Errorf("temp path %s not in %s", up.TempPath, dir)
	}
	if up.OriginalName != "greeting.txt" || up.SizeBytes != 5 {
		t.Errorf("unexpected upload %+v", up)
	}
	if !spool.IsUpload(up.TempPath) {
		t.Error("accepted file should verify")
	}
	if !spool.IsUpload(filepath.Join(dir, ".", filepath.Base(up.TempPath))) {
		t.Error("uncleaned spelling of the same path should verify")
	}
}

func TestSpoolIsUpload(t *testing.T) {
	dir := t.TempDir()
	spool := staging.NewSpool(dir, discardLogger())

	stranger := filepath.Join(dir, "upload-planted")
	if err := os.WriteFile(stranger, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "system file", path: "/etc/passwd"},
		{name: "planted in spool dir", path: stranger},
		{name: "empty", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if spool.IsUpload(tt.path) {
				t.Errorf("IsUpload(%q) = true", tt.path)
			}
		})
	}

	t.Run("removed after accept", func(t *testing.T) {
		up, err := spool.Accept(strings.NewReader("x"), "a.txt")
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Remove(up.TempPath); err != nil {
			t.Fatal(err)
		}
		if spool.IsUpload(up.TempPath) {
			t.Error("vanished file should not verify")
		}
	})
}

func TestSpoolDiscard(t *testing.T) {
	spool := staging.NewSpool(t.TempDir(), discardLogger())

	up, err := spool.Accept(strings.NewReader("x"), "a.txt")
	if err != nil {
		t.Fatal(err)
	}

	spool.Discard(up.TempPath)

	if spool.IsUpload(up.TempPath) {
		t.Error("discarded path still verifies")
	}
	if _, err := os.Stat(up.TempPath); !os.IsNotExist(err) {
		t.Errorf("discarded file still on disk: %v", err)
	}
}

func TestSpoolLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	spool := staging.NewSpool(dir, discardLogger())
	lc := lifecycle.New()

	if err := spool.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}
	lc.WaitForStartup()

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("spool dir not provisioned: %v", err)
	}

	up, err := spool.Accept(strings.NewReader("x"), "a.txt")
	if err != nil {
		t.Fatal(err)
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if _, err := os.Stat(up.TempPath); !os.IsNotExist(err) {
		t.Errorf("unclaimed file not purged: %v", err)
	}
}
