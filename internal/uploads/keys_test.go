package uploads_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/JaimeStill/depot/internal/uploads"
	"github.com/JaimeStill/depot/pkg/staging"
)

var keyPattern = regexp.MustCompile(`^defaults/\d{8}/[0-9a-f]{64}\.txt$`)

func TestDeriveKeyPattern(t *testing.T) {
	key := uploads.DeriveKey(staging.DefaultSource(), "defaults", "notes.txt")
	if !keyPattern.MatchString(key) {
		t.Errorf("key %q does not match %s", key, keyPattern)
	}
}

func TestDeriveKeyDatePartition(t *testing.T) {
	src := staging.Source{
		Now:    func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local) },
		Random: func() int { return 1234 },
	}

	key := uploads.DeriveKey(src, "crm", "report.csv")
	if want := regexp.MustCompile(`^crm/20261019/[0-9a-f]{64}\.csv$`); !want.MatchString(key) {
		t.Errorf("key %q does not match %s", key, want)
	}

	if again := uploads.DeriveKey(src, "crm", "report.csv"); again != key {
		t.Errorf("same clock and draw should give the same key: %s vs %s", key, again)
	}
	if other := uploads.DeriveKey(src, "crm", "report2.csv"); other == key {
		t.Error("different file names should give different keys")
	}
}

func TestDeriveKeyNoExtension(t *testing.T) {
	key := uploads.DeriveKey(staging.DefaultSource(), "defaults", "README")
	if !regexp.MustCompile(`^defaults/\d{8}/[0-9a-f]{64}$`).MatchString(key) {
		t.Errorf("key %q should carry no extension", key)
	}
}

func TestDeriveKeyNeverRepeats(t *testing.T) {
	draws := []int{1000, 1001, 1002, 1003, 1004, 1005, 1006, 1007, 1008, 1009}
	i := 0
	src := staging.Source{
		Now:    func() time.Time { return time.Unix(1_700_000_000, 0) },
		Random: func() int { d := draws[i%len(draws)]; i++; return d },
	}

	seen := make(map[string]bool)
	for range draws {
		key := uploads.DeriveKey(src, "defaults", "same.txt")
		if seen[key] {
			t.Fatalf("key %s repeated", key)
		}
		seen[key] = true
	}
}
