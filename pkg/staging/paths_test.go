package staging_test

import (
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/JaimeStill/depot/pkg/staging"
)

var fixedTime = time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local)

func fixedSource(draws ...int) staging.Source {
	i := 0
	return staging.Source{
		Now: func() time.Time { return fixedTime },
		Random: func() int {
			v := draws[i%len(draws)]
			i++
			return v
		},
	}
}

func TestDirectory(t *testing.T) {
	src := fixedSource(1234)

	got := src.Directory("/tmp/upload-file", "defaults")
	want := filepath.Join("/tmp/upload-file", "defaults", "20261019")
	if got != want {
		t.Errorf("Directory() = %s, want %s", got, want)
	}

	if again := src.Directory("/tmp/upload-file", "defaults"); again != got {
		t.Errorf("Directory() not stable: %s then %s", got, again)
	}

	live := staging.DefaultSource()
	if a, b := live.Directory("/base", "sys"), live.Directory("/base", "sys"); a != b {
		t.Errorf("wall clock directory changed within one tick: %s then %s", a, b)
	}
}

func TestFileName(t *testing.T) {
	src := fixedSource(1234)
	unix := fixedTime.Unix()

	tests := []struct {
		name      string
		original  string
		overwrite bool
		want      string
	}{
		{name: "unique", original: "report.csv", want: "report_" + itoa(unix) + "1234.csv"},
		{name: "overwrite", original: "report.csv", overwrite: true, want: "report.csv"},
		{name: "multiple dots", original: "archive.tar.gz", want: "archive.tar_" + itoa(unix) + "1234.gz"},
		{name: "no extension", original: "photo", want: "photo_" + itoa(unix) + "1234"},
		{name: "directory stripped", original: "../../etc/passwd", overwrite: true, want: "passwd"},
		{name: "windows path stripped", original: `C:\Users\me\notes.txt`, overwrite: true, want: "notes.txt"},
		{name: "multibyte", original: "スタッフ情報.csv", want: "スタッフ情報_" + itoa(unix) + "1234.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := src.FileName(tt.original, tt.overwrite)
			if err != nil {
				t.Fatalf("FileName() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FileName() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFileNameUnresolvable(t *testing.T) {
	src := fixedSource(1234)

	for _, name := range []string{"", "   ", ".", "..", "/"} {
		if _, err := src.FileName(name, false); !errors.Is(err, staging.ErrUnresolvableName) {
			t.Errorf("FileName(%q) error = %v, want ErrUnresolvableName", name, err)
		}
	}
}

func TestFileNameVariesAcrossDraws(t *testing.T) {
	src := fixedSource(1111, 2222)
	pattern := regexp.MustCompile(`^report_\d+\d{4}\.csv$`)

	a, err := src.FileName("report.csv", false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := src.FileName("report.csv", false)
	if err != nil {
		t.Fatal(err)
	}

	if a == b {
		t.Errorf("expected different names for different draws, both %s", a)
	}
	for _, n := range []string{a, b} {
		if !pattern.MatchString(n) {
			t.Errorf("%s does not keep base and extension", n)
		}
	}
}

func TestFileNameWithExt(t *testing.T) {
	src := fixedSource(1234)

	got, err := src.FileNameWithExt("photo", "png", true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "photo.png" {
		t.Errorf("got %s, want photo.png", got)
	}

	got, err = src.FileNameWithExt("photo.jpeg", "png", true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "photo.jpeg" {
		t.Errorf("own extension should win: got %s", got)
	}
}

func TestDefaultSourceDraw(t *testing.T) {
	src := staging.DefaultSource()
	for range 1000 {
		if v := src.Draw(); v < 1000 || v > 9999 {
			t.Fatalf("draw %d outside [1000, 9999]", v)
		}
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
