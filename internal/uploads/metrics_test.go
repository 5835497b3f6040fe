package uploads_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/depot/internal/uploads"
	"github.com/JaimeStill/depot/pkg/images"
	"github.com/JaimeStill/depot/pkg/staging"
)

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := uploads.NewPrometheusObserver("depot", reg)
	if err != nil {
		t.Fatalf("new observer: %v", err)
	}

	o.RecordStaged(uploads.SourceMultipart)
	o.RecordStaged(uploads.SourceMultipart)
	o.RecordStaged(uploads.SourceBase64)
	o.RecordTransfer("s3", 2048)
	o.RecordFailure("transfer", fmt.Errorf("open: %w", uploads.ErrInvalidPath))
	o.RecordFailure("store_file", staging.ErrNotAnUpload)
	o.RecordFailure("transfer", errors.New("timeout"))
	o.RecordOrientation(images.RotatedRight90)

	expected := `
# HELP depot_failures_total Failed upload operations, by operation and error kind.
# TYPE depot_failures_total counter
depot_failures_total{kind="invalid_path",operation="transfer"} 1
depot_failures_total{kind="not_an_upload",operation="store_file"} 1
depot_failures_total{kind="other",operation="transfer"} 1
# HELP depot_orientation_corrections_total Images rotated upright before staging, by original orientation.
# TYPE depot_orientation_corrections_total counter
depot_orientation_corrections_total{orientation="rotated-right-90"} 1
# HELP depot_staged_files_total Files persisted into the staging tree, by source.
# TYPE depot_staged_files_total counter
depot_staged_files_total{source="base64"} 1
depot_staged_files_total{source="multipart"} 2
# HELP depot_transferred_bytes_total Bytes written to the object store.
# TYPE depot_transferred_bytes_total counter
depot_transferred_bytes_total 2048
# HELP depot_transfers_total Staged files written to the object store, by provider.
# TYPE depot_transfers_total counter
depot_transfers_total{provider="s3"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestPrometheusObserverDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := uploads.NewPrometheusObserver("depot", reg); err != nil {
		t.Fatal(err)
	}
	if _, err := uploads.NewPrometheusObserver("depot", reg); err == nil {
		t.Error("expected error registering metrics twice")
	}
}
