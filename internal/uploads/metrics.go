package uploads

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/depot/pkg/images"
)

// Staging sources reported by RecordStaged.
const (
	SourceMultipart = "multipart"
	SourceBase64    = "base64"
)

// Observer captures telemetry for upload operations.
type Observer interface {
	RecordStaged(source string)
	RecordTransfer(provider string, sizeBytes int64)
	RecordFailure(operation string, err error)
	RecordOrientation(o images.Orientation)
}

// PrometheusObserver exports upload metrics to Prometheus.
type PrometheusObserver struct {
	staged       *prometheus.CounterVec
	transfers    *prometheus.CounterVec
	transferred  prometheus.Counter
	failures     *prometheus.CounterVec
	orientations *prometheus.CounterVec
}

// NewPrometheusObserver registers the upload metrics on reg under namespace.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		staged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staged_files_total",
			Help:      "Files persisted into the staging tree, by source.",
		}, []string{"source"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Staged files written to the object store, by provider.",
		}, []string{"provider"}),
		transferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transferred_bytes_total",
			Help:      "Bytes written to the object store.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed upload operations, by operation and error kind.",
		}, []string{"operation", "kind"}),
		orientations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orientation_corrections_total",
			Help:      "Images rotated upright before staging, by original orientation.",
		}, []string{"orientation"}),
	}

	collectors := []prometheus.Collector{o.staged, o.transfers, o.transferred, o.failures, o.orientations}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register upload metric: %w", err)
		}
	}
	return o, nil
}

func (o *PrometheusObserver) RecordStaged(source string) {
	o.staged.WithLabelValues(source).Inc()
}

func (o *PrometheusObserver) RecordTransfer(provider string, sizeBytes int64) {
	o.transfers.WithLabelValues(provider).Inc()
	o.transferred.Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordFailure(operation string, err error) {
	o.failures.WithLabelValues(operation, errorKind(err)).Inc()
}

func (o *PrometheusObserver) RecordOrientation(or images.Orientation) {
	o.orientations.WithLabelValues(or.String()).Inc()
}

type nopObserver struct{}

func (nopObserver) RecordStaged(string) {}

func (nopObserver) RecordTransfer(string, int64) {}

func (nopObserver) RecordFailure(string, error) {}

func (nopObserver) RecordOrientation(images.Orientation) {}
