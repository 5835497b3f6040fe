package uploads_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/depot/internal/uploads"
	"github.com/JaimeStill/depot/pkg/images"
	"github.com/JaimeStill/depot/pkg/lifecycle"
	"github.com/JaimeStill/depot/pkg/pagination"
	"github.com/JaimeStill/depot/pkg/staging"
	"github.com/JaimeStill/depot/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var pageConfig = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

type fakeStore struct {
	mu     sync.Mutex
	puts   []storage.PutInput
	bodies []string
	err    error
}

func (f *fakeStore) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStore) Put(_ context.Context, in storage.PutInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(body))
	return "https://" + in.Bucket + ".example.com/" + in.Key, nil
}

func (f *fakeStore) Provider() string { return "fake" }

func (f *fakeStore) Bucket() string { return "upload-file" }

type fakeLedger struct {
	mu       sync.Mutex
	recorded []uploads.Transfer
	err      error
}

func (l *fakeLedger) Record(_ context.Context, t uploads.Transfer) (*uploads.Transfer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.recorded = append(l.recorded, t)
	return &t, nil
}

func (l *fakeLedger) List(_ context.Context, page pagination.PageRequest, _ uploads.Filters) (*pagination.PageResult[uploads.Transfer], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := pagination.NewPageResult(l.recorded, len(l.recorded), page.Page, page.PageSize)
	return &r, nil
}

func (l *fakeLedger) Find(_ context.Context, id uuid.UUID) (*uploads.Transfer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.recorded {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, uploads.ErrNotFound
}

type fakeObserver struct {
	mu           sync.Mutex
	staged       map[string]int
	transfers    int
	failures     []string
	orientations []images.Orientation
}

func newObserver() *fakeObserver {
	return &fakeObserver{staged: make(map[string]int)}
}

func (o *fakeObserver) RecordStaged(source string) {
	o.mu.Lock()
	o.staged[source]++
	o.mu.Unlock()
}

func (o *fakeObserver) RecordTransfer(string, int64) {
	o.mu.Lock()
	o.transfers++
	o.mu.Unlock()
}

func (o *fakeObserver) RecordFailure(operation string, _ error) {
	o.mu.Lock()
	o.failures = append(o.failures, operation)
	o.mu.Unlock()
}

func (o *fakeObserver) RecordOrientation(or images.Orientation) {
	o.mu.Lock()
	o.orientations = append(o.orientations, or)
	o.mu.Unlock()
}

type env struct {
	sys      uploads.System
	base     string
	spool    *staging.Spool
	store    *fakeStore
	ledger   *fakeLedger
	observer *fakeObserver
}

func newEnv(t *testing.T) *env {
	t.Helper()

	base := t.TempDir()
	cfg := &staging.Config{BaseDir: base}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	spool := staging.NewSpool(t.TempDir(), discardLogger())
	e := &env{
		base:     base,
		spool:    spool,
		store:    &fakeStore{},
		ledger:   &fakeLedger{},
		observer: newObserver(),
	}

	e.sys = uploads.New(uploads.Deps{
		Persister:  staging.NewPersister(cfg, spool, staging.DefaultSource(), discardLogger()),
		Spool:      spool,
		Storage:    e.store,
		Ledger:     e.ledger,
		Observer:   e.observer,
		Pagination: pageConfig,
		Logger:     discardLogger(),
	})
	return e
}
