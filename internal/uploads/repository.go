package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/depot/pkg/formatting"
	"github.com/JaimeStill/depot/pkg/images"
	"github.com/JaimeStill/depot/pkg/pagination"
	"github.com/JaimeStill/depot/pkg/staging"
	"github.com/JaimeStill/depot/pkg/storage"
)

// Deps holds the collaborators of the upload system. Observer may be nil.
type Deps struct {
	Persister  *staging.Persister
	Spool      Spooler
	Storage    storage.System
	Ledger     Ledger
	Observer   Observer
	Pagination pagination.Config
	Logger     *slog.Logger
}

type repo struct {
	persister  *staging.Persister
	spool      Spooler
	storage    storage.System
	ledger     Ledger
	observer   Observer
	pagination pagination.Config
	logger     *slog.Logger
}

// New creates the upload system.
func New(deps Deps) System {
	observer := deps.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &repo{
		persister:  deps.Persister,
		spool:      deps.Spool,
		storage:    deps.Storage,
		ledger:     deps.Ledger,
		observer:   observer,
		pagination: deps.Pagination,
		logger:     deps.Logger.With("system", "uploads"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.spool, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) StoreFile(ctx context.Context, up staging.Upload) (*Staged, error) {
	path, err := r.persister.PersistUpload(up)
	if err != nil {
		r.observer.RecordFailure("store_file", err)
		return nil, err
	}

	staged, err := inspect(r.logger, path, r.persister.SystemName())
	if err != nil {
		r.observer.RecordFailure("store_file", err)
		return nil, fmt.Errorf("inspect staged file: %w", err)
	}

	r.observer.RecordStaged(SourceMultipart)
	return staged, nil
}

// StoreBase64Image decodes cmd.Payload, rotates JPEG data upright, and
// persists it. A failed rotation is logged and the decoded bytes are
// persisted as received.
func (r *repo) StoreBase64Image(ctx context.Context, cmd Base64Command) (*Staged, error) {
	data, err := images.DecodePayload(cmd.Payload)
	if err != nil {
		r.observer.RecordFailure("store_base64", err)
		return nil, err
	}

	ext := images.InferExtension(data)

	orientation := images.ReadOrientation(data)
	if orientation.Rotates() {
		normalized, o, err := images.Normalize(data)
		if err != nil {
			r.logger.Warn("orientation normalization failed", "orientation", o, "error", err)
			r.observer.RecordFailure("normalize", err)
		} else {
			data = normalized
			r.observer.RecordOrientation(o)
		}
	}

	dest, err := r.persister.Destination(cmd.FileName, ext, cmd.Overwrite)
	if err != nil {
		r.observer.RecordFailure("store_base64", err)
		return nil, err
	}

	path, err := r.persister.PersistBytes(data, dest)
	if err != nil {
		r.observer.RecordFailure("store_base64", err)
		return nil, err
	}

	staged, err := inspect(r.logger, path, r.persister.SystemName())
	if err != nil {
		r.observer.RecordFailure("store_base64", err)
		return nil, fmt.Errorf("inspect staged file: %w", err)
	}
	staged.Orientation = orientation.String()

	r.observer.RecordStaged(SourceBase64)
	return staged, nil
}

// Transfer streams a staged file to the object store under a derived key.
// Remote failures are returned without retry. A ledger failure is logged
// and the transfer still succeeds because the object already exists remotely.
func (r *repo) Transfer(ctx context.Context, cmd TransferCommand) (*Transfer, error) {
	path, err := r.resolve(cmd.Dir, cmd.FileName)
	if err != nil {
		r.observer.RecordFailure("transfer", err)
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		r.observer.RecordFailure("transfer", err)
		return nil, fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		r.observer.RecordFailure("transfer", err)
		return nil, fmt.Errorf("stat staged file: %w", err)
	}
	if !info.Mode().IsRegular() {
		r.observer.RecordFailure("transfer", ErrInvalidPath)
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrInvalidPath, path)
	}

	contentType, err := sniff(f)
	if err != nil {
		r.observer.RecordFailure("transfer", err)
		return nil, fmt.Errorf("read staged file: %w", err)
	}

	bucket := cmd.Bucket
	if bucket == "" {
		bucket = r.storage.Bucket()
	}

	src := r.persister.Source()
	name := filepath.Base(path)
	key := DeriveKey(src, r.persister.SystemName(), name)

	url, err := r.storage.Put(ctx, storage.PutInput{
		Bucket:      bucket,
		Key:         key,
		Body:        f,
		Size:        info.Size(),
		ContentType: contentType,
	})
	if err != nil {
		r.observer.RecordFailure("transfer", err)
		return nil, fmt.Errorf("transfer %s: %w", name, err)
	}

	t := Transfer{
		ID:            uuid.New(),
		SystemName:    r.persister.SystemName(),
		LocalPath:     path,
		FileName:      name,
		Bucket:        bucket,
		ObjectKey:     key,
		ObjectURL:     url,
		SizeBytes:     info.Size(),
		ContentType:   contentType,
		Provider:      r.storage.Provider(),
		TransferredAt: src.Time().UTC(),
	}

	r.observer.RecordTransfer(t.Provider, t.SizeBytes)
	r.logger.Info(
		"file transferred",
		"key", key,
		"bucket", bucket,
		"size", formatting.FormatBytes(t.SizeBytes, 1),
	)

	if r.ledger == nil {
		return &t, nil
	}

	rec, err := r.ledger.Record(ctx, t)
	if err != nil {
		r.logger.Error("transfer ledger write failed", "key", key, "error", err)
		r.observer.RecordFailure("ledger", err)
		return &t, nil
	}
	return rec, nil
}

func (r *repo) ListTransfers(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Transfer], error) {
	if r.ledger == nil {
		result := pagination.NewPageResult[Transfer](nil, 0, 1, r.pagination.DefaultPageSize)
		return &result, nil
	}
	return r.ledger.List(ctx, page, filters)
}

func (r *repo) FindTransfer(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	if r.ledger == nil {
		return nil, ErrNotFound
	}
	return r.ledger.Find(ctx, id)
}

// resolve joins dir and name and confines the result to the staging tree.
// A relative dir is taken relative to the staging base directory.
func (r *repo) resolve(dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: file name required", ErrInvalidPath)
	}

	base, err := filepath.Abs(r.persister.BaseDir())
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	path := filepath.Join(dir, name)

	if !within(base, path) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	// symlinks inside the tree must not lead back out of it
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		realBase, err := filepath.EvalSymlinks(base)
		if err != nil {
			realBase = base
		}
		if !within(realBase, resolved) {
			return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
		}
	}

	return path, nil
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
