package uploads

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/depot/pkg/pagination"
	"github.com/JaimeStill/depot/pkg/query"
	"github.com/JaimeStill/depot/pkg/repository"
)

type ledger struct {
	db         *sql.DB
	pagination pagination.Config
}

// NewLedger returns a Ledger backed by the transfers table.
func NewLedger(db *sql.DB, pagination pagination.Config) Ledger {
	return &ledger{db: db, pagination: pagination}
}

func (l *ledger) Record(ctx context.Context, t Transfer) (*Transfer, error) {
	q := `
		INSERT INTO transfers(id, system_name, local_path, file_name, bucket, object_key, object_url, size_bytes, content_type, provider, transferred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, system_name, local_path, file_name, bucket, object_key, object_url, size_bytes, content_type, provider, transferred_at`

	args := []any{
		t.ID,
		t.SystemName,
		t.LocalPath,
		t.FileName,
		t.Bucket,
		t.ObjectKey,
		t.ObjectURL,
		t.SizeBytes,
		t.ContentType,
		t.Provider,
		t.TransferredAt,
	}

	rec, err := repository.QueryOne(ctx, l.db, q, args, scanTransfer)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (l *ledger) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Transfer], error) {
	page.Normalize(l.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "FileName", "ObjectKey")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := l.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count transfers: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	transfers, err := repository.QueryMany(ctx, l.db, pageSQL, pageArgs, scanTransfer)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}

	result := pagination.NewPageResult(transfers, total, page.Page, page.PageSize)
	return &result, nil
}

func (l *ledger) Find(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	t, err := repository.QueryOne(ctx, l.db, q, args, scanTransfer)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}
