package uploads

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/depot/pkg/pagination"
	"github.com/JaimeStill/depot/pkg/staging"
)

// System defines the public contract for upload domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// StoreFile moves a spooled multipart upload into the staging tree.
	StoreFile(ctx context.Context, up staging.Upload) (*Staged, error)
	// StoreBase64Image decodes, orients, and stages an encoded image.
	StoreBase64Image(ctx context.Context, cmd Base64Command) (*Staged, error)
	// Transfer puts a staged file into the object store and records it.
	Transfer(ctx context.Context, cmd TransferCommand) (*Transfer, error)

	ListTransfers(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Transfer], error)

	FindTransfer(ctx context.Context, id uuid.UUID) (*Transfer, error)
}

// Ledger persists completed transfers.
type Ledger interface {
	Record(ctx context.Context, t Transfer) (*Transfer, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Transfer], error)
	Find(ctx context.Context, id uuid.UUID) (*Transfer, error)
}

// Spooler receives request streams into verified temp files.
// *staging.Spool is the production implementation.
type Spooler interface {
	Accept(r io.Reader, originalName string) (staging.Upload, error)
	Discard(path string)
}
