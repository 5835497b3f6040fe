package uploads

import (
	"net/url"

	"github.com/JaimeStill/depot/pkg/query"
	"github.com/JaimeStill/depot/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "transfers", "t").
	Project("id", "ID").
	Project("system_name", "SystemName").
	Project("local_path", "LocalPath").
	Project("file_name", "FileName").
	Project("bucket", "Bucket").
	Project("object_key", "ObjectKey").
	Project("object_url", "ObjectURL").
	Project("size_bytes", "SizeBytes").
	Project("content_type", "ContentType").
	Project("provider", "Provider").
	Project("transferred_at", "TransferredAt")

var defaultSort = query.SortField{
	Field:      "TransferredAt",
	Descending: true,
}

// Filters narrows transfer listings. Nil fields are ignored; all use exact matching.
type Filters struct {
	SystemName *string `json:"system_name,omitempty"`
	Bucket     *string `json:"bucket,omitempty"`
	Provider   *string `json:"provider,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("SystemName", f.SystemName).
		WhereEquals("Bucket", f.Bucket).
		WhereEquals("Provider", f.Provider)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("system_name"); v != "" {
		f.SystemName = &v
	}
	if v := values.Get("bucket"); v != "" {
		f.Bucket = &v
	}
	if v := values.Get("provider"); v != "" {
		f.Provider = &v
	}
	return f
}

func scanTransfer(s repository.Scanner) (Transfer, error) {
	var t Transfer
	err := s.Scan(
		&t.ID,
		&t.SystemName,
		&t.LocalPath,
		&t.FileName,
		&t.Bucket,
		&t.ObjectKey,
		&t.ObjectURL,
		&t.SizeBytes,
		&t.ContentType,
		&t.Provider,
		&t.TransferredAt,
	)
	return t, err
}
