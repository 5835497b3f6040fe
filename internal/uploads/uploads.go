// Package uploads implements the upload domain for depot. It stages
// multipart and base64 uploads through pkg/staging, normalizes image
// orientation, transfers staged files to the object store, and keeps a
// ledger of completed transfers.
package uploads

import (
	"time"

	"github.com/google/uuid"
)

// Staged describes a file persisted into the staging tree.
type Staged struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	SystemName  string `json:"system_name"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
	PageCount   *int   `json:"page_count,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

// Transfer records one staged file written to the object store.
type Transfer struct {
	ID            uuid.UUID `json:"id"`
	SystemName    string    `json:"system_name"`
	LocalPath     string    `json:"local_path"`
	FileName      string    `json:"file_name"`
	Bucket        string    `json:"bucket"`
	ObjectKey     string    `json:"object_key"`
	ObjectURL     string    `json:"object_url"`
	SizeBytes     int64     `json:"size_bytes"`
	ContentType   string    `json:"content_type"`
	Provider      string    `json:"provider"`
	TransferredAt time.Time `json:"transferred_at"`
}

// Base64Command carries an encoded image payload. Payload may start with one
// of the recognized data URI prefixes. FileName without an extension takes
// the extension inferred from the decoded image.
type Base64Command struct {
	FileName  string `json:"filename"`
	Payload   string `json:"payload"`
	Overwrite bool   `json:"overwrite"`
}

// TransferCommand names a staged file by directory and file name. An empty
// Bucket selects the configured default bucket.
type TransferCommand struct {
	Dir      string `json:"dir"`
	FileName string `json:"filename"`
	Bucket   string `json:"bucket,omitempty"`
}

// BatchResult reports the outcome of one file within a multipart batch.
// Exactly one of Staged and Error is set.
type BatchResult struct {
	Staged   *Staged `json:"staged,omitempty"`
	Filename string  `json:"filename"`
	Error    string  `json:"error,omitempty"`
}
