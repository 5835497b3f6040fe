package uploads

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const sniffLen = 512

// inspect describes the staged file at path. The content type is sniffed
// from the file head; PDFs also get a page count.
func inspect(logger *slog.Logger, path, systemName string) (*Staged, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	contentType, err := sniff(f)
	if err != nil {
		return nil, err
	}

	return &Staged{
		Path:        path,
		Name:        filepath.Base(path),
		SystemName:  systemName,
		SizeBytes:   info.Size(),
		ContentType: contentType,
		PageCount:   pageCount(logger, f, contentType),
	}, nil
}

// sniff detects the content type from the head of rs and rewinds it.
func sniff(rs io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

func pageCount(logger *slog.Logger, rs io.ReadSeeker, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(rs, nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}
