// Package fetcher downloads and parses boundary and statistics sources:
// HTTP and FTP transports with retry and per-host rate limiting, plus
// streaming CSV/JSON readers, XLSX workbooks, and ZIP extraction.
package fetcher

import (
	"context"
	"io"
)

// Fetcher is the transport-agnostic download surface shared by the
// HTTP and FTP implementations.
type Fetcher interface {
	// Download opens a streaming reader over the resource at url. The
	// caller owns the returned reader and must close it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile saves the resource at url to path and reports the
	// number of bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
