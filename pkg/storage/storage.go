// Package storage archives the source ledger files an import consumed,
// so a disputed record can always be traced back to the spreadsheet row
// it came from.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about an archived ledger file.
type FileInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Archive stores and retrieves original ledger files.
type Archive interface {
	// Store saves a source file and returns its metadata.
	Store(ctx context.Context, filename string, r io.Reader) (*FileInfo, error)

	// Open retrieves an archived file by id.
	Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// List returns all archived files, newest first.
	List(ctx context.Context) ([]*FileInfo, error)

	// Delete removes an archived file.
	Delete(ctx context.Context, fileID uuid.UUID) error
}
