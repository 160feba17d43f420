package service

import (
	"context"
	"io"
)

// FileStore persists uploaded document bytes. Keys are opaque storage paths
// recorded on the Document row.
type FileStore interface {
	// Save writes the reader's contents under key.
	Save(ctx context.Context, key string, contentType string, r io.Reader) error

	// Open returns a reader for the stored bytes. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the stored bytes. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
