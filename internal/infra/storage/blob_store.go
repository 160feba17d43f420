// Package storage persists uploaded document bytes in a gocloud.dev blob
// bucket, so local disk and cloud object stores share one code path.
package storage

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Bucket drivers registered for blob.OpenBucket URL schemes.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"

	"smartextract/config"
	"smartextract/internal/domain/service"
)

const defaultBucketURL = "mem://"

// blobFileStore implements service.FileStore on a blob bucket.
type blobFileStore struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// Params holds dependencies for the blob file store.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewBlobFileStore opens the configured bucket and ties it to the fx lifecycle.
func NewBlobFileStore(params Params) (service.FileStore, error) {
	bucketURL := defaultBucketURL
	if params.Cfg.Upload != nil && params.Cfg.Upload.BucketURL != "" {
		bucketURL = params.Cfg.Upload.BucketURL
	}

	bucket, err := blob.OpenBucket(params.Ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}

	params.Logger.Info("Blob file store initialized", slog.String("bucket", bucketURL))

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	return &blobFileStore{bucket: bucket, logger: params.Logger}, nil
}

// NewBlobFileStoreFromBucket wraps an already-open bucket. Used by tests.
func NewBlobFileStoreFromBucket(bucket *blob.Bucket, logger *slog.Logger) service.FileStore {
	return &blobFileStore{bucket: bucket, logger: logger}
}

// Save streams the reader into the bucket under key.
func (s *blobFileStore) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrapf(err, "failed to open writer for %s", key)
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()

		return errors.Wrapf(err, "failed to write %s", key)
	}

	return errors.Wrapf(w.Close(), "failed to finalize %s", key)
}

// Open returns a reader over the stored bytes.
func (s *blobFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", key)
	}

	return r, nil
}

// Delete removes the stored bytes. A missing key is not an error.
func (s *blobFileStore) Delete(ctx context.Context, key string) error {
	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "failed to check %s", key)
	}
	if !exists {
		s.logger.Debug("Delete of missing blob skipped", slog.String("key", key))

		return nil
	}

	return errors.Wrapf(s.bucket.Delete(ctx, key), "failed to delete %s", key)
}
