// Package storage selects the object storage backend for receipt blobs.
package storage

import (
	"context"
	"fmt"

	"receiptly/internal/config"
	"receiptly/internal/port"
	"receiptly/internal/storage/gcs"
	"receiptly/internal/storage/s3"
)

// New returns the ObjectStorage named by cfg.Storage.Provider.
func New(ctx context.Context, cfg *config.Config) (port.ObjectStorage, error) {
	switch cfg.Storage.Provider {
	case "", "s3":
		return s3.NewS3Client(ctx, &cfg.S3)
	case "gcs":
		return gcs.NewGCSClient(ctx, &cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}
