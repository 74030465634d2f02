// Package storage writes pipeline artifacts to cloud object storage. Three
// backends are supported (Azure Blob Storage, S3-compatible stores, Google
// Cloud Storage); the active one is selected by configuration.
package storage

import (
	"context"
	"fmt"

	"pbi-rag/internal/config"
)

// Compile-time checks: every backend implements BlobStore.
var _ BlobStore = (*AzureStore)(nil)
var _ BlobStore = (*S3Store)(nil)
var _ BlobStore = (*GCSStore)(nil)

// BlobStore uploads a pipeline artifact to object storage. Upload overwrites
// any blob already at key and returns the full storage URI of the written
// object.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// NewBlobStore creates the blob store named by STORAGE_BACKEND.
func NewBlobStore(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case config.BackendAzure:
		return NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.StorageContainer)
	case config.BackendS3:
		return NewS3Store(cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretAccessKey, cfg.S3Endpoint, cfg.S3Bucket), nil
	case config.BackendGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
