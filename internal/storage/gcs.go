package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"pbi-rag/internal/domain"
)

// GCSStore uploads objects to a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore creates a store for one bucket. credentialsFile may be empty,
// in which case application default credentials are used.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

// Upload writes data to the bucket, replacing any existing object at key.
func (s *GCSStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", domain.ErrPersistence("write object %q to bucket %q: %v", key, s.bucket, err)
	}
	if err := w.Close(); err != nil {
		return "", domain.ErrPersistence("finalize object %q in bucket %q: %v", key, s.bucket, err)
	}
	return s.URL(key), nil
}

// URL returns the gs:// address of an object in the configured bucket.
func (s *GCSStore) URL(key string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, key)
}
