package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pbi-rag/internal/domain"
)

// S3Store uploads objects to an S3 bucket. A custom endpoint switches the
// client to path-style addressing for S3-compatible stores like MinIO or
// Hetzner.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates a store with static credentials. endpoint may be empty,
// in which case the client talks to AWS proper.
func NewS3Store(region, keyID, secret, endpoint, bucket string) *S3Store {
	opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(keyID, secret, ""),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", endpoint))
		opts.UsePathStyle = true
	}

	return &S3Store{
		client: s3.New(opts),
		bucket: bucket,
	}
}

// Upload writes data to the bucket, replacing any existing object at key.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", domain.ErrPersistence("put object %q to bucket %q: %v", key, s.bucket, err)
	}
	return s.URL(key), nil
}

// URL returns the s3:// address of an object in the configured bucket.
func (s *S3Store) URL(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}
