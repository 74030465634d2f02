package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"pbi-rag/internal/domain"
)

// AzureStore uploads blobs to an Azure Blob Storage container using
// shared-key authentication.
type AzureStore struct {
	client      *azblob.Client
	container   string
	accountName string
}

// NewAzureStore creates a store for one container of a storage account.
func NewAzureStore(accountName, accountKey, container string) (*AzureStore, error) {
	sharedKeyCred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, sharedKeyCred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}

	return &AzureStore{
		client:      client,
		container:   container,
		accountName: accountName,
	}, nil
}

// Upload writes data to the container, replacing any existing blob at key.
func (s *AzureStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if _, err := s.client.UploadBuffer(ctx, s.container, key, data, nil); err != nil {
		return "", domain.ErrPersistence("upload blob %q to container %q: %v", key, s.container, err)
	}
	return s.URL(key), nil
}

// URL returns the HTTPS address of a blob in the configured container.
func (s *AzureStore) URL(key string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.accountName, s.container, key)
}
