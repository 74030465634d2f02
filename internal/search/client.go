// Package search is the REST client for the Azure AI Search service. It
// manages the target index and uploads documents in bulk for retrieval.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"pbi-rag/internal/domain"
)

const (
	apiVersion = "2023-11-01"

	// maxErrorBody caps how much of an upstream error response is copied
	// into error messages.
	maxErrorBody = 512
)

// Config carries the settings for NewClient. Endpoint overrides the service
// URL derived from ServiceName and exists for tests.
type Config struct {
	ServiceName string
	AdminKey    string
	IndexName   string
	Timeout     time.Duration
	Endpoint    string
}

// Client talks to one Azure AI Search service with admin-key authentication.
type Client struct {
	httpClient *http.Client
	endpoint   string
	adminKey   string
	index      string
	logger     *slog.Logger
}

// NewClient creates a search client for the configured index.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.search.windows.net", cfg.ServiceName)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		adminKey:   cfg.AdminKey,
		index:      cfg.IndexName,
		logger:     logger.With("component", "search"),
	}
}

// EnsureIndex creates the target index or updates it in place. The call is
// idempotent: the service answers 201 on creation and 204 when the
// definition already exists.
func (c *Client) EnsureIndex(ctx context.Context) error {
	body, err := json.Marshal(defaultIndexDefinition(c.index))
	if err != nil {
		return fmt.Errorf("marshal index definition: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s?api-version=%s", c.endpoint, c.index, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build index request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.adminKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ErrIndexing("ensure index %q: %v", c.index, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		c.logger.Debug("search index ensured", "index", c.index, "status", resp.StatusCode)
		return nil
	default:
		return domain.ErrIndexing("ensure index %q returned %d: %s", c.index, resp.StatusCode, readSnippet(resp.Body))
	}
}

// UploadDocuments sends documents to the index in one batch and reports the
// per-document outcome. The service answers 200 when every document was
// accepted and 207 when some were rejected; both carry a result per
// document.
func (c *Client) UploadDocuments(ctx context.Context, docs []domain.SearchDocument) ([]domain.DocumentResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	actions := make([]indexAction, len(docs))
	for i, doc := range docs {
		actions[i] = indexAction{Action: "upload", SearchDocument: doc}
	}
	body, err := json.Marshal(indexBatch{Value: actions})
	if err != nil {
		return nil, fmt.Errorf("marshal document batch: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s", c.endpoint, c.index, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.adminKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrIndexing("upload %d documents to index %q: %v", len(docs), c.index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusMultiStatus {
		return nil, domain.ErrIndexing("upload %d documents to index %q returned %d: %s", len(docs), c.index, resp.StatusCode, readSnippet(resp.Body))
	}

	var batch indexBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, domain.ErrIndexing("decode upload response for index %q: %v", c.index, err)
	}

	results := make([]domain.DocumentResult, len(batch.Value))
	rejected := 0
	for i, r := range batch.Value {
		results[i] = domain.DocumentResult{
			Key:        r.Key,
			Succeeded:  r.Status,
			StatusCode: r.StatusCode,
			Message:    r.ErrorMessage,
		}
		if !r.Status {
			rejected++
		}
	}
	if rejected > 0 {
		c.logger.Warn("search index rejected documents", "index", c.index, "rejected", rejected, "total", len(docs))
	}
	return results, nil
}

type indexBatch struct {
	Value []indexAction `json:"value"`
}

// indexAction wraps one document in the action envelope of the bulk
// endpoint. "upload" inserts or fully replaces the document at its key.
type indexAction struct {
	Action string `json:"@search.action"`
	domain.SearchDocument
}

type indexBatchResponse struct {
	Value []indexActionResult `json:"value"`
}

type indexActionResult struct {
	Key          string `json:"key"`
	Status       bool   `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	StatusCode   int    `json:"statusCode"`
}

func readSnippet(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(b) == 0 {
		return "<no body>"
	}
	return string(b)
}
