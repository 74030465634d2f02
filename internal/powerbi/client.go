// Package powerbi is the REST client for the Power BI service: OAuth2
// client-credentials authentication plus the dataset query endpoints.
package powerbi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"pbi-rag/internal/domain"
)

const (
	defaultBaseURL = "https://api.powerbi.com/v1.0/myorg"
	powerBIScope   = "https://analysis.windows.net/powerbi/api/.default"

	// Error bodies from upstream are truncated to this many bytes before
	// they are embedded in error messages.
	maxErrorBody = 512
)

// Config carries the service-principal credentials and endpoint overrides
// for a Client. BaseURL and TokenURL default to the public endpoints and
// exist for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	WorkspaceID  string
	Timeout      time.Duration
	BaseURL      string
	TokenURL     string
}

// Client executes DAX queries and lists datasets in a Power BI workspace.
// Bearer tokens come from an oauth2 client-credentials source that
// refreshes before expiry; callers never see or cache tokens themselves.
type Client struct {
	httpClient *http.Client
	baseURL    string
	workspace  string
	logger     *slog.Logger
}

// NewClient builds a Power BI client for one workspace.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{powerBIScope},
	}
	// The token exchange reuses the same timeout as API calls.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := oauth2.NewClient(tokenCtx, cc.TokenSource(tokenCtx))
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		workspace:  cfg.WorkspaceID,
		logger:     logger,
	}
}

type executeQueriesRequest struct {
	Queries            []executeQuery     `json:"queries"`
	SerializerSettings serializerSettings `json:"serializerSettings"`
}

type executeQuery struct {
	Query string `json:"query"`
}

type serializerSettings struct {
	IncludeNulls bool `json:"includeNulls"`
}

// ExecuteQuery runs one DAX query against a dataset and returns the decoded
// response body unmodified. Token acquisition failures map to AuthError;
// everything else that goes wrong maps to ExtractionError.
func (c *Client) ExecuteQuery(ctx context.Context, datasetID, query string) (domain.RawQueryResult, error) {
	payload := executeQueriesRequest{
		Queries:            []executeQuery{{Query: query}},
		SerializerSettings: serializerSettings{IncludeNulls: true},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal executeQueries payload: %w", err)
	}

	url := fmt.Sprintf("%s/groups/%s/datasets/%s/executeQueries", c.baseURL, c.workspace, datasetID)
	c.logger.Debug("executing dax query", "dataset", datasetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build executeQueries request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("executeQueries", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ErrExtraction("executeQueries for dataset %s returned %d: %s",
			datasetID, resp.StatusCode, readSnippet(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrExtraction("read executeQueries response: %v", err)
	}
	return domain.RawQueryResult(raw), nil
}

// ListDatasets returns the datasets visible to the service principal in the
// given workspace, as the raw upstream JSON document.
func (c *Client) ListDatasets(ctx context.Context, workspaceID string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/groups/%s/datasets", c.baseURL, workspaceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build datasets request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("list datasets", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ErrExtraction("list datasets for workspace %s returned %d: %s",
			workspaceID, resp.StatusCode, readSnippet(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrExtraction("read datasets response: %v", err)
	}
	return json.RawMessage(raw), nil
}

// classifyTransportError separates token-exchange failures (AuthError,
// fatal to the whole run) from per-call transport failures.
func classifyTransportError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return domain.ErrAuth("acquire Power BI token: %s: %s",
			retrieveErr.Response.Status, truncate(string(retrieveErr.Body), maxErrorBody))
	}
	return domain.ErrExtraction("%s: %v", op, err)
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
