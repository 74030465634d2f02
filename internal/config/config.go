// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend identifiers.
const (
	BackendAzure = "azure"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
)

// Inbound API auth modes.
const (
	AuthModeNone  = "none"
	AuthModeToken = "token"
	AuthModeHS256 = "hs256"
	AuthModeOIDC  = "oidc"
)

// Per-query extraction failure policies. "skip" records the failure and
// continues with the remaining queries; "abort" fails the whole run on the
// first extraction error.
const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)

// Config holds the configuration for the extraction service. All fields are
// loaded from the environment; missing required values abort startup.
type Config struct {
	// Power BI service principal.
	PowerBIClientID     string
	PowerBIClientSecret string
	PowerBITenantID     string
	PowerBIWorkspaceID  string

	// Blob storage. Backend selects which family of fields is required.
	StorageBackend     string
	StorageContainer   string
	AzureAccountName   string
	AzureAccountKey    string
	S3Bucket           string
	S3Region           string
	S3AccessKeyID      string
	S3SecretAccessKey  string
	S3Endpoint         string // optional, for S3-compatible object stores
	GCSBucket          string
	GCSCredentialsFile string

	// Azure AI Search.
	SearchServiceName string
	SearchAdminKey    string
	SearchIndexName   string

	// HTTP server.
	ListenAddr         string
	LogLevel           string
	CORSAllowedOrigins []string

	// Inbound auth.
	AuthMode     string
	APIToken     string
	JWTSecret    string
	OIDCIssuer   string
	OIDCAudience string

	// Rate limiting. Zero RPS disables the limiter.
	RateLimitRPS   float64
	RateLimitBurst int

	// Pipeline execution.
	ExtractConcurrency   int
	ExtractFailurePolicy string
	HTTPClientTimeout    time.Duration

	// Run history and scheduling.
	DBPath       string
	ScheduleFile string

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SearchEndpoint returns the base URL of the configured search service.
func (c *Config) SearchEndpoint() string {
	return fmt.Sprintf("https://%s.search.windows.net", c.SearchServiceName)
}

// LoadFromEnv loads configuration from environment variables and validates
// that every required value for the selected backends is present.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		PowerBIClientID:     os.Getenv("POWERBI_CLIENT_ID"),
		PowerBIClientSecret: os.Getenv("POWERBI_CLIENT_SECRET"),
		PowerBITenantID:     os.Getenv("POWERBI_TENANT_ID"),
		PowerBIWorkspaceID:  os.Getenv("POWERBI_WORKSPACE_ID"),
		StorageBackend:      strings.ToLower(os.Getenv("STORAGE_BACKEND")),
		StorageContainer:    os.Getenv("STORAGE_CONTAINER"),
		AzureAccountName:    os.Getenv("STORAGE_ACCOUNT_NAME"),
		AzureAccountKey:     os.Getenv("STORAGE_ACCOUNT_KEY"),
		S3Bucket:            os.Getenv("S3_BUCKET"),
		S3Region:            os.Getenv("S3_REGION"),
		S3AccessKeyID:       os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:   os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Endpoint:          os.Getenv("S3_ENDPOINT"),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile:  os.Getenv("GCS_CREDENTIALS_FILE"),
		SearchServiceName:   os.Getenv("SEARCH_SERVICE_NAME"),
		SearchAdminKey:      os.Getenv("SEARCH_ADMIN_KEY"),
		SearchIndexName:     os.Getenv("SEARCH_INDEX_NAME"),
		ListenAddr:          os.Getenv("LISTEN_ADDR"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		AuthMode:            strings.ToLower(os.Getenv("AUTH_MODE")),
		APIToken:            os.Getenv("API_TOKEN"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		OIDCIssuer:          os.Getenv("OIDC_ISSUER"),
		OIDCAudience:        os.Getenv("OIDC_AUDIENCE"),
		DBPath:              os.Getenv("DB_PATH"),
		ScheduleFile:        os.Getenv("SCHEDULE_FILE"),
	}
	cfg.ExtractFailurePolicy = strings.ToLower(os.Getenv("EXTRACT_FAILURE_POLICY"))

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = n
	}
	if v := os.Getenv("EXTRACT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid EXTRACT_CONCURRENCY: %q", v)
		}
		cfg.ExtractConcurrency = n
	}
	if v := os.Getenv("HTTP_CLIENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_CLIENT_TIMEOUT: %w", err)
		}
		cfg.HTTPClientTimeout = d
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults.
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendAzure
	}
	if cfg.StorageContainer == "" {
		cfg.StorageContainer = "powerbi-rag-data"
	}
	if cfg.SearchIndexName == "" {
		cfg.SearchIndexName = "powerbi-rag-index"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = AuthModeNone
	}
	if cfg.ExtractConcurrency == 0 {
		cfg.ExtractConcurrency = 4
	}
	if cfg.ExtractFailurePolicy == "" {
		cfg.ExtractFailurePolicy = PolicySkip
	}
	if cfg.HTTPClientTimeout == 0 {
		cfg.HTTPClientTimeout = 30 * time.Second
	}
	if cfg.RateLimitBurst == 0 && cfg.RateLimitRPS > 0 {
		// A limiter with burst 0 admits no requests at all, so a
		// fractional RPS must still derive a burst of at least 1.
		cfg.RateLimitBurst = max(1, 2*int(cfg.RateLimitRPS))
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "data/pbirag.db"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.AuthMode == AuthModeNone {
		cfg.Warnings = append(cfg.Warnings, "AUTH_MODE=none: the API accepts unauthenticated requests")
	}

	return cfg, nil
}

// validate checks every required field for the selected backends and
// reports all missing keys in one error so operators fix them in one pass.
func (c *Config) validate() error {
	var missing []string
	need := func(value, key string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	need(c.PowerBIClientID, "POWERBI_CLIENT_ID")
	need(c.PowerBIClientSecret, "POWERBI_CLIENT_SECRET")
	need(c.PowerBITenantID, "POWERBI_TENANT_ID")
	need(c.PowerBIWorkspaceID, "POWERBI_WORKSPACE_ID")
	need(c.SearchServiceName, "SEARCH_SERVICE_NAME")
	need(c.SearchAdminKey, "SEARCH_ADMIN_KEY")

	switch c.StorageBackend {
	case BackendAzure:
		need(c.AzureAccountName, "STORAGE_ACCOUNT_NAME")
		need(c.AzureAccountKey, "STORAGE_ACCOUNT_KEY")
	case BackendS3:
		need(c.S3Bucket, "S3_BUCKET")
		need(c.S3Region, "S3_REGION")
		need(c.S3AccessKeyID, "S3_ACCESS_KEY_ID")
		need(c.S3SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	case BackendGCS:
		need(c.GCSBucket, "GCS_BUCKET")
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected azure, s3, or gcs)", c.StorageBackend)
	}

	switch c.ExtractFailurePolicy {
	case PolicySkip, PolicyAbort:
	default:
		return fmt.Errorf("unknown EXTRACT_FAILURE_POLICY %q (expected skip or abort)", c.ExtractFailurePolicy)
	}

	switch c.AuthMode {
	case AuthModeNone:
	case AuthModeToken:
		need(c.APIToken, "API_TOKEN")
	case AuthModeHS256:
		need(c.JWTSecret, "JWT_SECRET")
	case AuthModeOIDC:
		need(c.OIDCIssuer, "OIDC_ISSUER")
		need(c.OIDCAudience, "OIDC_AUDIENCE")
	default:
		return fmt.Errorf("unknown AUTH_MODE %q (expected none, token, hs256, or oidc)", c.AuthMode)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
