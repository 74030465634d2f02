package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Run status values. A run is "completed" when at least one record set
// survived the extract → transform → persist chain; the status does not
// reflect whether the final bulk indexing call succeeded.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Pipeline stages, used to attribute per-query failures.
const (
	StageExtraction     = "extraction"
	StageTransformation = "transformation"
	StagePersistence    = "persistence"
	StageIndexing       = "indexing"
)

// Per-query outcome values recorded in run history.
const (
	QueryStatusSucceeded = "succeeded"
	QueryStatusSkipped   = "skipped"
	QueryStatusFailed    = "failed"
)

// RawQueryResult is the unmodified decoded response body for one query.
type RawQueryResult = json.RawMessage

// ExtractRequest is the caller-supplied input of one pipeline run: a
// dataset identifier and named query texts.
type ExtractRequest struct {
	DatasetID string
	Queries   map[string]string
}

// Validate checks that the request is well-formed.
func (r *ExtractRequest) Validate() error {
	if strings.TrimSpace(r.DatasetID) == "" {
		return ErrValidation("datasetId is required")
	}
	if len(r.Queries) == 0 {
		return ErrValidation("at least one query is required")
	}
	for name, q := range r.Queries {
		if strings.TrimSpace(name) == "" {
			return ErrValidation("query name must not be blank")
		}
		if strings.TrimSpace(q) == "" {
			return ErrValidation("query %q has empty text", name)
		}
	}
	return nil
}

// QueryFailure records one query's failure at a given stage. A failed
// query never aborts its siblings; it surfaces here instead.
type QueryFailure struct {
	Query string `json:"query"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// StoredArtifact identifies one uploaded columnar file.
type StoredArtifact struct {
	Query    string `json:"query"`
	BlobPath string `json:"blobPath"`
	Rows     int    `json:"rows"`
}

// SearchDocument is the flattened representation of one record set as it is
// submitted to the search index. The index schema also declares a vector
// field; ingestion never populates it.
type SearchDocument struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Title    string `json:"title"`
	Metadata string `json:"metadata"`
}

// DocumentResult is the per-document outcome of a bulk upload.
type DocumentResult struct {
	Key        string `json:"key"`
	Succeeded  bool   `json:"succeeded"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
}

// PipelineResult aggregates one run's outcome. RawResults and RecordSets
// are keyed by query name and hold only queries that produced output.
type PipelineResult struct {
	RunID            string
	DatasetID        string
	Status           string
	RawResults       map[string]RawQueryResult
	RecordSets       map[string]*TabularRecordSet
	Artifacts        []StoredArtifact
	Failures         []QueryFailure
	IndexOutcomes    []DocumentResult
	ExtractedRecords int
	IndexedDocuments int
	StartedAt        time.Time
	FinishedAt       time.Time
}

// RunRecord is the persisted summary of one pipeline run.
type RunRecord struct {
	ID               string
	DatasetID        string
	Status           string
	ExtractedRecords int
	IndexedDocuments int
	FailureCount     int
	StartedAt        time.Time
	FinishedAt       time.Time
}

// RunQueryRecord is the persisted outcome of one query within a run.
type RunQueryRecord struct {
	RunID     string
	QueryName string
	Status    string
	Stage     string
	RowCount  int
	BlobPath  string
	Error     string
}
