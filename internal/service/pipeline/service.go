// Package pipeline orchestrates the extract → transform → persist → index
// flow for one run and records the outcome in run history.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"pbi-rag/internal/config"
	"pbi-rag/internal/domain"
	"pbi-rag/internal/storage"
)

// Extractor executes one query against the BI service and returns the raw
// response body.
type Extractor interface {
	ExecuteQuery(ctx context.Context, datasetID, query string) (domain.RawQueryResult, error)
}

// Indexer provisions the search index and uploads document batches.
type Indexer interface {
	EnsureIndex(ctx context.Context) error
	UploadDocuments(ctx context.Context, docs []domain.SearchDocument) ([]domain.DocumentResult, error)
}

// RunRecorder persists run summaries for the history endpoints.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *domain.RunRecord, queries []domain.RunQueryRecord) error
}

// Service runs the extraction pipeline.
type Service struct {
	extractor   Extractor
	store       storage.BlobStore
	indexer     Indexer
	history     RunRecorder
	policy      string
	concurrency int
	logger      *slog.Logger
}

// New creates the pipeline service. Concurrency and the extraction failure
// policy come from the configuration.
func New(extractor Extractor, store storage.BlobStore, indexer Indexer, history RunRecorder, cfg *config.Config, logger *slog.Logger) *Service {
	concurrency := cfg.ExtractConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		extractor:   extractor,
		store:       store,
		indexer:     indexer,
		history:     history,
		policy:      cfg.ExtractFailurePolicy,
		concurrency: concurrency,
		logger:      logger.With("component", "pipeline"),
	}
}

// Run executes every query of the request, persists the produced record sets
// and indexes them in one bulk call. Queries run concurrently in sorted name
// order; one query's failure never aborts its siblings unless the abort
// policy is active or token acquisition itself failed.
func (s *Service) Run(ctx context.Context, req domain.ExtractRequest) (*domain.PipelineResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := time.Now().UTC()
	runID := domain.NewID()
	logger := s.logger.With("run_id", runID, "dataset_id", req.DatasetID)
	logger.Info("pipeline run started", "queries", len(req.Queries), "policy", s.policy)

	names := sortedQueryNames(req.Queries)
	outcomes := make([]queryOutcome, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			out := s.runQuery(gctx, req.DatasetID, name, req.Queries[name], runID)
			outcomes[i] = out
			if out.err == nil {
				return nil
			}
			var authErr *domain.AuthError
			if errors.As(out.err, &authErr) {
				return out.err // credential failure is fatal under either policy
			}
			if s.policy == config.PolicyAbort {
				return out.err
			}
			return nil // skip policy: recorded, siblings continue
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("pipeline run aborted", "error", err)
		return nil, err
	}

	result := &domain.PipelineResult{
		RunID:      runID,
		DatasetID:  req.DatasetID,
		RawResults: make(map[string]domain.RawQueryResult),
		RecordSets: make(map[string]*domain.TabularRecordSet),
		StartedAt:  started,
	}
	for _, out := range outcomes {
		switch {
		case out.failure != nil:
			result.Failures = append(result.Failures, *out.failure)
		case out.rs != nil:
			result.RawResults[out.name] = out.raw
			result.RecordSets[out.name] = out.rs
			result.Artifacts = append(result.Artifacts, *out.artifact)
			result.ExtractedRecords += len(out.rs.Rows)
		}
	}
	result.IndexedDocuments = len(result.RecordSets)

	if len(result.RecordSets) > 0 {
		result.Status = domain.RunStatusCompleted
		s.indexRecordSets(ctx, runID, result, logger)
	} else {
		result.Status = domain.RunStatusFailed
	}

	result.FinishedAt = time.Now().UTC()
	s.recordHistory(ctx, req, result, outcomes, logger)

	logger.Info("pipeline run finished",
		"status", result.Status,
		"extracted_records", result.ExtractedRecords,
		"indexed_documents", result.IndexedDocuments,
		"failures", len(result.Failures),
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)
	return result, nil
}

type queryOutcome struct {
	name     string
	status   string
	raw      domain.RawQueryResult
	rs       *domain.TabularRecordSet
	artifact *domain.StoredArtifact
	failure  *domain.QueryFailure
	err      error // extraction-stage error, drives the abort policy
}

func (s *Service) runQuery(ctx context.Context, datasetID, name, query, runID string) queryOutcome {
	out := queryOutcome{name: name}
	fail := func(stage string, err error) queryOutcome {
		out.status = domain.QueryStatusFailed
		out.failure = &domain.QueryFailure{Query: name, Stage: stage, Error: err.Error()}
		s.logger.Warn("query failed", "run_id", runID, "query", name, "stage", stage, "error", err)
		return out
	}

	raw, err := s.extractor.ExecuteQuery(ctx, datasetID, query)
	if err != nil {
		out.err = err
		return fail(domain.StageExtraction, err)
	}

	rs, err := domain.RecordSetFromRaw(raw)
	if err != nil {
		return fail(domain.StageTransformation, err)
	}
	if rs == nil {
		out.status = domain.QueryStatusSkipped
		s.logger.Info("query produced no rows", "run_id", runID, "query", name)
		return out
	}

	data, err := storage.EncodeParquet(rs)
	if err != nil {
		return fail(domain.StagePersistence, err)
	}
	key := fmt.Sprintf("powerbi_data/%s_%d_%s.parquet", name, time.Now().Unix(), runID)
	path, err := s.store.Upload(ctx, key, data)
	if err != nil {
		return fail(domain.StagePersistence, err)
	}

	out.status = domain.QueryStatusSucceeded
	out.raw = raw
	out.rs = rs
	out.artifact = &domain.StoredArtifact{Query: name, BlobPath: path, Rows: len(rs.Rows)}
	return out
}

// indexRecordSets provisions the index and uploads one document per produced
// record set. An indexing failure is recorded on the result but does not
// change the run status: the persisted artifacts remain valid.
func (s *Service) indexRecordSets(ctx context.Context, runID string, result *domain.PipelineResult, logger *slog.Logger) {
	indexFailed := func(err error) {
		logger.Error("indexing stage failed", "error", err)
		result.Failures = append(result.Failures, domain.QueryFailure{
			Query: "*",
			Stage: domain.StageIndexing,
			Error: err.Error(),
		})
	}

	if err := s.indexer.EnsureIndex(ctx); err != nil {
		indexFailed(err)
		return
	}

	docs := buildDocuments(runID, result.RecordSets, time.Now())
	outcomes, err := s.indexer.UploadDocuments(ctx, docs)
	if err != nil {
		indexFailed(err)
		return
	}
	result.IndexOutcomes = outcomes
}

// recordHistory writes the run summary; failures are logged, never returned.
func (s *Service) recordHistory(ctx context.Context, req domain.ExtractRequest, result *domain.PipelineResult, outcomes []queryOutcome, logger *slog.Logger) {
	record := &domain.RunRecord{
		ID:               result.RunID,
		DatasetID:        req.DatasetID,
		Status:           result.Status,
		ExtractedRecords: result.ExtractedRecords,
		IndexedDocuments: result.IndexedDocuments,
		FailureCount:     len(result.Failures),
		StartedAt:        result.StartedAt,
		FinishedAt:       result.FinishedAt,
	}

	queries := make([]domain.RunQueryRecord, 0, len(outcomes))
	for _, out := range outcomes {
		qr := domain.RunQueryRecord{RunID: result.RunID, QueryName: out.name, Status: out.status}
		switch {
		case out.failure != nil:
			qr.Stage = out.failure.Stage
			qr.Error = out.failure.Error
		case out.rs != nil:
			qr.RowCount = len(out.rs.Rows)
			qr.BlobPath = out.artifact.BlobPath
		}
		queries = append(queries, qr)
	}

	if err := s.history.RecordRun(ctx, record, queries); err != nil {
		logger.Warn("record run history failed", "error", err)
	}
}

func sortedQueryNames(queries map[string]string) []string {
	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
