// Package repository persists pipeline run history.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pbi-rag/internal/domain"
)

// RunHistoryRepo stores one row per pipeline run plus one row per query
// outcome, split across the write/read pool pair from the db package.
type RunHistoryRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

func NewRunHistoryRepo(writeDB, readDB *sql.DB) *RunHistoryRepo {
	return &RunHistoryRepo{writeDB: writeDB, readDB: readDB}
}

// RecordRun stores a run summary and its per-query outcomes in one
// transaction. Query rows take their run_id from run.ID.
func (r *RunHistoryRepo) RecordRun(ctx context.Context, run *domain.RunRecord, queries []domain.RunQueryRecord) error {
	tx, err := r.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, dataset_id, status, extracted_records, indexed_documents, failure_count, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.DatasetID, run.Status, run.ExtractedRecords, run.IndexedDocuments, run.FailureCount, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for _, q := range queries {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pipeline_run_queries (run_id, query_name, status, stage, row_count, blob_path, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, q.QueryName, q.Status, q.Stage, q.RowCount, q.BlobPath, q.Error)
		if err != nil {
			return fmt.Errorf("insert run query %s/%s: %w", run.ID, q.QueryName, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first. limit is clamped to
// at most 100; zero or negative means 20.
func (r *RunHistoryRepo) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := r.readDB.QueryContext(ctx,
		`SELECT id, dataset_id, status, extracted_records, indexed_documents, failure_count, started_at, finished_at
		 FROM pipeline_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var run domain.RunRecord
		if err := rows.Scan(&run.ID, &run.DatasetID, &run.Status, &run.ExtractedRecords, &run.IndexedDocuments, &run.FailureCount, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run and its per-query outcomes, queries sorted by name.
func (r *RunHistoryRepo) GetRun(ctx context.Context, id string) (*domain.RunRecord, []domain.RunQueryRecord, error) {
	var run domain.RunRecord
	err := r.readDB.QueryRowContext(ctx,
		`SELECT id, dataset_id, status, extracted_records, indexed_documents, failure_count, started_at, finished_at
		 FROM pipeline_runs WHERE id = ?`, id).
		Scan(&run.ID, &run.DatasetID, &run.Status, &run.ExtractedRecords, &run.IndexedDocuments, &run.FailureCount, &run.StartedAt, &run.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.ErrNotFound("run %q not found", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := r.readDB.QueryContext(ctx,
		`SELECT run_id, query_name, status, stage, row_count, blob_path, error
		 FROM pipeline_run_queries WHERE run_id = ? ORDER BY query_name`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list run queries for %s: %w", id, err)
	}
	defer rows.Close()

	var queries []domain.RunQueryRecord
	for rows.Next() {
		var q domain.RunQueryRecord
		if err := rows.Scan(&q.RunID, &q.QueryName, &q.Status, &q.Stage, &q.RowCount, &q.BlobPath, &q.Error); err != nil {
			return nil, nil, fmt.Errorf("scan run query: %w", err)
		}
		queries = append(queries, q)
	}
	return &run, queries, rows.Err()
}
