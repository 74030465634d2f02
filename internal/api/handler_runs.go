package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pbi-rag/internal/domain"
)

type runSummary struct {
	ID               string    `json:"id"`
	DatasetID        string    `json:"datasetId"`
	Status           string    `json:"status"`
	ExtractedRecords int       `json:"extractedRecords"`
	IndexedDocuments int       `json:"indexedDocuments"`
	FailureCount     int       `json:"failureCount"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
}

type runQuery struct {
	QueryName string `json:"queryName"`
	Status    string `json:"status"`
	Stage     string `json:"stage,omitempty"`
	RowCount  int    `json:"rowCount"`
	BlobPath  string `json:"blobPath,omitempty"`
	Error     string `json:"error,omitempty"`
}

type runDetail struct {
	runSummary
	Queries []runQuery `json:"queries"`
}

// ListRuns returns recent pipeline runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, r, domain.ErrValidation("invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := h.history.ListRuns(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]runSummary, len(runs))
	for i, run := range runs {
		out[i] = runSummaryFromRecord(run)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": out})
}

// GetRun returns one run with its per-query outcomes.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, queries, err := h.history.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	detail := runDetail{
		runSummary: runSummaryFromRecord(*run),
		Queries:    make([]runQuery, len(queries)),
	}
	for i, q := range queries {
		detail.Queries[i] = runQuery{
			QueryName: q.QueryName,
			Status:    q.Status,
			Stage:     q.Stage,
			RowCount:  q.RowCount,
			BlobPath:  q.BlobPath,
			Error:     q.Error,
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func runSummaryFromRecord(run domain.RunRecord) runSummary {
	return runSummary{
		ID:               run.ID,
		DatasetID:        run.DatasetID,
		Status:           run.Status,
		ExtractedRecords: run.ExtractedRecords,
		IndexedDocuments: run.IndexedDocuments,
		FailureCount:     run.FailureCount,
		StartedAt:        run.StartedAt,
		FinishedAt:       run.FinishedAt,
	}
}
