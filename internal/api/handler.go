// Package api provides the HTTP handlers for the extraction service REST API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pbi-rag/internal/domain"
)

// Runner executes one extraction pipeline run.
type Runner interface {
	Run(ctx context.Context, req domain.ExtractRequest) (*domain.PipelineResult, error)
}

// DatasetLister fetches dataset metadata from a BI workspace.
type DatasetLister interface {
	ListDatasets(ctx context.Context, workspaceID string) (json.RawMessage, error)
}

// RunHistory reads recorded pipeline runs.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
	GetRun(ctx context.Context, id string) (*domain.RunRecord, []domain.RunQueryRecord, error)
}

// Handler serves the REST API.
type Handler struct {
	pipeline Runner
	datasets DatasetLister
	history  RunHistory
	logger   *slog.Logger
}

// NewHandler creates a Handler with its service dependencies.
func NewHandler(pipeline Runner, datasets DatasetLister, history RunHistory, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		datasets: datasets,
		history:  history,
		logger:   logger.With("component", "api"),
	}
}

// Routes mounts the authenticated API endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/extract-and-index", h.ExtractAndIndex)
	r.Get("/datasets/{workspaceID}", h.ListDatasets)
	r.Get("/runs", h.ListRuns)
	r.Get("/runs/{runID}", h.GetRun)
}

// Health reports service liveness. Mounted outside the authenticated group.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Power BI RAG Extraction API",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
