package api

import (
	"encoding/json"
	"net/http"

	"pbi-rag/internal/domain"
)

// pipelineMessage is the fixed human-readable summary returned by
// extract-and-index; the status field and failures list carry the outcome.
const pipelineMessage = "Data successfully extracted and indexed for RAG"

type extractRequest struct {
	DatasetID  string            `json:"datasetId"`
	DAXQueries map[string]string `json:"daxQueries"`
}

type extractResponse struct {
	Status           string                  `json:"status"`
	Message          string                  `json:"message"`
	ExtractedRecords int                     `json:"extractedRecords"`
	IndexedDocuments int                     `json:"indexedDocuments"`
	RunID            string                  `json:"runId"`
	Failures         []domain.QueryFailure   `json:"failures,omitempty"`
	Artifacts        []domain.StoredArtifact `json:"artifacts,omitempty"`
	IndexOutcomes    []domain.DocumentResult `json:"indexOutcomes,omitempty"`
}

// ExtractAndIndex runs the full extract → persist → index pipeline for the
// submitted queries and reports the aggregate outcome.
func (h *Handler) ExtractAndIndex(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("decode request body: %v", err))
		return
	}

	result, err := h.pipeline.Run(r.Context(), domain.ExtractRequest{
		DatasetID: req.DatasetID,
		Queries:   req.DAXQueries,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Status:           result.Status,
		Message:          pipelineMessage,
		ExtractedRecords: result.ExtractedRecords,
		IndexedDocuments: result.IndexedDocuments,
		RunID:            result.RunID,
		Failures:         result.Failures,
		Artifacts:        result.Artifacts,
		IndexOutcomes:    result.IndexOutcomes,
	})
}
