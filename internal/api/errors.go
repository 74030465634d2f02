package api

import (
	"errors"
	"net/http"

	"pbi-rag/internal/domain"
	"pbi-rag/internal/middleware"
)

// Stable error codes surfaced in error response bodies.
const (
	codeValidation  = "VALIDATION_ERROR"
	codeNotFound    = "NOT_FOUND"
	codeAuth        = "AUTH_ERROR"
	codeExtraction  = "EXTRACTION_ERROR"
	codePersistence = "PERSISTENCE_ERROR"
	codeIndexing    = "INDEXING_ERROR"
	codeInternal    = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// classifyError maps a domain error to an HTTP status and a stable code.
// Upstream faults (auth, extraction, persistence, indexing) all surface as
// server errors; the code distinguishes them.
func classifyError(err error) (int, string) {
	switch {
	case errors.As(err, new(*domain.ValidationError)):
		return http.StatusBadRequest, codeValidation
	case errors.As(err, new(*domain.NotFoundError)):
		return http.StatusNotFound, codeNotFound
	case errors.As(err, new(*domain.AuthError)):
		return http.StatusInternalServerError, codeAuth
	case errors.As(err, new(*domain.ExtractionError)):
		return http.StatusInternalServerError, codeExtraction
	case errors.As(err, new(*domain.PersistenceError)):
		return http.StatusInternalServerError, codePersistence
	case errors.As(err, new(*domain.IndexingError)):
		return http.StatusInternalServerError, codeIndexing
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "code", code, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
}
