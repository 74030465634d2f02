package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListDatasets passes the workspace's dataset listing through unchanged.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	body, err := h.datasets.ListDatasets(r.Context(), workspaceID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
