// Package ui serves the server-rendered ops pages: recent extraction runs
// and a redacted view of the service configuration.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	gomponents "maragu.dev/gomponents"

	"pbi-rag/internal/config"
	"pbi-rag/internal/domain"
)

// RunHistory is the slice of run storage the ops pages read from.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
	GetRun(ctx context.Context, id string) (*domain.RunRecord, []domain.RunQueryRecord, error)
}

type Handler struct {
	history RunHistory
	cfg     *config.Config
	logger  *slog.Logger
}

func NewHandler(history RunHistory, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		history: history,
		cfg:     cfg,
		logger:  logger.With("component", "ui"),
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func (h *Handler) renderServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	} else if errors.As(err, &validation) {
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	} else {
		h.logger.Error("page render failed", "error", err)
	}

	renderHTML(w, status, errorPage(title, message))
}
