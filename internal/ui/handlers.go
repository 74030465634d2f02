package ui

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pbi-rag/internal/domain"
)

const recentRunLimit = 20

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	runs, err := h.history.ListRuns(r.Context(), recentRunLimit)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}

	rows := make([]runRowData, 0, len(runs))
	for i := range runs {
		rows = append(rows, runRowFromRecord(runs[i]))
	}

	renderHTML(w, http.StatusOK, overviewPage(h.configSummary(), rows))
}

func (h *Handler) RunDetail(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run, queries, err := h.history.GetRun(r.Context(), runID)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}

	queryRows := make([]queryRowData, 0, len(queries))
	for i := range queries {
		q := queries[i]
		queryRows = append(queryRows, queryRowData{
			Name:     q.QueryName,
			Status:   q.Status,
			Stage:    orDash(q.Stage),
			RowCount: strconv.Itoa(q.RowCount),
			BlobPath: orDash(q.BlobPath),
			Error:    orDash(q.Error),
		})
	}

	renderHTML(w, http.StatusOK, runDetailPage(runDetailData{
		Run:     runRowFromRecord(*run),
		Queries: queryRows,
	}))
}

func runRowFromRecord(run domain.RunRecord) runRowData {
	return runRowData{
		ID:        run.ID,
		URL:       "/ui/runs/" + run.ID,
		DatasetID: run.DatasetID,
		Status:    run.Status,
		Extracted: strconv.Itoa(run.ExtractedRecords),
		Indexed:   strconv.Itoa(run.IndexedDocuments),
		Failures:  strconv.Itoa(run.FailureCount),
		Started:   formatTime(run.StartedAt),
		Finished:  formatTime(run.FinishedAt),
	}
}

// configSummary exposes the operational knobs on the overview page.
// Credentials and keys stay out.
func (h *Handler) configSummary() []summaryItem {
	cfg := h.cfg
	return []summaryItem{
		{Label: "Storage backend", Value: cfg.StorageBackend},
		{Label: "Storage container", Value: cfg.StorageContainer},
		{Label: "Search endpoint", Value: cfg.SearchEndpoint()},
		{Label: "Search index", Value: cfg.SearchIndexName},
		{Label: "Auth mode", Value: cfg.AuthMode},
		{Label: "Failure policy", Value: cfg.ExtractFailurePolicy},
		{Label: "Extract concurrency", Value: strconv.Itoa(cfg.ExtractConcurrency)},
		{Label: "Schedule file", Value: orDash(cfg.ScheduleFile)},
	}
}
