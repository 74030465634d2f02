package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"pbi-rag/internal/domain"
)

// documentMetadata is serialized into the opaque metadata field of each
// search document.
type documentMetadata struct {
	Source    string   `json:"source"`
	Query     string   `json:"query"`
	Timestamp int64    `json:"timestamp"`
	RowCount  int      `json:"row_count"`
	Columns   []string `json:"columns"`
}

// buildDocuments renders one search document per produced record set, in
// sorted query-name order. Document ids carry the run id so re-running the
// same query names never overwrites earlier documents.
func buildDocuments(runID string, sets map[string]*domain.TabularRecordSet, now time.Time) []domain.SearchDocument {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]domain.SearchDocument, 0, len(names))
	for _, name := range names {
		rs := sets[name]
		meta, _ := json.Marshal(documentMetadata{
			Source:    "PowerBI",
			Query:     name,
			Timestamp: now.Unix(),
			RowCount:  len(rs.Rows),
			Columns:   rs.Columns,
		})
		docs = append(docs, domain.SearchDocument{
			ID:       fmt.Sprintf("powerbi_%s_%s", name, runID),
			Content:  rs.TextDump(),
			Title:    fmt.Sprintf("Power BI Data - %s", name),
			Metadata: string(meta),
		})
	}
	return docs
}
