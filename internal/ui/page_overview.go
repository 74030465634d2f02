package ui

import (
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

type summaryItem struct {
	Label string
	Value string
}

type runRowData struct {
	ID        string
	URL       string
	DatasetID string
	Status    string
	Extracted string
	Indexed   string
	Failures  string
	Started   string
	Finished  string
}

func overviewPage(summary []summaryItem, runs []runRowData) gomponents.Node {
	summaryRows := make([]gomponents.Node, 0, len(summary))
	for i := range summary {
		item := summary[i]
		summaryRows = append(summaryRows, html.Div(html.Class("summary-row"), html.Span(html.Class(mutedClass()), gomponents.Text(item.Label)), html.Span(gomponents.Text(item.Value))))
	}

	runsCard := html.Div(html.Class(cardClass()), html.H2(gomponents.Text("Recent runs")), html.P(html.Class(mutedClass()), gomponents.Text("No runs recorded yet. Trigger one with POST /extract-and-index.")))
	if len(runs) > 0 {
		tableRows := make([]gomponents.Node, 0, len(runs))
		for i := range runs {
			row := runs[i]
			tableRows = append(tableRows, html.Tr(
				html.Td(html.A(html.Href(row.URL), gomponents.Text(shortID(row.ID)))),
				html.Td(gomponents.Text(row.DatasetID)),
				html.Td(statusLabel(row.Status)),
				html.Td(gomponents.Text(row.Extracted)),
				html.Td(gomponents.Text(row.Indexed)),
				html.Td(gomponents.Text(row.Failures)),
				html.Td(gomponents.Text(row.Started)),
				html.Td(gomponents.Text(row.Finished)),
			))
		}
		runsCard = html.Div(html.Class(cardClass("table-wrap")), html.H2(gomponents.Text("Recent runs")), html.Table(
			html.THead(html.Tr(html.Th(gomponents.Text("Run")), html.Th(gomponents.Text("Dataset")), html.Th(gomponents.Text("Status")), html.Th(gomponents.Text("Extracted")), html.Th(gomponents.Text("Indexed")), html.Th(gomponents.Text("Failures")), html.Th(gomponents.Text("Started")), html.Th(gomponents.Text("Finished")))),
			html.TBody(gomponents.Group(tableRows)),
		))
	}

	return appPage(
		"Overview",
		html.Div(html.Class(cardClass()), html.H2(gomponents.Text("Configuration")), gomponents.Group(summaryRows)),
		runsCard,
	)
}
