package ui

import (
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

type queryRowData struct {
	Name     string
	Status   string
	Stage    string
	RowCount string
	BlobPath string
	Error    string
}

type runDetailData struct {
	Run     runRowData
	Queries []queryRowData
}

func runDetailPage(d runDetailData) gomponents.Node {
	queryRows := make([]gomponents.Node, 0, len(d.Queries))
	for i := range d.Queries {
		q := d.Queries[i]
		queryRows = append(queryRows, html.Tr(
			html.Td(gomponents.Text(q.Name)),
			html.Td(statusLabel(q.Status)),
			html.Td(gomponents.Text(q.Stage)),
			html.Td(gomponents.Text(q.RowCount)),
			html.Td(html.Code(gomponents.Text(q.BlobPath))),
			html.Td(gomponents.Text(q.Error)),
		))
	}

	return appPage(
		"Run "+shortID(d.Run.ID),
		html.Div(html.Class(cardClass()),
			html.P(html.Span(html.Class(mutedClass()), gomponents.Text("Run ID: ")), html.Code(gomponents.Text(d.Run.ID))),
			html.P(html.Span(html.Class(mutedClass()), gomponents.Text("Dataset: ")), gomponents.Text(d.Run.DatasetID)),
			html.P(statusLabel(d.Run.Status)),
			html.P(html.Span(html.Class(mutedClass()), gomponents.Text("Extracted records: ")), gomponents.Text(d.Run.Extracted)),
			html.P(html.Span(html.Class(mutedClass()), gomponents.Text("Indexed documents: ")), gomponents.Text(d.Run.Indexed)),
			html.P(html.Span(html.Class(mutedClass()), gomponents.Text("Started: ")), gomponents.Text(d.Run.Started)),
			html.P(html.Span(html.Class(mutedClass()), gomponents.Text("Finished: ")), gomponents.Text(d.Run.Finished)),
		),
		html.Div(html.Class(cardClass("table-wrap")), html.H2(gomponents.Text("Queries")), html.Table(
			html.THead(html.Tr(html.Th(gomponents.Text("Query")), html.Th(gomponents.Text("Status")), html.Th(gomponents.Text("Stage")), html.Th(gomponents.Text("Rows")), html.Th(gomponents.Text("Blob path")), html.Th(gomponents.Text("Error")))),
			html.TBody(gomponents.Group(queryRows)),
		)),
	)
}
