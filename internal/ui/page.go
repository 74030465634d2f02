package ui

import (
	"time"

	"pbi-rag/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func appPage(title string, body ...Node) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Power BI RAG")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("preconnect"), Href("https://fonts.googleapis.com")),
			Link(Rel("preconnect"), Href("https://fonts.gstatic.com"), Attr("crossorigin", "")),
			Link(Rel("stylesheet"), Href("https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&display=swap")),
			Link(Rel("stylesheet"), Href("/ui/static/css/app.css")),
		),
		Body(
			Main(Class("app-shell"),
				Header(Class("topbar"),
					Div(Class("brand"),
						Strong(Text("Power BI RAG Extraction")),
						P(Class("muted"), Text("Extraction runs and service configuration")),
					),
					A(Href("/ui"), Class("btn"), Text("Overview")),
				),
				Section(Class("content"),
					H1(Class("page-title"), Text(title)),
					Group(body),
				),
			),
		),
	)
}

func errorPage(title, message string) Node {
	return appPage(
		title,
		Div(Class(cardClass()),
			P(Text(message)),
			P(A(Href("/ui"), Text("Back to overview"))),
		),
	)
}

func statusLabel(status string) Node {
	tone := ""
	switch status {
	case domain.RunStatusCompleted, domain.QueryStatusSucceeded:
		tone = " label-success"
	case domain.RunStatusFailed:
		tone = " label-danger"
	}
	return Span(Class("label"+tone), Text(status))
}

func cardClass(extra ...string) string {
	class := "card"
	for _, e := range extra {
		class += " " + e
	}
	return class
}

func mutedClass() string {
	return "muted"
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(time.RFC3339)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
