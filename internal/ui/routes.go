package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pbi-rag/internal/ui/assets"
)

// MountRoutes attaches the ops pages to r. Static assets stay outside the
// auth group so the stylesheet loads on error pages too.
func MountRoutes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Home)
		r.Get("/runs/{runID}", h.RunDetail)
	})
}
