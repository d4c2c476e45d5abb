package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API, the event stream and the page.
// events may be nil.
func NewRouter(h *Handler, events http.Handler, page http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if page != nil {
		r.Get("/", page.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/metadata", h.GetMetadata)
		r.Post("/metadata", h.PostMetadata)
		r.Get("/timeline", h.GetTimeline)
		r.Post("/capture", h.Capture)
		r.Get("/scratchpad", h.GetScratchpad)
		r.Post("/scratchpad", h.PostScratchpad)
		r.Post("/generate", h.Generate)
		r.Post("/summarize", h.Summarize)
		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})
	return r
}
