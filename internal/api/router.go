package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the HTTP router for the API and websocket endpoint
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Get("/transcriptions", h.GetTranscriptions)
		r.Post("/pause", h.Pause)
		r.Post("/resume", h.Resume)
	})

	r.Get("/ws", h.HandleWebSocket)

	return r
}
