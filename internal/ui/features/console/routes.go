// Package console serves the interactive console over HTTP.
package console

import "github.com/go-chi/chi/v5"

// SetupRoutes registers the console feature routes.
func SetupRoutes(router chi.Router, h *Handlers) error {
	router.Route("/console", func(r chi.Router) {
		r.Get("/updates", h.UpdatesSSE)
		r.Post("/run", h.RunSSE)
		r.Post("/keys", h.KeysSSE)
		r.Post("/stop", h.StopSSE)
		r.Get("/serialized", h.Serialized)
		r.Get("/history", h.History)
	})
	return nil
}
