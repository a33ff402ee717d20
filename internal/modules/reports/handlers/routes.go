package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers report routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/latest", h.HandleLatest)
		r.Post("/trigger", h.HandleTrigger)
	})
}
