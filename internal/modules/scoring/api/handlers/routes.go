package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers scoring routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scoring", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{symbol}", h.HandleScore)
	})
}
