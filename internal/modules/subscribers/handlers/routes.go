package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers subscriber routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/subscribers", func(r chi.Router) {
		r.Post("/", h.HandleSubscribe)
		r.Get("/count", h.HandleCount)
		r.Delete("/{token}", h.HandleUnsubscribe)
	})
}
