package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers currency routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/currency", func(r chi.Router) {
		r.Get("/latest/{code}", h.HandleLatest)
		r.Get("/series/{code}", h.HandleSeries)
	})
}
