package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chart routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/price/{symbol}.png", h.HandlePricePNG)
		r.Get("/price/{symbol}", h.HandlePriceLine)
		r.Post("/histogram", h.HandleHistogram)
	})
}
