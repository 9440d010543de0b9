package handler

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/v1", func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware())
		}
		r.Post("/measure", h.Measure)
		r.Post("/resize", h.Resize)
	})
}
