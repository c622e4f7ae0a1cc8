package transactions

import "github.com/go-chi/chi/v5"

// MountRoutes registers the transaction pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions", h.List)
	r.Group(func(r chi.Router) {
		if h.writes != nil {
			r.Use(h.writes)
		}
		r.Get("/transactions/new", h.Form)
		r.Post("/transactions", h.Create)
		r.Get("/transactions/{id}/delete", h.AskDelete)
		r.Post("/transactions/{id}/delete", h.Delete)
	})
}
