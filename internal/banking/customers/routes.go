package customers

import "github.com/go-chi/chi/v5"

// MountRoutes registers the customer pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.List)
	r.Get("/customers/{id:[0-9]+}", h.Show)
	r.Group(func(r chi.Router) {
		if h.writes != nil {
			r.Use(h.writes)
		}
		r.Get("/customers/new", h.Form)
		r.Post("/customers", h.Create)
		r.Get("/customers/{id}/delete", h.AskDelete)
		r.Post("/customers/{id}/delete", h.Delete)
	})
}
