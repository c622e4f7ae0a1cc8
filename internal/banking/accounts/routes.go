package accounts

import "github.com/go-chi/chi/v5"

// MountRoutes registers the account pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.List)
	r.Group(func(r chi.Router) {
		if h.writes != nil {
			r.Use(h.writes)
		}
		r.Get("/accounts/new", h.Form)
		r.Post("/accounts", h.Create)
		r.Get("/accounts/{id}/status", h.StatusForm)
		r.Post("/accounts/{id}/status", h.UpdateStatus)
		r.Get("/accounts/{id}/delete", h.AskDelete)
		r.Post("/accounts/{id}/delete", h.Delete)
	})
}
