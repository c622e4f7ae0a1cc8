package branches

import "github.com/go-chi/chi/v5"

// MountRoutes registers the branch pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/branches", h.List)
	r.Group(func(r chi.Router) {
		if h.writes != nil {
			r.Use(h.writes)
		}
		r.Get("/branches/new", h.Form)
		r.Post("/branches", h.Create)
		r.Get("/branches/{id}/manager", h.ManagerForm)
		r.Post("/branches/{id}/manager", h.UpdateManager)
		r.Get("/branches/{id}/delete", h.AskDelete)
		r.Post("/branches/{id}/delete", h.Delete)
	})
}
