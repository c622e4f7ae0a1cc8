package branches

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const basePath = "/branches"

// Handler serves the branch pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   *view.Responder
	writes  func(http.Handler) http.Handler
}

// NewHandler builds a Handler. writes guards every route that changes data.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder, writes func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, pages: pages, writes: writes}
}

type listData struct {
	Table   view.ListPage
	Rows    []Branch
	Regions []string
}

type formData struct {
	Form    CreateBranchRequest
	Regions []string
	Errors  map[string]string
}

type managerData struct {
	ID          string
	ManagerName string
	Error       string
}

// List renders the branch table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	opts := ListOptions()
	if target, ok := view.IntentRedirect(r, IntentKeys, opts); ok {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	state := listview.ParseState(r.URL.Query(), opts)
	db := h.pages.Database(r)
	page, err := h.service.List(r.Context(), db, state)
	status, fetchErr := http.StatusOK, ""
	if err != nil {
		h.logger.Error("list branches failed", "error", err, "database", db)
		status, fetchErr = view.StatusFor(err), backend.Message(err, "Failed to fetch branches")
	}
	h.pages.Render(w, r, status, "pages/branches/list.html", "Branches", listData{
		Table:   view.NewListPage(basePath, state, opts, page.Total, fetchErr),
		Rows:    page.Rows,
		Regions: Regions,
	})
}

// Form renders the create form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "pages/branches/form.html", "New branch", formData{
		Regions: Regions,
		Errors:  map[string]string{},
	})
}

// Create adds a branch.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := CreateBranchRequest{
		Name:        r.PostFormValue("name"),
		Region:      r.PostFormValue("region"),
		ManagerName: r.PostFormValue("managerName"),
	}
	created, err := h.service.Create(r.Context(), h.pages.Database(r), req)
	if err != nil {
		h.logger.Warn("create branch failed", "error", err)
		errs := shared.FieldErrors(err)
		if errs == nil {
			errs = map[string]string{}
		}
		errs["general"] = shared.MessageOr(err, "Failed to add branch")
		h.pages.Render(w, r, view.StatusFor(err), "pages/branches/form.html", "New branch", formData{
			Form: req, Regions: Regions, Errors: errs,
		})
		return
	}
	h.pages.RedirectWithFlash(w, r, basePath+"?q="+url.QueryEscape(created.Name), "success", "Branch "+created.Name+" added")
}

// ManagerForm renders the manager editor, prefilled from ?managerName=.
func (h *Handler) ManagerForm(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "pages/branches/manager.html", "Branch manager", managerData{
		ID:          chi.URLParam(r, "id"),
		ManagerName: r.URL.Query().Get("managerName"),
	})
}

// UpdateManager replaces the branch manager.
func (h *Handler) UpdateManager(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	req := UpdateManagerRequest{ManagerName: r.PostFormValue("managerName")}
	updated, err := h.service.UpdateManager(r.Context(), h.pages.Database(r), id, req)
	if err != nil {
		h.logger.Warn("update branch manager failed", "error", err, "id", id)
		msg := shared.MessageOr(err, "Failed to update manager")
		if fields := shared.FieldErrors(err); fields["managerName"] != "" {
			msg = "Manager name " + fields["managerName"]
		}
		h.pages.Render(w, r, view.StatusFor(err), "pages/branches/manager.html", "Branch manager", managerData{
			ID: id, ManagerName: req.ManagerName, Error: msg,
		})
		return
	}
	name := updated.ManagerName
	if name == "" {
		name = req.ManagerName
	}
	h.pages.RedirectWithFlash(w, r, basePath+"?id="+id, "success", "Branch "+id+" is now managed by "+name)
}

func (h *Handler) deletePage(id string) view.DeletePage {
	return view.DeletePage{Noun: "branch", Back: basePath, Action: basePath + "/" + id + "/delete"}
}

// AskDelete renders the delete confirmation.
func (h *Handler) AskDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.pages.AskDelete(w, r, h.deletePage(id), id)
}

// Delete removes the branch once confirmed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	db := h.pages.Database(r)
	h.pages.ConfirmDelete(w, r, h.deletePage(id), id, func(ctx context.Context) error {
		return h.service.Delete(ctx, db, id)
	})
}
