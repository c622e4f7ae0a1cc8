package accounts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const basePath = "/accounts"

// Handler serves the account pages.
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
	Table    view.ListPage
	Rows     []Account
	Types    []string
	Statuses []string
}

type formData struct {
	Form       AccountForm
	Types      []string
	Statuses   []string
	Currencies []string
	Errors     map[string]string
}

type statusData struct {
	ID       string
	Status   string
	Statuses []string
	Error    string
}

// List renders the account table.
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
		h.logger.Error("list accounts failed", "error", err, "database", db)
		status, fetchErr = view.StatusFor(err), backend.Message(err, "Failed to fetch accounts")
	}
	h.pages.Render(w, r, status, "pages/accounts/list.html", "Accounts", listData{
		Table:    view.NewListPage(basePath, state, opts, page.Total, fetchErr),
		Rows:     page.Rows,
		Types:    Types,
		Statuses: Statuses,
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, form AccountForm, errs map[string]string) {
	h.pages.Render(w, r, status, "pages/accounts/form.html", "New account", formData{
		Form:       form,
		Types:      Types,
		Statuses:   Statuses,
		Currencies: Currencies,
		Errors:     errs,
	})
}

// Form renders the create form, prefilled from ?customerId=.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, AccountForm{
		CustomerID: r.URL.Query().Get("customerId"),
		Status:     StatusActive,
		Currency:   "USD",
	}, map[string]string{})
}

// Create opens an account.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := AccountForm{
		CustomerID:  r.PostFormValue("customerId"),
		AccountType: r.PostFormValue("accountType"),
		Status:      r.PostFormValue("status"),
		Balance:     r.PostFormValue("balance"),
		Currency:    r.PostFormValue("currency"),
	}
	created, err := h.service.Create(r.Context(), h.pages.Database(r), form)
	if err != nil {
		h.logger.Warn("create account failed", "error", err)
		errs := shared.FieldErrors(err)
		if errs == nil {
			errs = map[string]string{}
		}
		errs["general"] = shared.MessageOr(err, "Failed to create account")
		h.renderForm(w, r, view.StatusFor(err), form, errs)
		return
	}
	h.pages.RedirectWithFlash(w, r, basePath+"?q="+strconv.FormatInt(created.AccountID, 10), "success", "Account created")
}

// StatusForm renders the status editor.
func (h *Handler) StatusForm(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "pages/accounts/status.html", "Account status", statusData{
		ID:       chi.URLParam(r, "id"),
		Status:   r.URL.Query().Get("status"),
		Statuses: Statuses,
	})
}

// UpdateStatus patches the account status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	req := UpdateStatusRequest{Status: r.PostFormValue("status")}
	if _, err := h.service.UpdateStatus(r.Context(), h.pages.Database(r), id, req); err != nil {
		h.logger.Warn("update account status failed", "error", err, "id", id)
		msg := shared.MessageOr(err, "Failed to update account")
		if fields := shared.FieldErrors(err); fields["status"] != "" {
			msg = "Status " + fields["status"]
		}
		h.pages.Render(w, r, view.StatusFor(err), "pages/accounts/status.html", "Account status", statusData{
			ID: id, Status: req.Status, Statuses: Statuses, Error: msg,
		})
		return
	}
	h.pages.RedirectWithFlash(w, r, basePath+"?q="+id, "success", "Account "+id+" is now "+req.Status)
}

func (h *Handler) deletePage(id string) view.DeletePage {
	return view.DeletePage{Noun: "account", Back: basePath, Action: basePath + "/" + id + "/delete"}
}

// AskDelete renders the delete confirmation.
func (h *Handler) AskDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.pages.AskDelete(w, r, h.deletePage(id), id)
}

// Delete removes the account once confirmed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	db := h.pages.Database(r)
	h.pages.ConfirmDelete(w, r, h.deletePage(id), id, func(ctx context.Context) error {
		return h.service.Delete(ctx, db, id)
	})
}
