package customers

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

const basePath = "/customers"

// Handler serves the customer pages.
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
	Table view.ListPage
	Rows  []Customer
	Types []string
}

type formData struct {
	Form   CreateCustomerRequest
	Types  []string
	Errors map[string]string
}

type showData struct {
	Customer Customer
}

// List renders the customer table.
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
		h.logger.Error("list customers failed", "error", err, "database", db)
		status, fetchErr = view.StatusFor(err), backend.Message(err, "Failed to fetch customers")
	}
	h.pages.Render(w, r, status, "pages/customers/list.html", "Customers", listData{
		Table: view.NewListPage(basePath, state, opts, page.Total, fetchErr),
		Rows:  page.Rows,
		Types: Types,
	})
}

// Show renders one customer with links to their accounts.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	customer, err := h.service.Get(r.Context(), h.pages.Database(r), id)
	if err != nil {
		h.logger.Error("get customer failed", "error", err, "id", id)
		http.Error(w, shared.MessageOr(err, "Customer not found"), view.StatusFor(err))
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/customers/show.html", customer.FullName(), showData{Customer: customer})
}

// Form renders the create form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "pages/customers/form.html", "New customer", formData{
		Form:   CreateCustomerRequest{CustomerType: TypeIndividual},
		Types:  Types,
		Errors: map[string]string{},
	})
}

// Create posts the form to the bank API.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := CreateCustomerRequest{
		FirstName:    r.PostFormValue("firstName"),
		LastName:     r.PostFormValue("lastName"),
		Email:        r.PostFormValue("email"),
		Phone:        r.PostFormValue("phone"),
		CustomerType: r.PostFormValue("customerType"),
	}
	created, err := h.service.Create(r.Context(), h.pages.Database(r), req)
	if err != nil {
		h.logger.Warn("create customer failed", "error", err)
		errs := shared.FieldErrors(err)
		if errs == nil {
			errs = map[string]string{}
		}
		errs["general"] = shared.MessageOr(err, "Failed to create customer")
		h.pages.Render(w, r, view.StatusFor(err), "pages/customers/form.html", "New customer", formData{
			Form: req, Types: Types, Errors: errs,
		})
		return
	}
	h.pages.RedirectWithFlash(w, r, basePath+"?id="+strconv.FormatInt(created.CustomerID, 10), "success", "Customer created")
}

func (h *Handler) deletePage() view.DeletePage {
	return view.DeletePage{Noun: "customer", Back: basePath}
}

// AskDelete renders the delete confirmation.
func (h *Handler) AskDelete(w http.ResponseWriter, r *http.Request) {
	page := h.deletePage()
	id := chi.URLParam(r, "id")
	page.Action = basePath + "/" + id + "/delete"
	h.pages.AskDelete(w, r, page, id)
}

// Delete removes the customer once confirmed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	page := h.deletePage()
	id := chi.URLParam(r, "id")
	page.Action = basePath + "/" + id + "/delete"
	db := h.pages.Database(r)
	h.pages.ConfirmDelete(w, r, page, id, func(ctx context.Context) error {
		return h.service.Delete(ctx, db, id)
	})
}
