package transactions

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const basePath = "/transactions"

// Handler serves the transaction pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   *view.Responder
	writes  func(http.Handler) http.Handler
	now     func() time.Time
}

// NewHandler builds a Handler. writes guards every route that changes data.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder, writes func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, pages: pages, writes: writes, now: time.Now}
}

type listData struct {
	Table    view.ListPage
	Rows     []Transaction
	Types    []string
	Statuses []string
}

type formData struct {
	Form        TransactionForm
	Types       []string
	Currencies  []string
	Channels    []string
	AuthMethods []string
	Errors      map[string]string
}

// List renders the transaction table.
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
		h.logger.Error("list transactions failed", "error", err, "database", db)
		status, fetchErr = view.StatusFor(err), backend.Message(err, "Failed to fetch transactions")
	}
	h.pages.Render(w, r, status, "pages/transactions/list.html", "Transactions", listData{
		Table:    view.NewListPage(basePath, state, opts, page.Total, fetchErr),
		Rows:     page.Rows,
		Types:    Types,
		Statuses: Statuses,
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, form TransactionForm, errs map[string]string) {
	h.pages.Render(w, r, status, "pages/transactions/form.html", "New transaction", formData{
		Form:        form,
		Types:       Types,
		Currencies:  Currencies,
		Channels:    Channels,
		AuthMethods: AuthMethods,
		Errors:      errs,
	})
}

// Form renders the create form, prefilled from ?accountId=.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, TransactionForm{
		AccountID:       r.URL.Query().Get("accountId"),
		TransactionType: TypeDeposit,
		TransactionDate: h.now().Format(formDateLayout),
		Currency:        "USD",
	}, map[string]string{})
}

// Create posts a transaction.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := TransactionForm{
		AccountID:       r.PostFormValue("accountId"),
		TransactionType: r.PostFormValue("transactionType"),
		Amount:          r.PostFormValue("amount"),
		TransactionDate: r.PostFormValue("transactionDate"),
		Currency:        r.PostFormValue("currency"),
		Channel:         r.PostFormValue("channel"),
		AuthMethod:      r.PostFormValue("authMethod"),
		Location:        r.PostFormValue("location"),
		Description:     r.PostFormValue("description"),
	}
	created, err := h.service.Create(r.Context(), h.pages.Database(r), form)
	if err != nil {
		h.logger.Warn("create transaction failed", "error", err)
		errs := shared.FieldErrors(err)
		if errs == nil {
			errs = map[string]string{}
		}
		errs["general"] = shared.MessageOr(err, "Failed to create transaction")
		h.renderForm(w, r, view.StatusFor(err), form, errs)
		return
	}
	h.pages.RedirectWithFlash(w, r, basePath+"?accountId="+strconv.FormatInt(created.AccountID, 10), "success", "Transaction created")
}

func (h *Handler) deletePage(id string) view.DeletePage {
	return view.DeletePage{Noun: "transaction", Back: basePath, Action: basePath + "/" + id + "/delete"}
}

// AskDelete renders the delete confirmation.
func (h *Handler) AskDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.pages.AskDelete(w, r, h.deletePage(id), id)
}

// Delete removes the transaction once confirmed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	db := h.pages.Database(r)
	h.pages.ConfirmDelete(w, r, h.deletePage(id), id, func(ctx context.Context) error {
		return h.service.Delete(ctx, db, id)
	})
}
