package dashboard

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const requestTimeout = 5 * time.Second

// Loader is the part of Service the handler needs.
type Loader interface {
	Overview(ctx context.Context, db backend.Database) (Overview, error)
}

// Handler serves the home page.
type Handler struct {
	logger  *slog.Logger
	service Loader
	pages   *view.Responder
	docsURL string
}

// NewHandler builds a Handler. docsURL points at the bank API documentation.
func NewHandler(logger *slog.Logger, service Loader, pages *view.Responder, docsURL string) *Handler {
	return &Handler{logger: logger, service: service, pages: pages, docsURL: docsURL}
}

// MountRoutes registers GET /.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Home)
}

type homeData struct {
	Statistics  Statistics
	Error       string
	Chart       template.HTML
	CountsError string
	DocsURL     string
}

// Home renders the statistics cards and the account status chart.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	db := h.pages.Database(r)
	data := homeData{DocsURL: h.docsURL}
	status := http.StatusOK
	ov, err := h.service.Overview(ctx, db)
	switch {
	case err != nil:
		h.logger.Error("load dashboard failed", slog.Any("error", err), slog.String("database", db.String()))
		status = view.StatusFor(err)
		data.Error = "Failed to fetch statistics"
	case ov.CountsErr != nil:
		h.logger.Warn("load account status counts failed", slog.Any("error", ov.CountsErr))
		data.Statistics = ov.Statistics
		data.CountsError = "Account status breakdown unavailable"
	default:
		data.Statistics = ov.Statistics
		chart, err := StatusChart(ChartWidth, ChartHeight, ov.Counts, ChartOpts{
			Title:       "Accounts by status",
			Description: "Number of accounts in each status for the " + db.Label() + " database",
		})
		if err != nil {
			h.logger.Error("render status chart", slog.Any("error", err))
			data.CountsError = "Account status breakdown unavailable"
		}
		data.Chart = chart
	}
	h.pages.Render(w, r, status, "pages/home.html", "Home", data)
}
