package view

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Responder renders pages and flash redirects for the HTML handlers.
type Responder struct {
	Templates *Engine
	CSRF      *shared.CSRFManager
	Logger    *slog.Logger
	// DefaultDatabase applies until the operator picks one.
	DefaultDatabase backend.Database
}

// Database returns the operator's selected dataset for this request.
func (rs *Responder) Database(r *http.Request) backend.Database {
	return shared.SelectedDatabase(shared.SessionFromContext(r.Context()), rs.DefaultDatabase)
}

// Render writes the page template with the shared layout data.
func (rs *Responder) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := rs.CSRF.EnsureToken(sess)
	var flash *shared.FlashMessage
	operator := ""
	if sess != nil {
		flash = sess.PopFlash()
		operator = sess.Operator()
	}
	viewData := TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Database:    rs.Database(r),
		Databases:   backend.Databases(),
		Operator:    operator,
		Data:        data,
	}
	if err := rs.Templates.Render(w, status, name, viewData); err != nil {
		rs.logger().Error("render template", slog.Any("error", err), slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// RedirectWithFlash queues a notice and sends the browser to location.
func (rs *Responder) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (rs *Responder) logger() *slog.Logger {
	if rs.Logger != nil {
		return rs.Logger
	}
	return slog.Default()
}

// StatusFor maps a service error onto the status of the re-rendered page.
func StatusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return http.StatusNotFound
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
