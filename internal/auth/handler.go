package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const loginPath = "/auth/login"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	pages          *view.Responder
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		pages:          pages,
		sessionManager: sessions,
		validator:      shared.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Next     string `json:"-"`
}

type loginPageData struct {
	Form     loginForm
	Errors   map[string]string
	Disabled bool
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "pages/login.html", "Sign in", loginPageData{
		Form:     loginForm{Next: safeNext(r.URL.Query().Get("next"))},
		Errors:   map[string]string{},
		Disabled: !h.service.Enabled(),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Next:     safeNext(r.PostFormValue("next")),
	}

	errs := map[string]string{}
	if err := h.validator.Struct(form); err != nil {
		errs = shared.FieldErrors(shared.FromValidator(err, map[string]string{"password": "must be at least 8 characters"}))
		if errs == nil {
			errs = map[string]string{"general": "Invalid email or password"}
		}
	}
	if len(errs) == 0 {
		op, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err == nil && sess != nil {
			sess.SetOperator(op.Email)
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back"})
			h.logger.Info("operator signed in", slog.String("operator", op.Email))
			http.Redirect(w, r, form.Next, http.StatusSeeOther)
			return
		}
		if sess == nil {
			h.logger.Error("session missing during login")
		}
		errs["general"] = "Invalid email or password"
	}

	form.Password = ""
	h.pages.Render(w, r, http.StatusBadRequest, "pages/login.html", "Sign in", loginPageData{Form: form, Errors: errs})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.logger.Info("operator signed out", slog.String("operator", sess.Operator()))
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// RequireOperator sends anonymous requests to the login page. It is a no-op
// when sign in is disabled.
func (h *Handler) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.service.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.Operator() != "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method != http.MethodGet || strings.HasPrefix(r.URL.Path, "/live/") {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, loginPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
	})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
