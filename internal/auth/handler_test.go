package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
	_ "github.com/odyssey-erp/backoffice/testing"
)

type fixture struct {
	handler  *auth.Handler
	sessions *shared.SessionManager
	router   chi.Router
}

func newFixture(t *testing.T, enabled bool) *fixture {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessions := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	pages := &view.Responder{Templates: templates, CSRF: shared.NewCSRFManager("csrfsecret"), DefaultDatabase: backend.DatabaseSeed}
	repo := auth.NewStaticRepository(auth.Operator{Email: "Ops@Bank.test", PasswordHash: string(hashed)})
	handler := auth.NewHandler(nil, auth.NewService(repo, enabled), pages, sessions)

	r := chi.NewRouter()
	r.Use(sessions.Middleware(nil))
	r.Route("/auth", handler.MountRoutes)
	r.With(handler.RequireOperator).Get("/accounts", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("accounts"))
	})
	return &fixture{handler: handler, sessions: sessions, router: r}
}

func (f *fixture) do(t *testing.T, method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestLoginPage(t *testing.T) {
	f := newFixture(t, true)
	res := f.do(t, http.MethodGet, "/auth/login?next=/accounts", nil, nil)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "<form") || !strings.Contains(body, `value="/accounts"`) {
		t.Fatalf("expected login form carrying next, got %s", body)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t, true)
	res := f.do(t, http.MethodPost, "/auth/login", url.Values{"email": {"ops@bank.test"}, "password": {"wrongpass"}}, nil)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid email or password") {
		t.Fatalf("expected error message in response")
	}
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t, true)
	res := f.do(t, http.MethodPost, "/auth/login", url.Values{"email": {"nope"}, "password": {"short"}}, nil)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "must be a valid email") || !strings.Contains(body, "must be at least 8 characters") {
		t.Fatalf("expected field errors, got %s", body)
	}
}

func TestLoginSuccessGuardsNext(t *testing.T) {
	cases := map[string]string{
		"/accounts?q=1":       "/accounts?q=1",
		"//evil.example/":     "/",
		"https://evil.example": "/",
		"":                    "/",
	}
	for next, want := range cases {
		f := newFixture(t, true)
		res := f.do(t, http.MethodPost, "/auth/login", url.Values{"email": {"ops@bank.test"}, "password": {"correctpass"}, "next": {next}}, nil)
		if res.Code != http.StatusSeeOther {
			t.Fatalf("next %q: expected 303, got %d", next, res.Code)
		}
		if got := res.Header().Get("Location"); got != want {
			t.Fatalf("next %q: expected redirect to %q, got %q", next, want, got)
		}
	}
}

func TestRequireOperator(t *testing.T) {
	f := newFixture(t, true)

	res := f.do(t, http.MethodGet, "/accounts", nil, nil)
	if res.Code != http.StatusSeeOther || !strings.HasPrefix(res.Header().Get("Location"), "/auth/login?next=") {
		t.Fatalf("expected redirect to login, got %d %q", res.Code, res.Header().Get("Location"))
	}

	login := f.do(t, http.MethodPost, "/auth/login", url.Values{"email": {"ops@bank.test"}, "password": {"correctpass"}}, nil)
	res = f.do(t, http.MethodGet, "/accounts", nil, login.Result().Cookies())
	if res.Code != http.StatusOK || res.Body.String() != "accounts" {
		t.Fatalf("expected signed in access, got %d", res.Code)
	}

	logout := f.do(t, http.MethodPost, "/auth/logout", url.Values{}, login.Result().Cookies())
	if logout.Code != http.StatusSeeOther {
		t.Fatalf("expected logout redirect, got %d", logout.Code)
	}
	res = f.do(t, http.MethodGet, "/accounts", nil, login.Result().Cookies())
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected session gone after logout, got %d", res.Code)
	}
}

func TestRequireOperatorDisabled(t *testing.T) {
	f := newFixture(t, false)
	res := f.do(t, http.MethodGet, "/accounts", nil, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected open access when sign in is disabled, got %d", res.Code)
	}
	page := f.do(t, http.MethodGet, "/auth/login", nil, nil)
	if !strings.Contains(page.Body.String(), "not configured") {
		t.Fatalf("expected disabled notice")
	}
}

func TestStaticRepository(t *testing.T) {
	repo := auth.NewStaticRepository(auth.Operator{Email: "a@b.c", PasswordHash: "x"}, auth.Operator{Email: "no-hash@b.c"})
	if repo.Len() != 1 {
		t.Fatalf("expected one usable operator, got %d", repo.Len())
	}
	if _, err := repo.FindByEmail(context.Background(), " A@B.C "); err != nil {
		t.Fatalf("expected case insensitive lookup: %v", err)
	}
}
