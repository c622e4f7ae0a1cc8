package branches

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

type recordedCall struct {
	method string
	url    *url.URL
	body   string
}

type fakeAPI struct {
	mu      sync.Mutex
	calls   []recordedCall
	respond http.HandlerFunc
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: r.Method, url: r.URL, body: string(body)})
	f.mu.Unlock()
	f.respond(w, r)
}

func (f *fakeAPI) snapshot() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func respondJSON(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

var branchRows = []map[string]any{
	{"branch_id": 4, "name": "Dockside", "region": "East", "manager_name": "Kim Novak"},
	{"branch_id": 2, "name": "Hilltop", "region": "West", "manager_name": "Lee Park"},
}

func newBranchHandler(t *testing.T, api *fakeAPI) http.Handler {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pages := &view.Responder{Templates: engine, CSRF: shared.NewCSRFManager("k"), Logger: logger, DefaultDatabase: backend.DatabaseProd}
	h := NewHandler(logger, NewService(NewRepository(backend.NewClient(srv.URL, time.Second))), pages, nil)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListDecodesSnakeCaseAndSearchesLocally(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusOK, branchRows)}
	h := newBranchHandler(t, api)

	rec := get(h, "/branches?q=novak")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Dockside")
	assert.Contains(t, body, "Kim Novak")
	assert.NotContains(t, body, "Hilltop")

	calls := api.snapshot()
	require.Len(t, calls, 1)
	q := calls[0].url.Query()
	assert.Equal(t, "PROD", q.Get("database"))
	assert.Empty(t, q.Get("searchQuery"), "branch search never reaches the API")
	assert.Empty(t, q.Get("page"))
}

func TestListFailureShowsMessage(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusInternalServerError, map[string]string{"error": "db down"})}
	rec := get(newBranchHandler(t, api), "/branches")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func TestCreateRequiresEveryField(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusCreated, map[string]any{})}
	h := newBranchHandler(t, api)

	rec := post(h, "/branches", url.Values{"name": {"  "}, "region": {"Atlantis"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.snapshot())
	body := rec.Body.String()
	assert.Contains(t, body, "is required")
	assert.Contains(t, body, "must be a known region")
}

func TestCreatePostsCamelCase(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusCreated, map[string]any{"branch_id": 9})}
	rec := post(newBranchHandler(t, api), "/branches", url.Values{"name": {"Quay"}, "region": {"East"}, "managerName": {"Sam Oyelaran"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/branches?q=Quay", rec.Header().Get("Location"))
	calls := api.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.JSONEq(t, `{"name":"Quay","region":"East","managerName":"Sam Oyelaran"}`, calls[0].body)
}

func TestUpdateManagerUsesQueryParameters(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusOK, map[string]any{"branch_id": 4, "name": "Dockside", "region": "East", "manager_name": "Rae Quinn"})}
	h := newBranchHandler(t, api)

	rec := post(h, "/branches/4/manager", url.Values{"managerName": {" "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Manager name is required")
	assert.Empty(t, api.snapshot())

	rec = post(h, "/branches/4/manager", url.Values{"managerName": {"Rae Quinn"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	calls := api.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].method)
	assert.Equal(t, "/api/branches/4/manager", calls[0].url.Path)
	assert.Equal(t, "Rae Quinn", calls[0].url.Query().Get("managerName"))
	assert.Equal(t, "PROD", calls[0].url.Query().Get("database"))
	assert.Empty(t, calls[0].body)
}

func TestDeleteFailureKeepsConfirmation(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusConflict, map[string]string{"error": "Branch has staff"})}
	rec := post(newBranchHandler(t, api), "/branches/4/delete", url.Values{})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Branch has staff")
}
