package transactions

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

var transactionPage = map[string]any{
	"transactions": []map[string]any{{
		"transactionId": 901, "accountId": 7, "transactionType": "Withdrawal",
		"transactionDate": "2024-03-09T14:30:00", "amount": 80, "currency": "GBP",
		"channel": "ATM", "location": "Leeds", "status": "Completed",
	}},
	"totalCount": 1,
}

func newTransactionHandler(t *testing.T, api *fakeAPI) http.Handler {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pages := &view.Responder{Templates: engine, CSRF: shared.NewCSRFManager("k"), Logger: logger, DefaultDatabase: backend.DatabaseSeed}
	h := NewHandler(logger, NewService(NewRepository(backend.NewClient(srv.URL, time.Second))), pages, nil)
	h.now = func() time.Time { return time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC) }
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

func TestAccountIntentSeedsSearchAndFilter(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusOK, transactionPage)}
	h := newTransactionHandler(t, api)

	rec := get(h, "/transactions?accountId=7")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "7", loc.Query().Get("q"))
	assert.Equal(t, "7", loc.Query().Get("accountIds"))
	assert.Empty(t, loc.Query().Get("accountId"))

	require.Equal(t, http.StatusOK, get(h, loc.String()).Code)
	calls := api.snapshot()
	require.Len(t, calls, 1)
	q := calls[0].url.Query()
	assert.Equal(t, "7", q.Get("accountId"))
	assert.Equal(t, "7", q.Get("accountIds"))
	assert.Empty(t, q.Get("searchQuery"))
}

func TestListNormalisesAccountIDs(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusOK, transactionPage)}
	h := newTransactionHandler(t, api)

	rec := get(h, "/transactions?accountIds="+url.QueryEscape(" 3, ,4 ")+"&transactionType=Fee&q=atm")
	require.Equal(t, http.StatusOK, rec.Code)

	calls := api.snapshot()
	require.Len(t, calls, 1)
	q := calls[0].url.Query()
	assert.Equal(t, "3,4", q.Get("accountIds"))
	assert.Equal(t, "Fee", q.Get("transactionType"))
	assert.Equal(t, "atm", q.Get("searchQuery"))
	assert.Equal(t, "transaction_date", q.Get("sortBy"))
	assert.Equal(t, "desc", q.Get("sortOrder"))
}

func TestListRendersRows(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusOK, transactionPage)}
	body := get(newTransactionHandler(t, api), "/transactions").Body.String()

	assert.Contains(t, body, `/accounts?searchQuery=7`)
	assert.Contains(t, body, "£")
	assert.Contains(t, body, "80.00")
	assert.Contains(t, body, "09 Mar 2024 14:30")
	assert.Contains(t, body, "Leeds")
}

func TestFormPrefillsAccountAndNow(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusOK, transactionPage)}
	body := get(newTransactionHandler(t, api), "/transactions/new?accountId=12").Body.String()

	assert.Contains(t, body, `value="12"`)
	assert.Contains(t, body, `value="2024-03-09T14:30"`)
}

func TestCreateAppendsSecondsAndDefaults(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusCreated, map[string]any{"transactionId": 5, "accountId": 7})}
	h := newTransactionHandler(t, api)

	rec := post(h, "/transactions", url.Values{
		"accountId":       {"7"},
		"amount":          {"19.99"},
		"transactionDate": {"2024-03-09T14:30"},
		"channel":         {"Online"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/transactions?accountId=7", rec.Header().Get("Location"))
	calls := api.snapshot()
	require.Len(t, calls, 1)
	var sent CreateTransactionRequest
	require.NoError(t, json.Unmarshal([]byte(calls[0].body), &sent))
	assert.Equal(t, CreateTransactionRequest{
		AccountID:       7,
		TransactionType: TypeDeposit,
		Amount:          19.99,
		TransactionDate: "2024-03-09T14:30:00",
		Currency:        "USD",
		Channel:         "Online",
	}, sent)
}

func TestCreateRejectsBadInputLocally(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusCreated, map[string]any{})}
	h := newTransactionHandler(t, api)

	rec := post(h, "/transactions", url.Values{
		"accountId":       {"seven"},
		"amount":          {"-4"},
		"transactionDate": {"yesterday"},
		"channel":         {"Pigeon"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.snapshot())
	body := rec.Body.String()
	assert.Contains(t, body, "must be an account number")
	assert.Contains(t, body, "must be greater than zero")
	assert.Contains(t, body, "must be a date and time")
	assert.Contains(t, body, "must be a known channel")
}

func TestCreateShowsBackendMessage(t *testing.T) {
	api := &fakeAPI{respond: respondJSON(http.StatusBadRequest, map[string]string{"message": "Insufficient funds"})}
	rec := post(newTransactionHandler(t, api), "/transactions", url.Values{
		"accountId": {"7"}, "amount": {"1000"}, "transactionDate": {"2024-03-09T14:30"}, "transactionType": {"Withdrawal"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient funds")
}

func TestDeleteCallsAPI(t *testing.T) {
	api := &fakeAPI{respond: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }}
	rec := post(newTransactionHandler(t, api), "/transactions/901/delete", url.Values{})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	calls := api.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodDelete, calls[0].method)
	assert.Equal(t, "/api/transactions/901", calls[0].url.Path)
	assert.Equal(t, "SEED", calls[0].url.Query().Get("database"))
}
