package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesBackendCalls(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveBackendCall("list accounts", 200, 20*time.Millisecond)
	metrics.ObserveBackendCall("list accounts", 0, time.Second)
	metrics.ObserveBackendCall("create customer", 422, time.Millisecond)

	body := scrape(t, metrics)
	for _, want := range []string{
		`backoffice_backend_calls_total{operation="list accounts",outcome="ok"} 1`,
		`backoffice_backend_calls_total{operation="list accounts",outcome="unavailable"} 1`,
		`backoffice_backend_calls_total{operation="create customer",outcome="rejected"} 1`,
		`backoffice_backend_call_duration_seconds_count{operation="list accounts"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body, got: %s", want, body)
		}
	}
}

func TestMetricsTrackListAndLiveActivity(t *testing.T) {
	metrics := NewMetrics()
	metrics.FetchIssued("customers")
	metrics.FetchIssued("customers")
	metrics.FetchDiscarded("customers")
	metrics.LiveConnected("accounts")
	metrics.LiveConnected("accounts")
	metrics.LiveDisconnected("accounts")
	metrics.DashboardCacheLookup("statistics", true)
	metrics.DashboardCacheLookup("statistics", false)

	body := scrape(t, metrics)
	for _, want := range []string{
		`backoffice_list_fetches_total{result="issued",screen="customers"} 2`,
		`backoffice_list_fetches_total{result="discarded",screen="customers"} 1`,
		`backoffice_live_connections{screen="accounts"} 1`,
		`backoffice_dashboard_cache_lookups_total{kind="statistics",result="hit"} 1`,
		`backoffice_dashboard_cache_lookups_total{kind="statistics",result="miss"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body, got: %s", want, body)
		}
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	metricsBody := scrape(t, metrics)
	if !strings.Contains(metricsBody, "backoffice_http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", metricsBody)
	}
	if !strings.Contains(metricsBody, "backoffice_http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", metricsBody)
	}
}

func TestNilMetricsAreInert(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveBackendCall("x", 200, time.Millisecond)
	metrics.FetchIssued("x")
	metrics.LiveConnected("x")
	metrics.DashboardCacheLookup("x", true)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics, got %d", rr.Code)
	}
}
