package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware_UsesRoutePattern ensures the metrics middleware labels
// by the chi route pattern instead of the raw URL path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Post("/sentences/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	pattern := httpRequestsTotal.WithLabelValues("/sentences/{id}", http.MethodPost, "200")
	before := testutil.ToFloat64(pattern)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sentences/42", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(pattern) - before; got != 1 {
		t.Fatalf("route pattern counter delta=%v", got)
	}
	if raw := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/sentences/42", http.MethodPost, "200")); raw != 0 {
		t.Fatalf("raw path used as label: %v", raw)
	}
}
