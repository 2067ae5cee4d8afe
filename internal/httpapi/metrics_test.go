package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware_EmitsRequestCounters verifies that wrapping a handler
// with MetricsMiddleware results in request metrics being exposed via the
// Prometheus /metrics handler.
func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	body := mrr.Body.Bytes()
	if !bytes.Contains(body, []byte("decoderd_http_requests_total")) {
		previewLen := len(body)
		if previewLen > 200 {
			previewLen = 200
		}
		t.Fatalf("expected to find decoderd_http_requests_total in metrics; got: %q", string(body[:previewLen]))
	}
}

func TestStatusRecorder_ForwardsFlush(t *testing.T) {
	rr := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rr, status: http.StatusOK}
	var w http.ResponseWriter = sr
	f, ok := w.(http.Flusher)
	if !ok {
		t.Fatalf("statusRecorder does not implement http.Flusher")
	}
	f.Flush()
	if !rr.Flushed {
		t.Fatalf("flush not forwarded")
	}
}

func TestIncrementRejected(t *testing.T) {
	before := testutil.ToFloat64(rejectedTotal.WithLabelValues("unspecified"))
	IncrementRejected("")
	if got := testutil.ToFloat64(rejectedTotal.WithLabelValues("unspecified")) - before; got != 1 {
		t.Fatalf("delta=%v", got)
	}
}

func TestTranslateRejectionsCounted(t *testing.T) {
	before := testutil.ToFloat64(rejectedTotal.WithLabelValues("invalid_body"))
	postTranslate(t, NewMux(&mockService{}), "{")
	if got := testutil.ToFloat64(rejectedTotal.WithLabelValues("invalid_body")) - before; got != 1 {
		t.Fatalf("delta=%v", got)
	}
}
