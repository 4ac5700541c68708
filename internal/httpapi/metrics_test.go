package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware_CountsSimulateByRoute drives /simulate through the
// router and checks the request counter is labeled with the route pattern.
func TestMetricsMiddleware_CountsSimulateByRoute(t *testing.T) {
	h := NewMux(&mockService{ready: true})
	ok := httpRequestsTotal.WithLabelValues("/simulate", http.MethodPost, "200")
	bad := httpRequestsTotal.WithLabelValues("/simulate", http.MethodPost, "400")
	okBefore, badBefore := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	if w := postSimulate(t, h, `{"preset":"cw","seed":1}`); w.Code != http.StatusOK {
		t.Fatalf("simulate status=%d", w.Code)
	}
	if w := postSimulate(t, h, `{"seed":1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Fatalf("200 counter delta=%v", got)
	}
	if got := testutil.ToFloat64(bad) - badBefore; got != 1 {
		t.Fatalf("400 counter delta=%v", got)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{"excitond_http_requests_total", "excitond_http_request_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in /metrics output", name)
		}
	}
}
