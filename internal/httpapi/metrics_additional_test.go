package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"excitond/internal/experiment"
)

func TestIncrementBackpressure_IncrementsCounter(t *testing.T) {
	baseline := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue_full"))
	IncrementBackpressure("queue_full")
	IncrementBackpressure("queue_full")
	got := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue_full"))
	if got != baseline+2 {
		t.Fatalf("expected backpressure counter %v, got %v", baseline+2, got)
	}

	// Empty reason should default to "unspecified"
	before := testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified"))
	IncrementBackpressure("")
	after := testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified"))
	if after != before+1 {
		t.Fatalf("expected unspecified reason to increment by 1: before=%v after=%v", before, after)
	}
}

// TestMetricsMiddleware_UsesRoutePattern ensures the metrics middleware labels
// by the chi route pattern instead of the raw URL path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/abc123", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := mrr.Body.Bytes()
	if !bytes.Contains(body, []byte(`path="/runs/{id}"`)) || bytes.Contains(body, []byte("abc123")) {
		preview := body
		if len(preview) > 400 {
			preview = preview[:400]
		}
		t.Fatalf("expected route pattern label; got: %q", string(preview))
	}
}

func TestMetricsPublisher_CountsRunsAndDecays(t *testing.T) {
	completed := testutil.ToFloat64(simRunsTotal.WithLabelValues("completed"))
	failed := testutil.ToFloat64(simRunsTotal.WithLabelValues("failed"))
	steps := testutil.ToFloat64(simStepsTotal)
	radiative := testutil.ToFloat64(simDecaysTotal.WithLabelValues("radiative"))

	next := experiment.NewMemoryPublisher()
	pub := MetricsPublisher{Next: next}
	pub.Publish(experiment.Event{Name: experiment.EventRunCompleted, RunID: "r1", Fields: map[string]any{
		"steps": 101, "injected": 200, "radiative": uint64(150), "nonradiative": uint64(10), "elapsed_s": 0.01,
	}})
	pub.Publish(experiment.Event{Name: experiment.EventRunFailed, RunID: "r2"})
	pub.Publish(experiment.Event{Name: experiment.EventConfigured, RunID: "r3"})

	if got := testutil.ToFloat64(simRunsTotal.WithLabelValues("completed")); got != completed+1 {
		t.Fatalf("completed runs=%v, want %v", got, completed+1)
	}
	if got := testutil.ToFloat64(simRunsTotal.WithLabelValues("failed")); got != failed+1 {
		t.Fatalf("failed runs=%v, want %v", got, failed+1)
	}
	if got := testutil.ToFloat64(simStepsTotal); got != steps+101 {
		t.Fatalf("steps=%v, want %v", got, steps+101)
	}
	if got := testutil.ToFloat64(simDecaysTotal.WithLabelValues("radiative")); got != radiative+150 {
		t.Fatalf("radiative=%v, want %v", got, radiative+150)
	}
	if len(next.Events()) != 3 {
		t.Fatalf("events not chained: %v", next.Names())
	}
}

func TestFieldFloat(t *testing.T) {
	f := map[string]any{"i": 3, "u": uint64(4), "f": 2.5, "s": "x"}
	if fieldFloat(f, "i") != 3 || fieldFloat(f, "u") != 4 || fieldFloat(f, "f") != 2.5 || fieldFloat(f, "s") != 0 || fieldFloat(f, "missing") != 0 {
		t.Fatalf("unexpected conversions")
	}
}
