package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"excitond/internal/experiment"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "excitond",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "excitond",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "excitond",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
		[]string{"path"},
	)

	backpressureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "excitond",
			Subsystem: "http",
			Name:      "backpressure_total",
			Help:      "Total backpressure rejections (429)",
		},
		[]string{"reason"},
	)
)

var (
	simRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "excitond",
			Subsystem: "sim",
			Name:      "runs_total",
			Help:      "Simulation runs by outcome",
		},
		[]string{"outcome"},
	)

	simStepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "excitond",
			Subsystem: "sim",
			Name:      "steps_total",
			Help:      "Clock ticks executed by completed runs",
		},
	)

	simExcitationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "excitond",
			Subsystem: "sim",
			Name:      "excitations_injected_total",
			Help:      "Excitations injected into populations by completed runs",
		},
	)

	simDecaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "excitond",
			Subsystem: "sim",
			Name:      "decays_total",
			Help:      "Particle decays by channel",
		},
		[]string{"channel"},
	)

	simRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "excitond",
			Subsystem: "sim",
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, backpressureTotal)
	prometheus.MustRegister(simRunsTotal, simStepsTotal, simExcitationsTotal, simDecaysTotal, simRunDuration)
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware instruments requests for Prometheus
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routePatternOrPath(r)
		method := r.Method
		httpInflight.WithLabelValues(path).Inc()
		defer httpInflight.WithLabelValues(path).Dec()

		sr := &statusRecorder{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(sr, r)
		statusLabel := itoa(sr.status)
		dur := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(path, method, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(path, method, statusLabel).Observe(dur)
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// IncrementBackpressure is called when returning 429 to the client
func IncrementBackpressure(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	backpressureTotal.WithLabelValues(reason).Inc()
}

// fast integer to ascii for small set of status codes
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// MetricsPublisher turns experiment lifecycle events into Prometheus metrics.
// It chains to Next when set.
type MetricsPublisher struct {
	Next experiment.EventPublisher
}

func (p MetricsPublisher) Publish(e experiment.Event) {
	switch e.Name {
	case experiment.EventRunCompleted:
		simRunsTotal.WithLabelValues("completed").Inc()
		simStepsTotal.Add(fieldFloat(e.Fields, "steps"))
		simExcitationsTotal.Add(fieldFloat(e.Fields, "injected"))
		simDecaysTotal.WithLabelValues("radiative").Add(fieldFloat(e.Fields, "radiative"))
		simDecaysTotal.WithLabelValues("nonradiative").Add(fieldFloat(e.Fields, "nonradiative"))
		simRunDuration.Observe(fieldFloat(e.Fields, "elapsed_s"))
	case experiment.EventRunFailed:
		simRunsTotal.WithLabelValues("failed").Inc()
	}
	if p.Next != nil {
		p.Next.Publish(e)
	}
}

// fieldFloat reads a numeric event field; missing or non-numeric values are 0.
func fieldFloat(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case int:
		return float64(v)
	case uint64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}
