package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"excitond/internal/manager"
	"excitond/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListPresets() []types.Preset
	Status() types.StatusResponse
	Simulate(ctx context.Context, req types.SimulateRequest) (types.SimulateResponse, error)
	Runs(ctx context.Context, limit int) ([]types.RunRecord, error)
	Ready() bool
}

var errSimulateTimeout = errors.New("simulation timed out")

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/presets", func(w http.ResponseWriter, r *http.Request) {
		presets := svc.ListPresets()
		if presets == nil {
			presets = []types.Preset{}
		}
		writeJSON(w, types.PresetsResponse{Presets: presets})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/runs", func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}
		runs, err := svc.Runs(r.Context(), limit)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		if runs == nil {
			runs = []types.RunRecord{}
		}
		writeJSON(w, types.RunsResponse{Runs: runs})
	})

	r.Post("/simulate", func(w http.ResponseWriter, r *http.Request) {
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.SimulateRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			// an oversized body also lands here; report it as a plain 400
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Config == nil && strings.TrimSpace(req.Preset) == "" {
			writeJSONError(w, http.StatusBadRequest, "config or preset is required")
			return
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		rid := middleware.GetReqID(r.Context())
		if lvl >= LevelDebug {
			zlog.Debug().Str("path", r.URL.Path).Str("preset", req.Preset).Bool("inline_config", req.Config != nil).Uint64("seed", req.Seed).Str("request_id", rid).Msg("simulate start")
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if simulateTimeout > 0 {
			var cancelTimeout context.CancelFunc
			ctx, cancelTimeout = context.WithTimeoutCause(ctx, simulateTimeout, errSimulateTimeout)
			defer cancelTimeout()
		}
		resp, err := svc.Simulate(ctx, req)
		if err != nil {
			// If the client went away or the server is shutting down, just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			if errors.Is(context.Cause(ctx), errSimulateTimeout) {
				err = errSimulateTimeout
			}
			status := statusFor(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure(manager.TooBusyReason(err))
			}
			writeJSONError(w, status, err.Error())
			logEvent(lvl, status).Int("status", status).Dur("dur", time.Since(start)).Str("request_id", rid).Err(err).Msg("simulate end")
			return
		}
		writeJSON(w, resp)
		logEvent(lvl, http.StatusOK).Int("status", http.StatusOK).Dur("dur", time.Since(start)).Str("request_id", rid).
			Uint64("seed", resp.Seed).Int("steps", resp.Steps).Int("emissions", len(resp.Emissions)).Msg("simulate end")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("draining"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
