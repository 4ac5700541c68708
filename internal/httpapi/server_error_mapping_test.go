package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"excitond/internal/experiment"
	"excitond/internal/manager"
	"excitond/pkg/types"
)

func TestSimulate_PresetNotFoundMaps404(t *testing.T) {
	svc := &mockService{simErr: manager.ErrPresetNotFound("missing")}
	w := postSimulate(t, NewMux(svc), `{"preset":"missing"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSimulate_InvalidRequestMaps400(t *testing.T) {
	svc := &mockService{simErr: manager.ErrInvalidRequest(fmt.Errorf("time_step_s must be positive"))}
	w := postSimulate(t, NewMux(svc), `{"preset":"p"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSimulate_ConfigErrorMaps400(t *testing.T) {
	svc := &mockService{simErr: fmt.Errorf("build: %w", experiment.ErrConfig("emitter population is required"))}
	w := postSimulate(t, NewMux(svc), `{"preset":"p"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// busyService rejects every simulation like a manager with a full queue.
type busyService struct{ mockService }

func (b *busyService) Simulate(ctx context.Context, req types.SimulateRequest) (types.SimulateResponse, error) {
	m := manager.NewWithConfig(manager.ManagerConfig{MaxConcurrent: 1, MaxQueueDepth: 1, MaxWait: time.Millisecond})
	m.Drain()
	return m.Simulate(ctx, req)
}

func TestSimulate_TooBusyMaps429AndCounts(t *testing.T) {
	before := testutil.ToFloat64(backpressureTotal.WithLabelValues(manager.ReasonDraining))
	cfg := `{"config":{"start_s":0,"end_s":1e-8,"time_step_s":1e-9,
		"excitation_source":{"time_generator":"continuous_wave","n_excitations":1,"spot_fwhm_m":1e-6},
		"emitter_population":{"radiative_lifetime_s":1e-9}}}`
	w := postSimulate(t, NewMux(&busyService{}), cfg)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", w.Code, w.Body.String())
	}
	after := testutil.ToFloat64(backpressureTotal.WithLabelValues(manager.ReasonDraining))
	if after != before+1 {
		t.Fatalf("backpressure counter before=%v after=%v", before, after)
	}
}

// blockService blocks until the context is done; used to exercise the timeout path.
type blockService struct{ mockService }

func (b *blockService) Simulate(ctx context.Context, req types.SimulateRequest) (types.SimulateResponse, error) {
	<-ctx.Done()
	return types.SimulateResponse{}, ctx.Err()
}

func TestSimulateTimeoutMaps504(t *testing.T) {
	SetSimulateTimeout(20 * time.Millisecond)
	defer SetSimulateTimeout(0)
	w := postSimulate(t, NewMux(&blockService{}), `{"preset":"p"}`)
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 on timeout, got %d", w.Code)
	}
}

func TestSimulateClientGoneWritesNothing(t *testing.T) {
	h := NewMux(&blockService{})
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/simulate", bytes.NewBufferString(`{"preset":"p"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	h.ServeHTTP(w, req)
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body after client cancel, got %q", w.Body.String())
	}
}
