package manager

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"excitond/internal/experiment"
	"excitond/pkg/types"
)

type publisherFunc func(experiment.Event)

func (f publisherFunc) Publish(e experiment.Event) { f(e) }

type memHistory struct {
	mu      sync.Mutex
	records []types.RunRecord
	err     error
}

func (h *memHistory) Record(ctx context.Context, rec types.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, rec)
	return nil
}

func (h *memHistory) List(ctx context.Context, limit int) ([]types.RunRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []types.RunRecord{}
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}

func TestSimulateRecordsHistory(t *testing.T) {
	h := &memHistory{}
	dir := t.TempDir()
	p := writePreset(t, dir, "small.yaml", smallPresetYAML)
	m := NewWithConfig(ManagerConfig{Presets: []types.Preset{p}, History: h})

	resp, err := m.Simulate(context.Background(), types.SimulateRequest{Preset: "small", Seed: 9})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	cfg := smallConfig()
	if _, err := m.Simulate(context.Background(), types.SimulateRequest{Preset: "ignored", Config: &cfg, Seed: 10}); err != nil {
		t.Fatalf("simulate inline: %v", err)
	}

	runs, err := m.Runs(context.Background(), 10)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(runs))
	}
	first := runs[1]
	if first.RunID != "run-1" || first.Preset != "small" || first.Seed != 9 || first.Steps != resp.Steps || first.Counts != resp.Counts || first.Injected != 50 {
		t.Fatalf("unexpected preset record: %+v", first)
	}
	if runs[0].Preset != "" || runs[0].Seed != 10 {
		t.Fatalf("inline config should record no preset: %+v", runs[0])
	}
}

func TestSimulateRecordsCanceledRun(t *testing.T) {
	h := &memHistory{}
	m := NewWithConfig(ManagerConfig{History: h})
	cfg := smallConfig()
	ctx, cancel := context.WithCancel(context.Background())
	// cancel once admitted: the run sees a canceled context on its first tick
	m.pub = publisherFunc(func(e experiment.Event) {
		if e.Name == experiment.EventConfigured {
			cancel()
		}
	})
	if _, err := m.Simulate(ctx, types.SimulateRequest{Config: &cfg, Seed: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(h.records) != 1 || h.records[0].Error == "" {
		t.Fatalf("expected one failed record, got %+v", h.records)
	}
}

func TestHistoryFailureDoesNotFailRun(t *testing.T) {
	h := &memHistory{err: errors.New("disk full")}
	m := NewWithConfig(ManagerConfig{History: h})
	cfg := smallConfig()
	if _, err := m.Simulate(context.Background(), types.SimulateRequest{Config: &cfg, Seed: 2}); err != nil {
		t.Fatalf("history errors must not fail the run: %v", err)
	}
	if m.Status().FailuresTotal != 0 {
		t.Fatalf("unexpected failure count")
	}
}

func TestRunsWithoutHistoryIsEmpty(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	runs, err := m.Runs(context.Background(), 5)
	if err != nil || runs == nil || len(runs) != 0 {
		t.Fatalf("expected empty list, got %v %v", runs, err)
	}
}

func TestSimulateSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	m := NewWithConfig(ManagerConfig{TracerProvider: tp})
	cfg := smallConfig()

	if _, err := m.Simulate(context.Background(), types.SimulateRequest{Config: &cfg, Seed: 4}); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if _, err := m.Simulate(context.Background(), types.SimulateRequest{Preset: "missing"}); err == nil {
		t.Fatalf("expected preset error")
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	ok, failed := spans[0], spans[1]
	if ok.Name() != "manager.Simulate" || ok.Status().Code == codes.Error {
		t.Fatalf("unexpected first span: %s %v", ok.Name(), ok.Status())
	}
	attrs := map[string]string{}
	for _, kv := range ok.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["excitond.seed"] != "4" || attrs["excitond.run_id"] != "run-1" || attrs["excitond.steps"] != "101" {
		t.Fatalf("unexpected span attributes: %v", attrs)
	}
	if len(ok.Events()) == 0 || ok.Events()[0].Name != "admitted" {
		t.Fatalf("expected an admitted event, got %+v", ok.Events())
	}
	if failed.Status().Code != codes.Error {
		t.Fatalf("expected error status on failed span, got %v", failed.Status())
	}
}

func TestSimulateRecordsRejectedRequests(t *testing.T) {
	h := &memHistory{}
	m := NewWithConfig(ManagerConfig{History: h, MaxExcitations: 100})
	over := smallConfig()
	over.Source.NExcitations = 101

	if _, err := m.Simulate(context.Background(), types.SimulateRequest{Preset: "missing", Seed: 7}); !IsPresetNotFound(err) {
		t.Fatalf("expected preset not found, got %v", err)
	}
	if _, err := m.Simulate(context.Background(), types.SimulateRequest{Config: &over}); !IsInvalidRequest(err) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	m.Drain()
	cfg := smallConfig()
	if _, err := m.Simulate(context.Background(), types.SimulateRequest{Config: &cfg}); !IsTooBusy(err) {
		t.Fatalf("expected too busy, got %v", err)
	}

	if len(h.records) != 3 {
		t.Fatalf("expected 3 records, got %+v", h.records)
	}
	missing := h.records[0]
	if missing.RunID != "run-1" || missing.Preset != "missing" || missing.Seed != 7 || missing.Error == "" || missing.Steps != 0 {
		t.Fatalf("unexpected rejected record: %+v", missing)
	}
	for _, rec := range h.records[1:] {
		if rec.Error == "" || rec.Preset != "" {
			t.Fatalf("unexpected rejected record: %+v", rec)
		}
	}
	if st := m.Status(); st.FailuresTotal != 2 || st.RunsTotal != 0 {
		t.Fatalf("rejections before admission should count as failures: %+v", st)
	}
}
