package manager

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"excitond/internal/experiment"
	"excitond/pkg/types"
)

// History stores summaries of finished runs.
type History interface {
	Record(ctx context.Context, rec types.RunRecord) error
	List(ctx context.Context, limit int) ([]types.RunRecord, error)
}

type Manager struct {
	mu       sync.RWMutex
	presets  []types.Preset
	lastErr  string
	draining bool
	seq      uint64
	runs     uint64
	failures uint64

	log     zerolog.Logger
	pub     experiment.EventPublisher
	history History
	tracer  trace.Tracer

	// Queue config
	maxConcurrent  int
	maxQueueDepth  int
	maxWait        time.Duration
	maxExcitations int
	maxSteps       int
	runCh          chan struct{} // buffered to maxConcurrent: running simulations
	queueCh        chan struct{} // buffered: running plus waiting simulations

	startTime time.Time
}

// Ready reports whether new simulations are accepted.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.draining
}

// Drain stops admitting simulations. Runs already admitted finish normally.
func (m *Manager) Drain() {
	m.mu.Lock()
	m.draining = true
	m.mu.Unlock()
	m.log.Info().Msg("draining")
}

func (m *Manager) ListPresets() []types.Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Preset, len(m.presets))
	copy(out, m.presets)
	return out
}

// SetPresets replaces the preset registry, e.g. after a rescan.
func (m *Manager) SetPresets(presets []types.Preset) {
	m.mu.Lock()
	m.presets = append([]types.Preset(nil), presets...)
	m.mu.Unlock()
}

func (m *Manager) publish(e experiment.Event) {
	if m.pub != nil {
		m.pub.Publish(e)
	}
}

// Runs lists recent run records, newest first. Without a history store the
// list is always empty.
func (m *Manager) Runs(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if m.history == nil {
		return []types.RunRecord{}, nil
	}
	return m.history.List(ctx, limit)
}
