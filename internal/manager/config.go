package manager

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"excitond/internal/experiment"
	"excitond/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxConcurrent  = 2
	defaultMaxQueueDepth  = 32
	defaultMaxWait        = 30 * time.Second
	defaultMaxExcitations = 5_000_000
	defaultMaxSteps       = 10_000_000
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Presets       []types.Preset
	MaxConcurrent int
	MaxQueueDepth int
	MaxWait       time.Duration
	// MaxExcitations caps the excitation count of a single request.
	MaxExcitations int
	// MaxSteps caps the clock ticks of a single request.
	MaxSteps  int
	Logger    *zerolog.Logger
	Publisher experiment.EventPublisher
	// History, when set, receives a record of every simulate call, including rejected ones.
	History History
	// TracerProvider defaults to the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		presets: append([]types.Preset(nil), cfg.Presets...),
		log:     zerolog.Nop(),
		pub:     cfg.Publisher,
		history: cfg.History,
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	m.tracer = tp.Tracer("excitond/internal/manager")
	// Apply defaults if unset
	m.maxConcurrent = cfg.MaxConcurrent
	if m.maxConcurrent <= 0 {
		m.maxConcurrent = defaultMaxConcurrent
	}
	m.maxQueueDepth = cfg.MaxQueueDepth
	if m.maxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	}
	m.maxWait = cfg.MaxWait
	if m.maxWait <= 0 {
		m.maxWait = defaultMaxWait
	}
	m.maxExcitations = cfg.MaxExcitations
	if m.maxExcitations <= 0 {
		m.maxExcitations = defaultMaxExcitations
	}
	m.maxSteps = cfg.MaxSteps
	if m.maxSteps <= 0 {
		m.maxSteps = defaultMaxSteps
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	// queue slots cover running and waiting simulations
	m.queueCh = make(chan struct{}, m.maxConcurrent+m.maxQueueDepth)
	m.runCh = make(chan struct{}, m.maxConcurrent)
	m.startTime = time.Now()
	return m
}
