package manager

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"excitond/internal/config"
	"excitond/internal/excitation"
	"excitond/internal/experiment"
	"excitond/internal/random"
	"excitond/internal/registry"
	"excitond/pkg/types"
)

// Event names published by the manager in addition to the experiment's own.
const (
	EventRejected = "manager.rejected"
)

// Simulate resolves the request to an experiment config, waits for a run
// slot and runs the experiment to completion. Cancellation of ctx stops the
// run between clock ticks.
func (m *Manager) Simulate(ctx context.Context, req types.SimulateRequest) (resp types.SimulateResponse, err error) {
	ctx, span := m.tracer.Start(ctx, "manager.Simulate", trace.WithAttributes(
		attribute.String("excitond.preset", req.Preset),
		attribute.Bool("excitond.inline_config", req.Config != nil),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	runID := m.nextRunID()
	span.SetAttributes(attribute.String("excitond.run_id", runID))
	rejected := types.RunRecord{RunID: runID, Preset: req.Preset, Seed: req.Seed}
	if req.Config != nil {
		rejected.Preset = ""
	}

	cfg, err := m.resolve(req)
	if err != nil {
		rejected.Error = err.Error()
		m.record(ctx, rejected)
		return types.SimulateResponse{}, m.fail(err)
	}

	release, err := m.beginRun(ctx)
	if err != nil {
		if IsTooBusy(err) {
			m.publish(experiment.Event{Name: EventRejected, Fields: map[string]any{"reason": TooBusyReason(err)}})
		}
		rejected.Error = err.Error()
		m.record(ctx, rejected)
		return types.SimulateResponse{}, err
	}
	defer release()
	span.AddEvent("admitted")

	seed, err := random.Resolve(req.Seed)
	if err != nil {
		rejected.Error = err.Error()
		m.record(ctx, rejected)
		return types.SimulateResponse{}, m.fail(err)
	}
	span.SetAttributes(attribute.String("excitond.seed", strconv.FormatUint(seed, 10)))

	res, excitations, err := m.execute(ctx, runID, seed, cfg, req.IncludeExcitations)
	rec := types.RunRecord{
		RunID:     runID,
		Preset:    req.Preset,
		Seed:      seed,
		Steps:     res.Steps,
		Injected:  res.Injected,
		Remaining: res.Remaining,
		Counts:    res.Counts,
		ElapsedS:  res.Elapsed.Seconds(),
	}
	if req.Config != nil {
		rec.Preset = ""
	}
	if err != nil {
		rec.Error = err.Error()
		m.record(ctx, rec)
		return types.SimulateResponse{}, m.fail(err)
	}
	m.record(ctx, rec)
	span.SetAttributes(
		attribute.Int("excitond.steps", res.Steps),
		attribute.Int("excitond.emissions", len(res.Emissions)),
		attribute.Int("excitond.remaining", res.Remaining),
	)

	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
	emissions := res.Emissions
	if emissions == nil {
		emissions = []types.EmissionEvent{}
	}
	return types.SimulateResponse{
		Seed:        seed,
		Steps:       res.Steps,
		Remaining:   res.Remaining,
		Counts:      res.Counts,
		Emissions:   emissions,
		Excitations: excitations,
	}, nil
}

// execute builds and runs one admitted experiment.
func (m *Manager) execute(ctx context.Context, runID string, seed uint64, cfg types.ExperimentConfig, includeExcitations bool) (experiment.Result, []types.ExcitationEvent, error) {
	log := m.log.With().Str("run_id", runID).Uint64("seed", seed).Logger()
	setup, err := experiment.Build(cfg, random.NewRand(seed), experiment.Options{RunID: runID, Logger: &log, Publisher: m.pub})
	if err != nil {
		if experiment.IsConfigError(err) || experiment.IsDegenerateInput(err) {
			err = ErrInvalidRequest(err)
		}
		return experiment.Result{}, nil, err
	}
	var excitations []types.ExcitationEvent
	if includeExcitations {
		excitations = setup.Profile.Events()
	}
	if err := setup.Experiment.Run(ctx); err != nil {
		return experiment.Result{}, nil, err
	}
	res, err := setup.Experiment.Report()
	if err != nil {
		return experiment.Result{}, nil, err
	}
	return res, excitations, nil
}

// record stores rec in the run history, if any. Storage failures are logged only.
func (m *Manager) record(ctx context.Context, rec types.RunRecord) {
	if m.history == nil {
		return
	}
	// the request may already be canceled; the record should still land
	if err := m.history.Record(context.WithoutCancel(ctx), rec); err != nil {
		m.log.Warn().Err(err).Str("run_id", rec.RunID).Msg("history record failed")
	}
}

// resolve picks the inline config or loads the named preset, then validates
// it and applies the excitation and step caps.
func (m *Manager) resolve(req types.SimulateRequest) (types.ExperimentConfig, error) {
	var cfg types.ExperimentConfig
	switch {
	case req.Config != nil:
		cfg = *req.Config
	case req.Preset != "":
		m.mu.RLock()
		p, ok := registry.Find(m.presets, req.Preset)
		m.mu.RUnlock()
		if !ok {
			return cfg, ErrPresetNotFound(req.Preset)
		}
		loaded, err := registry.Load(p)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	default:
		return cfg, ErrInvalidRequest(errors.New("config or preset is required"))
	}
	if err := config.ValidateExperiment(cfg); err != nil {
		return cfg, ErrInvalidRequest(err)
	}
	n, err := excitation.Count(cfg.StartS, cfg.EndS, cfg.Source)
	if err != nil {
		return cfg, ErrInvalidRequest(err)
	}
	if n > m.maxExcitations {
		return cfg, ErrInvalidRequest(fmt.Errorf("%d excitations requested, limit is %d", n, m.maxExcitations))
	}
	if steps := experiment.SettingsFromConfig(cfg).Steps(); steps > m.maxSteps {
		return cfg, ErrInvalidRequest(fmt.Errorf("%d clock steps requested, limit is %d", steps, m.maxSteps))
	}
	return cfg, nil
}

func (m *Manager) fail(err error) error {
	m.mu.Lock()
	m.failures++
	m.lastErr = err.Error()
	m.mu.Unlock()
	m.log.Warn().Err(err).Msg("simulation failed")
	return err
}

func (m *Manager) nextRunID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("run-%d", m.seq)
}
