package experiment

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"excitond/pkg/types"
)

// maxSteps bounds the number of clock ticks a single run may take.
const maxSteps = 1 << 31

// clockSlack is the fraction of a time step by which a tick may exceed end_s
// and still run, absorbing rounding in start_s + i*time_step_s.
const clockSlack = 1e-9

// defaultProgressEvery is the tick interval between trace progress lines.
const defaultProgressEvery = 10_000

// Source releases excitation events due at or before a clock time.
type Source interface {
	ReleaseUpTo(t float64) ([]types.ExcitationEvent, error)
}

// Emitter is the live population the experiment injects into and steps.
type Emitter interface {
	AddExcitations(events []types.ExcitationEvent)
	Step(dtS float64) ([]types.EmissionEvent, error)
	Len() int
}

// preparer is implemented by sources that materialize their events lazily.
type preparer interface {
	Prepared() bool
	Prepare() error
}

// counter is implemented by emitters that tally decays per channel.
type counter interface {
	Counts() types.DecayCounts
}

// Settings are the clock parameters of a run.
type Settings struct {
	StartS    float64
	EndS      float64
	TimeStepS float64
}

// Validate rejects non-positive time steps and empty windows.
func (s Settings) Validate() error {
	if !(s.TimeStepS > 0) || math.IsInf(s.TimeStepS, 0) {
		return ErrConfig("time_step_s must be positive, got %g", s.TimeStepS)
	}
	if math.IsNaN(s.StartS) || math.IsNaN(s.EndS) || math.IsInf(s.StartS, 0) || math.IsInf(s.EndS, 0) {
		return ErrConfig("start_s and end_s must be finite, got %g and %g", s.StartS, s.EndS)
	}
	if !(s.EndS > s.StartS) {
		return ErrConfig("end_s (%g) must be after start_s (%g)", s.EndS, s.StartS)
	}
	if ticks := s.ticks(); ticks > maxSteps {
		return ErrConfig("run would take %g steps, limit is %d", ticks, maxSteps)
	}
	return nil
}

func (s Settings) ticks() float64 {
	return math.Floor((s.EndS-s.StartS)/s.TimeStepS+clockSlack) + 1
}

// Steps is the number of clock ticks Run takes for valid settings.
func (s Settings) Steps() int {
	if s.Validate() != nil {
		return 0
	}
	return int(s.ticks())
}

// Result is the report of a completed run.
type Result struct {
	Emissions []types.EmissionEvent
	Steps     int
	Injected  int
	Remaining int
	Counts    types.DecayCounts
	Elapsed   time.Duration
}

// Options tune logging and event publishing. Zero values are valid.
type Options struct {
	RunID         string
	Logger        *zerolog.Logger
	Publisher     EventPublisher
	ProgressEvery int
}

// Experiment drives an excitation source and an emitter population on a
// fixed-step clock and accumulates the emitted photons.
type Experiment struct {
	id            string
	log           zerolog.Logger
	pub           EventPublisher
	progressEvery int

	state      State
	settings   Settings
	source     Source
	population Emitter
	result     Result
}

// New returns an unconfigured experiment with a silent logger.
func New() *Experiment { return NewWithOptions(Options{}) }

// NewWithOptions returns an unconfigured experiment using opts.
func NewWithOptions(opts Options) *Experiment {
	e := &Experiment{id: opts.RunID, state: StateUnconfigured, log: zerolog.Nop(), pub: noopPublisher{}}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("component", "experiment").Logger()
		if e.id != "" {
			e.log = e.log.With().Str("run_id", e.id).Logger()
		}
	}
	if opts.Publisher != nil {
		e.pub = opts.Publisher
	}
	e.progressEvery = opts.ProgressEvery
	if e.progressEvery <= 0 {
		e.progressEvery = defaultProgressEvery
	}
	return e
}

// State returns the current lifecycle state.
func (e *Experiment) State() State { return e.state }

// Settings returns the clock settings bound by Configure.
func (e *Experiment) Settings() Settings { return e.settings }

// Configure binds the clock, source and population, replacing any previous
// configuration and result. Sources that need preparation are prepared here so
// generator failures surface before Run.
func (e *Experiment) Configure(s Settings, source Source, pop Emitter) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if source == nil {
		return ErrConfig("excitation source is required")
	}
	if pop == nil {
		return ErrConfig("emitter population is required")
	}
	if p, ok := source.(preparer); ok && !p.Prepared() {
		if err := p.Prepare(); err != nil {
			return err
		}
	}
	e.settings = s
	e.source = source
	e.population = pop
	e.result = Result{}
	e.state = StateConfigured
	e.log.Info().Float64("start_s", s.StartS).Float64("end_s", s.EndS).Float64("time_step_s", s.TimeStepS).Msg("experiment configured")
	e.pub.Publish(Event{Name: EventConfigured, RunID: e.id, Fields: map[string]any{
		"start_s": s.StartS, "end_s": s.EndS, "time_step_s": s.TimeStepS,
	}})
	return nil
}

// Run executes the clock loop. Events at or before start_s - time_step_s are
// drained and discarded first; then for every tick t = start_s + i*time_step_s
// with t <= end_s, due excitations are injected, the population is stepped and
// new emissions are stamped with t. Cancellation is checked between ticks; a
// canceled or failed run returns an error and keeps no partial result.
func (e *Experiment) Run(ctx context.Context) error {
	if e.state != StateConfigured {
		return ErrInvalidState("run", e.state)
	}
	s := e.settings
	began := time.Now()
	e.log.Info().Msg("run started")
	e.pub.Publish(Event{Name: EventRunStarted, RunID: e.id})

	fail := func(err error, steps int) error {
		e.log.Error().Err(err).Int("steps", steps).Msg("run failed")
		e.pub.Publish(Event{Name: EventRunFailed, RunID: e.id, Fields: map[string]any{"error": err.Error(), "steps": steps}})
		return err
	}

	if _, err := e.source.ReleaseUpTo(s.StartS - s.TimeStepS); err != nil {
		return fail(err, 0)
	}

	var (
		emissions []types.EmissionEvent
		steps     int
		injected  int
	)
	for i := 0; ; i++ {
		t := s.StartS + float64(i)*s.TimeStepS
		if t > s.EndS+clockSlack*s.TimeStepS {
			break
		}
		if err := ctx.Err(); err != nil {
			return fail(err, steps)
		}
		events, err := e.source.ReleaseUpTo(t)
		if err != nil {
			return fail(err, steps)
		}
		e.population.AddExcitations(events)
		injected += len(events)

		emitted, err := e.population.Step(s.TimeStepS)
		if err != nil {
			return fail(err, steps)
		}
		for j := range emitted {
			emitted[j].TS = t
		}
		emissions = append(emissions, emitted...)
		steps++

		if steps%e.progressEvery == 0 {
			e.log.Trace().Int("steps", steps).Float64("t_s", t).Int("live", e.population.Len()).Int("emissions", len(emissions)).Msg("run progress")
		}
	}

	e.result = Result{
		Emissions: emissions,
		Steps:     steps,
		Injected:  injected,
		Remaining: e.population.Len(),
		Elapsed:   time.Since(began),
	}
	if c, ok := e.population.(counter); ok {
		e.result.Counts = c.Counts()
	}
	e.state = StateComplete
	e.log.Info().Int("steps", steps).Int("injected", injected).Int("emissions", len(emissions)).Int("remaining", e.result.Remaining).Dur("elapsed", e.result.Elapsed).Msg("run complete")
	e.pub.Publish(Event{Name: EventRunCompleted, RunID: e.id, Fields: map[string]any{
		"steps":        steps,
		"injected":     injected,
		"emissions":    len(emissions),
		"remaining":    e.result.Remaining,
		"radiative":    e.result.Counts.Radiative,
		"nonradiative": e.result.Counts.NonRadiative,
		"elapsed_s":    e.result.Elapsed.Seconds(),
	}})
	return nil
}

// Report returns the result of a completed run.
func (e *Experiment) Report() (Result, error) {
	if e.state != StateComplete {
		return Result{}, ErrInvalidState("report", e.state)
	}
	r := e.result
	r.Emissions = append([]types.EmissionEvent(nil), e.result.Emissions...)
	return r, nil
}
