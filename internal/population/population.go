// Package population models the live set of excitons in the plane and the
// per-step processes acting on it.
package population

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"excitond/pkg/types"
)

// Population owns the coordinates of the currently live particles. The two
// coordinate slices always have the same length.
type Population struct {
	params   Params
	xs, ys   []float64
	routines []Routine
	rng      *rand.Rand
	counts   types.DecayCounts
}

// New validates params and registers routines in execution order:
// decay, then diffusion if a diffusivity is set, then annihilation if a
// radius is set.
func New(params Params, rng *rand.Rand) (*Population, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("population requires a random source")
	}
	p := &Population{params: params, rng: rng, routines: []Routine{RoutineDecay}}
	if params.DiffusivityM2PerS > 0 {
		p.routines = append(p.routines, RoutineDiffusion)
	}
	if params.AnnihilationRadiusM > 0 {
		p.routines = append(p.routines, RoutineAnnihilation)
	}
	return p, nil
}

// Params returns the physical parameters.
func (p *Population) Params() Params { return p.params }

// Routines returns the registered routines in execution order.
func (p *Population) Routines() []Routine { return slices.Clone(p.routines) }

// Len is the live-particle count.
func (p *Population) Len() int { return len(p.xs) }

// X returns a copy of the live x coordinates.
func (p *Population) X() []float64 { return slices.Clone(p.xs) }

// Y returns a copy of the live y coordinates.
func (p *Population) Y() []float64 { return slices.Clone(p.ys) }

// Counts returns the decays seen so far per channel.
func (p *Population) Counts() types.DecayCounts { return p.counts }

// AddExcitations appends one live particle per event.
func (p *Population) AddExcitations(events []types.ExcitationEvent) {
	for _, ev := range events {
		p.xs = append(p.xs, ev.XM)
		p.ys = append(p.ys, ev.YM)
	}
}

// AddCoords appends particles from parallel coordinate slices.
func (p *Population) AddCoords(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return lengthMismatchError{nx: len(xs), ny: len(ys)}
	}
	p.xs = append(p.xs, xs...)
	p.ys = append(p.ys, ys...)
	return nil
}

// Step applies every registered routine once, in order, and returns the
// emissions produced. Emission times are left for the caller to stamp.
func (p *Population) Step(dtS float64) ([]types.EmissionEvent, error) {
	if !(dtS > 0) || math.IsInf(dtS, 0) {
		return nil, ErrInvalidParameter("time_step_s", dtS)
	}
	var out []types.EmissionEvent
	for _, r := range p.routines {
		emitted, err := Apply(r, dtS, p)
		if err != nil {
			return out, err
		}
		out = append(out, emitted...)
	}
	return out, nil
}
