package population

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"excitond/pkg/types"
)

// Routine is one per-step physical process applied to the whole live population.
type Routine uint8

const (
	RoutineDecay Routine = iota
	RoutineDiffusion
	RoutineAnnihilation
)

func (r Routine) String() string {
	switch r {
	case RoutineDecay:
		return "decay"
	case RoutineDiffusion:
		return "diffusion"
	case RoutineAnnihilation:
		return "annihilation"
	default:
		return fmt.Sprintf("routine(%d)", uint8(r))
	}
}

// Apply runs a single routine over dtS and returns the emissions it produced.
// Emission times are left unset.
func Apply(r Routine, dtS float64, p *Population) ([]types.EmissionEvent, error) {
	switch r {
	case RoutineDecay:
		return p.linearDecay(dtS), nil
	case RoutineDiffusion:
		p.diffuse(dtS)
		return nil, nil
	case RoutineAnnihilation:
		p.annihilate(dtS)
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown routine %s", r)
	}
}

// linearDecay removes particles that decay within dtS. Each decayed particle
// draws again to pick its channel; only radiative removals emit.
func (p *Population) linearDecay(dtS float64) []types.EmissionEvent {
	n := len(p.xs)
	if n == 0 {
		return nil
	}
	decays := distuv.Bernoulli{P: DecayProbability(p.params.TotalRateHz(), dtS), Src: p.rng}

	var dx, dy []float64
	keep := 0
	for i := 0; i < n; i++ {
		if decays.Rand() == 1 {
			dx = append(dx, p.xs[i])
			dy = append(dy, p.ys[i])
			continue
		}
		p.xs[keep], p.ys[keep] = p.xs[i], p.ys[i]
		keep++
	}
	p.xs, p.ys = p.xs[:keep], p.ys[:keep]

	radiative := distuv.Bernoulli{P: p.params.RadiativeFraction(), Src: p.rng}
	var out []types.EmissionEvent
	for i := range dx {
		if radiative.Rand() == 1 {
			out = append(out, types.EmissionEvent{XM: dx[i], YM: dy[i]})
			p.counts.Radiative++
			continue
		}
		p.counts.NonRadiative++
	}
	return out
}

// diffuse moves every particle sqrt(D*dt) in a uniformly random direction.
func (p *Population) diffuse(dtS float64) {
	step := math.Sqrt(p.params.DiffusivityM2PerS * dtS)
	dir := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: p.rng}
	for i := range p.xs {
		theta := dir.Rand()
		p.xs[i] += step * math.Sin(theta)
		p.ys[i] += step * math.Cos(theta)
	}
}

// annihilate is the exciton-exciton annihilation hook. It removes nothing.
func (p *Population) annihilate(float64) {}
