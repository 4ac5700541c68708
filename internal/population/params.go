package population

import (
	"math"

	"excitond/pkg/types"
)

// Params are the physical parameters of a population. Zero values of the
// optional fields disable the corresponding channel or routine.
type Params struct {
	RadiativeLifetimeS    float64
	NonRadiativeLifetimeS float64
	DiffusivityM2PerS     float64
	AnnihilationRadiusM   float64
}

// ParamsFromConfig maps the wire configuration onto Params.
func ParamsFromConfig(c types.PopulationConfig) Params {
	return Params{
		RadiativeLifetimeS:    c.RadiativeLifetimeS,
		NonRadiativeLifetimeS: c.NonRadiativeLifetimeS,
		DiffusivityM2PerS:     c.DiffusivityM2PerS,
		AnnihilationRadiusM:   c.AnnihilationRadiusM,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Validate rejects non-positive radiative lifetimes and negative or
// non-finite optional parameters.
func (p Params) Validate() error {
	if !(p.RadiativeLifetimeS > 0) || !finite(p.RadiativeLifetimeS) {
		return ErrInvalidParameter("radiative_lifetime_s", p.RadiativeLifetimeS)
	}
	optional := []struct {
		name string
		v    float64
	}{
		{"nonradiative_lifetime_s", p.NonRadiativeLifetimeS},
		{"diffusivity_m2_per_s", p.DiffusivityM2PerS},
		{"annihilation_radius_m", p.AnnihilationRadiusM},
	}
	for _, o := range optional {
		if o.v < 0 || !finite(o.v) {
			return ErrInvalidParameter(o.name, o.v)
		}
	}
	return nil
}

// RadiativeRateHz is 1 / radiative lifetime.
func (p Params) RadiativeRateHz() float64 { return 1 / p.RadiativeLifetimeS }

// NonRadiativeRateHz is 1 / non-radiative lifetime, or 0 when the channel is off.
func (p Params) NonRadiativeRateHz() float64 {
	if p.NonRadiativeLifetimeS == 0 {
		return 0
	}
	return 1 / p.NonRadiativeLifetimeS
}

// TotalRateHz is the combined linear decay rate.
func (p Params) TotalRateHz() float64 { return p.RadiativeRateHz() + p.NonRadiativeRateHz() }

// RadiativeFraction is the probability that a decay is radiative.
func (p Params) RadiativeFraction() float64 {
	if p.NonRadiativeLifetimeS == 0 {
		return 1
	}
	return p.RadiativeRateHz() / p.TotalRateHz()
}

// DecayProbability is the chance that a particle decaying at rateHz does so
// within dtS: 1 - exp(-rate*dt).
func DecayProbability(rateHz, dtS float64) float64 {
	return -math.Expm1(-rateHz * dtS)
}
