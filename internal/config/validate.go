package config

import (
	"errors"
	"fmt"
	"math"

	"excitond/pkg/types"
)

// Validate checks the experiment section of the config.
func (c Config) Validate() error {
	return ValidateExperiment(c.Experiment)
}

// ValidateExperiment rejects experiment configs that cannot be simulated,
// reporting every problem found.
func ValidateExperiment(e types.ExperimentConfig) error {
	var errs []error
	bad := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if !finite(e.StartS) || !finite(e.EndS) {
		bad("start_s and end_s must be finite")
	} else if e.EndS <= e.StartS {
		bad("end_s (%g) must be greater than start_s (%g)", e.EndS, e.StartS)
	}
	if !(e.TimeStepS > 0) || !finite(e.TimeStepS) {
		bad("time_step_s must be positive, got %g", e.TimeStepS)
	}

	src := e.Source
	switch src.TimeGenerator {
	case types.TimeGeneratorContinuousWave:
	case types.TimeGeneratorPulseTrain:
		if !(src.RepetitionRateHz > 0) || !finite(src.RepetitionRateHz) {
			bad("repetition_rate_hz must be positive, got %g", src.RepetitionRateHz)
		}
		if !(src.PulseFWHMS > 0) || !finite(src.PulseFWHMS) {
			bad("pulse_fwhm_s must be positive, got %g", src.PulseFWHMS)
		}
	default:
		bad("unknown time_generator %q", src.TimeGenerator)
	}
	switch src.LocationGenerator {
	case "", types.LocationGeneratorGaussianSpot:
	default:
		bad("unknown location_generator %q", src.LocationGenerator)
	}
	if !(src.SpotFWHMM > 0) || !finite(src.SpotFWHMM) {
		bad("spot_fwhm_m must be positive, got %g", src.SpotFWHMM)
	}
	if src.ExcitationRateHz < 0 || !finite(src.ExcitationRateHz) {
		bad("excitation_rate_hz must not be negative, got %g", src.ExcitationRateHz)
	}

	pop := e.Population
	if !(pop.RadiativeLifetimeS > 0) || !finite(pop.RadiativeLifetimeS) {
		bad("radiative_lifetime_s must be positive, got %g", pop.RadiativeLifetimeS)
	}
	optional := []struct {
		name string
		v    float64
	}{
		{"nonradiative_lifetime_s", pop.NonRadiativeLifetimeS},
		{"diffusivity_m2_per_s", pop.DiffusivityM2PerS},
		{"annihilation_radius_m", pop.AnnihilationRadiusM},
	}
	for _, o := range optional {
		if o.v < 0 || !finite(o.v) {
			bad("%s must not be negative, got %g", o.name, o.v)
		}
	}
	return errors.Join(errs...)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
