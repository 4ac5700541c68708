package excitation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"excitond/pkg/types"
)

// NewTimeGenerator selects the time generator named in cfg.
func NewTimeGenerator(cfg types.SourceConfig, rng *rand.Rand) (TimeGenerator, error) {
	switch cfg.TimeGenerator {
	case types.TimeGeneratorContinuousWave:
		return NewContinuousWave(rng), nil
	case types.TimeGeneratorPulseTrain:
		return NewGaussianPulseTrain(cfg.RepetitionRateHz, cfg.PulseFWHMS, rng)
	default:
		return nil, fmt.Errorf("unknown time generator %q", cfg.TimeGenerator)
	}
}

// NewLocationGenerator selects the location generator named in cfg. An empty
// name defaults to the Gaussian spot.
func NewLocationGenerator(cfg types.SourceConfig, rng *rand.Rand) (LocationGenerator, error) {
	switch cfg.LocationGenerator {
	case types.LocationGeneratorGaussianSpot, "":
		return NewGaussianSpot(cfg.SpotFWHMM, rng)
	default:
		return nil, fmt.Errorf("unknown location generator %q", cfg.LocationGenerator)
	}
}

// Count resolves the number of excitations from an explicit count or a rate.
func Count(startS, endS float64, cfg types.SourceConfig) (int, error) {
	if cfg.NExcitations > 0 {
		if cfg.NExcitations > math.MaxInt32 {
			return 0, ErrInvalidParameter("n_excitations", float64(cfg.NExcitations))
		}
		return int(cfg.NExcitations), nil
	}
	if cfg.ExcitationRateHz > 0 {
		return CountForRate(startS, endS, cfg.ExcitationRateHz)
	}
	return 0, nil
}

// FromConfig builds an unprepared profile over [startS, endS].
func FromConfig(startS, endS float64, cfg types.SourceConfig, rng *rand.Rand) (*Profile, error) {
	if err := checkWindow(startS, endS); err != nil {
		return nil, err
	}
	n, err := Count(startS, endS, cfg)
	if err != nil {
		return nil, err
	}
	times, err := NewTimeGenerator(cfg, rng)
	if err != nil {
		return nil, err
	}
	locations, err := NewLocationGenerator(cfg, rng)
	if err != nil {
		return nil, err
	}
	return NewProfile(startS, endS, n, times, locations)
}
