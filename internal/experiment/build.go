package experiment

import (
	"math/rand/v2"

	"excitond/internal/excitation"
	"excitond/internal/population"
	"excitond/pkg/types"
)

// Setup groups the parts assembled by Build.
type Setup struct {
	Experiment *Experiment
	Profile    *excitation.Profile
	Population *population.Population
}

// SettingsFromConfig extracts the clock settings of cfg.
func SettingsFromConfig(cfg types.ExperimentConfig) Settings {
	return Settings{StartS: cfg.StartS, EndS: cfg.EndS, TimeStepS: cfg.TimeStepS}
}

// Build assembles the excitation profile and emitter population described by
// cfg, all drawing from rng, and returns an experiment already configured with
// them.
func Build(cfg types.ExperimentConfig, rng *rand.Rand, opts Options) (Setup, error) {
	settings := SettingsFromConfig(cfg)
	if err := settings.Validate(); err != nil {
		return Setup{}, err
	}
	profile, err := excitation.FromConfig(cfg.StartS, cfg.EndS, cfg.Source, rng)
	if err != nil {
		return Setup{}, err
	}
	pop, err := population.New(population.ParamsFromConfig(cfg.Population), rng)
	if err != nil {
		return Setup{}, err
	}
	exp := NewWithOptions(opts)
	if err := exp.Configure(settings, profile, pop); err != nil {
		return Setup{}, err
	}
	return Setup{Experiment: exp, Profile: profile, Population: pop}, nil
}
