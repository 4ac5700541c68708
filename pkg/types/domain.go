package types

// ExcitationEvent is the injection of one live particle at a point in the plane.
type ExcitationEvent struct {
	// X coordinate in meters.
	XM float64 `json:"x_m"`
	// Y coordinate in meters.
	YM float64 `json:"y_m"`
	// Excitation time in seconds.
	TS float64 `json:"t_s"`
}

// EmissionEvent is a photon-producing (radiative) decay of a live particle.
// TS is zero until the experiment stamps it with the step time.
type EmissionEvent struct {
	XM float64 `json:"x_m"`
	YM float64 `json:"y_m"`
	TS float64 `json:"t_s"`
}

// Time generator kinds accepted in SourceConfig.TimeGenerator.
const (
	TimeGeneratorContinuousWave = "continuous_wave"
	TimeGeneratorPulseTrain     = "gaussian_pulse_train"
)

// Location generator kinds accepted in SourceConfig.LocationGenerator.
const (
	LocationGeneratorGaussianSpot = "gaussian_spot"
)

// SourceConfig describes the excitation source. Exactly one of NExcitations
// or ExcitationRateHz should be set; NExcitations wins when both are.
type SourceConfig struct {
	TimeGenerator     string  `json:"time_generator" yaml:"time_generator" toml:"time_generator"`
	LocationGenerator string  `json:"location_generator" yaml:"location_generator" toml:"location_generator"`
	NExcitations      uint64  `json:"n_excitations,omitempty" yaml:"n_excitations,omitempty" toml:"n_excitations,omitempty"`
	ExcitationRateHz  float64 `json:"excitation_rate_hz,omitempty" yaml:"excitation_rate_hz,omitempty" toml:"excitation_rate_hz,omitempty"`
	RepetitionRateHz  float64 `json:"repetition_rate_hz,omitempty" yaml:"repetition_rate_hz,omitempty" toml:"repetition_rate_hz,omitempty"`
	PulseFWHMS        float64 `json:"pulse_fwhm_s,omitempty" yaml:"pulse_fwhm_s,omitempty" toml:"pulse_fwhm_s,omitempty"`
	SpotFWHMM         float64 `json:"spot_fwhm_m" yaml:"spot_fwhm_m" toml:"spot_fwhm_m"`
}

// PopulationConfig holds the physical parameters of the emitter population.
// Zero values for the optional fields mean "not configured".
type PopulationConfig struct {
	RadiativeLifetimeS    float64 `json:"radiative_lifetime_s" yaml:"radiative_lifetime_s" toml:"radiative_lifetime_s"`
	NonRadiativeLifetimeS float64 `json:"nonradiative_lifetime_s,omitempty" yaml:"nonradiative_lifetime_s,omitempty" toml:"nonradiative_lifetime_s,omitempty"`
	DiffusivityM2PerS     float64 `json:"diffusivity_m2_per_s,omitempty" yaml:"diffusivity_m2_per_s,omitempty" toml:"diffusivity_m2_per_s,omitempty"`
	AnnihilationRadiusM   float64 `json:"annihilation_radius_m,omitempty" yaml:"annihilation_radius_m,omitempty" toml:"annihilation_radius_m,omitempty"`
}

// ExperimentConfig is the full input of one simulated experiment.
type ExperimentConfig struct {
	StartS     float64          `json:"start_s" yaml:"start_s" toml:"start_s"`
	EndS       float64          `json:"end_s" yaml:"end_s" toml:"end_s"`
	TimeStepS  float64          `json:"time_step_s" yaml:"time_step_s" toml:"time_step_s"`
	Source     SourceConfig     `json:"excitation_source" yaml:"excitation_source" toml:"excitation_source"`
	Population PopulationConfig `json:"emitter_population" yaml:"emitter_population" toml:"emitter_population"`
}

// DecayCounts tallies particle removals per decay channel.
type DecayCounts struct {
	Radiative    uint64 `json:"radiative"`
	NonRadiative uint64 `json:"nonradiative"`
}

// Preset is a named experiment configuration discovered on disk.
type Preset struct {
	// Stable identifier, the file name without extension.
	// example: pulsed-1mhz
	ID string `json:"id" example:"pulsed-1mhz"`
	// Absolute path to the preset file.
	// example: /etc/excitond/presets/pulsed-1mhz.yaml
	Path string `json:"path" example:"/etc/excitond/presets/pulsed-1mhz.yaml"`
}
