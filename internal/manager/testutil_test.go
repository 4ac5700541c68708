package manager

import (
	"os"
	"path/filepath"
	"testing"

	"excitond/pkg/types"
)

// smallConfig is a quick continuous-wave experiment: 200 excitations over
// 100 ns with a 1 ns lifetime.
func smallConfig() types.ExperimentConfig {
	return types.ExperimentConfig{
		StartS:    0,
		EndS:      1e-7,
		TimeStepS: 1e-9,
		Source: types.SourceConfig{
			TimeGenerator: types.TimeGeneratorContinuousWave,
			NExcitations:  200,
			SpotFWHMM:     1e-6,
		},
		Population: types.PopulationConfig{RadiativeLifetimeS: 1e-9},
	}
}

// writePreset writes content as dir/name and returns the preset pointing at it.
func writePreset(t *testing.T, dir, name, content string) types.Preset {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	ext := filepath.Ext(name)
	return types.Preset{ID: name[:len(name)-len(ext)], Path: p}
}

const smallPresetYAML = `
start_s: 0
end_s: 1.0e-7
time_step_s: 1.0e-9
excitation_source:
  time_generator: continuous_wave
  n_excitations: 50
  spot_fwhm_m: 1.0e-6
emitter_population:
  radiative_lifetime_s: 1.0e-9
`
