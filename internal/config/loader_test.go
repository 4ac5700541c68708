package config

import (
	"os"
	"path/filepath"
	"testing"

	"excitond/pkg/types"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const yamlConfig = `
seed: 7
addr: ":9999"
presets_dir: /tmp/presets
max_concurrent: 3
max_wait: 5s
experiment:
  start_s: -1.0e-5
  end_s: 5.0e-5
  time_step_s: 1.0e-9
  excitation_source:
    time_generator: gaussian_pulse_train
    location_generator: gaussian_spot
    n_excitations: 1000
    repetition_rate_hz: 1.0e6
    pulse_fwhm_s: 1.0e-9
    spot_fwhm_m: 1.0e-6
  emitter_population:
    radiative_lifetime_s: 1.0e-9
    diffusivity_m2_per_s: 1.0e-4
`

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", yamlConfig)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 7 || cfg.Addr != ":9999" || cfg.PresetsDir != "/tmp/presets" || cfg.MaxConcurrent != 3 || cfg.MaxWait.Std().Seconds() != 5 {
		t.Fatalf("unexpected host cfg: %+v", cfg)
	}
	e := cfg.Experiment
	if e.TimeStepS != 1e-9 || e.Source.TimeGenerator != types.TimeGeneratorPulseTrain || e.Source.NExcitations != 1000 || e.Population.DiffusivityM2PerS != 1e-4 {
		t.Fatalf("unexpected experiment: %+v", e)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","experiment":{"start_s":0,"end_s":1,"time_step_s":0.01,
		"excitation_source":{"time_generator":"continuous_wave","excitation_rate_hz":100,"spot_fwhm_m":1},
		"emitter_population":{"radiative_lifetime_s":0.1}}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Experiment.Source.ExcitationRateHz != 100 || cfg.Experiment.EndS != 1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", `addr = ":8081"
log_level = "debug"

[experiment]
start_s = 0.0
end_s = 1.0
time_step_s = 0.001

[experiment.excitation_source]
time_generator = "continuous_wave"
n_excitations = 10
spot_fwhm_m = 2.0

[experiment.emitter_population]
radiative_lifetime_s = 0.5
nonradiative_lifetime_s = 1.5
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.LogLevel != "debug" || cfg.Experiment.Source.NExcitations != 10 || cfg.Experiment.Population.NonRadiativeLifetimeS != 1.5 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadExperiment(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "exp.json", `{"start_s":0,"end_s":2,"time_step_s":0.5,
		"excitation_source":{"time_generator":"continuous_wave","n_excitations":3,"spot_fwhm_m":1},
		"emitter_population":{"radiative_lifetime_s":1}}`)
	e, err := LoadExperiment(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if e.EndS != 2 || e.Source.NExcitations != 3 {
		t.Fatalf("unexpected experiment: %+v", e)
	}
	if _, err := LoadExperiment(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("EXCITOND_SEED", "42")
	t.Setenv("EXCITOND_ADDR", ":1234")
	t.Setenv("EXCITOND_MAX_QUEUE_DEPTH", "9")
	t.Setenv("EXCITOND_MAX_WAIT", "250ms")
	t.Setenv("EXCITOND_CORS_ORIGINS", "http://a,http://b")
	t.Setenv("EXCITOND_HISTORY_DB", "/var/lib/excitond/runs.db")
	t.Setenv("EXCITOND_OTLP_ENDPOINT", "http://collector:4318/v1/traces")
	cfg := Config{Addr: ":1", LogLevel: "warn"}
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Seed != 42 || cfg.Addr != ":1234" || cfg.MaxQueueDepth != 9 || cfg.MaxWait.Std().Milliseconds() != 250 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("unset variable overwrote log level: %q", cfg.LogLevel)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b" {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.HistoryDB != "/var/lib/excitond/runs.db" || cfg.OTLPEndpoint != "http://collector:4318/v1/traces" {
		t.Fatalf("history/otlp: %q %q", cfg.HistoryDB, cfg.OTLPEndpoint)
	}
}

func TestApplyEnvRejectsBadValue(t *testing.T) {
	t.Setenv("EXCITOND_MAX_CONCURRENT", "many")
	var cfg Config
	if err := ApplyEnv(&cfg); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Addr != DefaultAddr || cfg.LogLevel != DefaultLogLevel || cfg.MaxConcurrent != DefaultMaxConcurrent || cfg.MaxQueueDepth != DefaultMaxQueueDepth || cfg.MaxWait.Std() != DefaultMaxWait {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	kept := Config{Addr: ":1", MaxConcurrent: 8}.WithDefaults()
	if kept.Addr != ":1" || kept.MaxConcurrent != 8 {
		t.Fatalf("defaults overwrote explicit values: %+v", kept)
	}
}
