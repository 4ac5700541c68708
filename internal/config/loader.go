package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"excitond/pkg/types"
)

// Config holds an experiment plus the runtime parameters of its hosts.
// Zero values for host fields mean "unspecified" and are replaced by defaults
// in WithDefaults.
type Config struct {
	Experiment types.ExperimentConfig `json:"experiment" yaml:"experiment" toml:"experiment"`

	Seed          uint64   `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty" env:"SEED"`
	LogLevel      string   `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty" env:"LOG_LEVEL"`
	Addr          string   `json:"addr,omitempty" yaml:"addr,omitempty" toml:"addr,omitempty" env:"ADDR"`
	PresetsDir    string   `json:"presets_dir,omitempty" yaml:"presets_dir,omitempty" toml:"presets_dir,omitempty" env:"PRESETS_DIR"`
	MaxConcurrent int      `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty" toml:"max_concurrent,omitempty" env:"MAX_CONCURRENT"`
	MaxQueueDepth int      `json:"max_queue_depth,omitempty" yaml:"max_queue_depth,omitempty" toml:"max_queue_depth,omitempty" env:"MAX_QUEUE_DEPTH"`
	MaxWait       Duration `json:"max_wait,omitempty" yaml:"max_wait,omitempty" toml:"max_wait,omitempty" env:"MAX_WAIT"`
	CORSOrigins   []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty" toml:"cors_origins,omitempty" env:"CORS_ORIGINS"`
	// HistoryDB is the SQLite file holding the run history; empty disables it.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty" toml:"history_db,omitempty" env:"HISTORY_DB"`
	// OTLPEndpoint receives traces over OTLP/HTTP; empty disables tracing.
	OTLPEndpoint string `json:"otlp_endpoint,omitempty" yaml:"otlp_endpoint,omitempty" toml:"otlp_endpoint,omitempty" env:"OTLP_ENDPOINT"`
}

// Host defaults.
const (
	DefaultAddr          = ":8080"
	DefaultLogLevel      = "info"
	DefaultMaxConcurrent = 2
	DefaultMaxQueueDepth = 16
	DefaultMaxWait       = 30 * time.Second
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXCITOND_"

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := decode(path, b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadExperiment reads a bare experiment file, as written into run
// directories and preset directories.
func LoadExperiment(path string) (types.ExperimentConfig, error) {
	var cfg types.ExperimentConfig
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := decode(path, b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, v any) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, v); err != nil {
			return err
		}
	case ".json":
		if err := json.Unmarshal(b, v); err != nil {
			return err
		}
	case ".toml":
		if err := toml.Unmarshal(b, v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	return nil
}

// ApplyEnv overlays EXCITOND_* environment variables onto cfg. Unset
// variables leave the file values alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// WithDefaults fills unspecified host fields.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = Duration(DefaultMaxWait)
	}
	return c
}
