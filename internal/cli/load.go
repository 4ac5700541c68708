package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"excitond/internal/common/fsutil"
	"excitond/internal/config"
	"excitond/internal/logging"
	"excitond/pkg/types"
)

// loadConfig reads a full config file, or a bare experiment file when the
// file has no experiment section, then applies EXCITOND_* overrides.
func loadConfig(path string) (config.Config, error) {
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return config.Config{}, err
	}
	if _, err := fsutil.ExistingFile(path); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	if cfg.Experiment == (types.ExperimentConfig{}) {
		exp, err := config.LoadExperiment(path)
		if err != nil {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
		cfg.Experiment = exp
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// outputDir creates dir (and parents) and returns its expanded path.
func outputDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("--out is required")
	}
	dir, err := fsutil.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Clean(dir), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

func newLogger(opts *Options) zerolog.Logger {
	return logging.NewConsole(opts.LogLevel, opts.Stderr)
}
