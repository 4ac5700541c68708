package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"excitond/internal/common/fsutil"
	"excitond/pkg/types"
)

// File names inside a run directory.
const (
	ConfigFile      = "config.json"
	ExcitationsFile = "excitations"
	EmissionsFile   = "emissions"
)

// RunConfig is the JSON document written next to the binary records.
type RunConfig struct {
	Seed       uint64                 `json:"seed"`
	Experiment types.ExperimentConfig `json:"experiment"`
}

// Run is the on-disk content of a run directory. Excitations or Emissions
// may be nil when the corresponding file is absent.
type Run struct {
	Config      RunConfig
	Excitations []Triple
	Emissions   []Triple
}

// WriteRun writes config.json plus whichever record files are non-nil into dir,
// which must already exist.
func WriteRun(dir string, run Run) error {
	dir, err := fsutil.ExistingDir(dir)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(run.Config, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write run config: %w", err)
	}
	if run.Excitations != nil {
		if err := writeTriplesFile(filepath.Join(dir, ExcitationsFile), run.Excitations); err != nil {
			return err
		}
	}
	if run.Emissions != nil {
		if err := writeTriplesFile(filepath.Join(dir, EmissionsFile), run.Emissions); err != nil {
			return err
		}
	}
	return nil
}

// ReadRun loads a run directory. config.json is required; record files are optional.
func ReadRun(dir string) (Run, error) {
	var run Run
	dir, err := fsutil.ExistingDir(dir)
	if err != nil {
		return run, err
	}
	b, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		return run, fmt.Errorf("read run config: %w", err)
	}
	if err := json.Unmarshal(b, &run.Config); err != nil {
		return run, fmt.Errorf("parse run config: %w", err)
	}
	if run.Excitations, err = readTriplesFile(filepath.Join(dir, ExcitationsFile)); err != nil {
		return run, err
	}
	if run.Emissions, err = readTriplesFile(filepath.Join(dir, EmissionsFile)); err != nil {
		return run, err
	}
	return run, nil
}

func writeTriplesFile(path string, triples []Triple) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := WriteTriples(f, triples); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func readTriplesFile(path string) ([]Triple, error) {
	if !fsutil.PathExists(path) {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	triples, err := ReadTriples(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if triples == nil {
		triples = []Triple{}
	}
	return triples, nil
}
