package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"excitond/internal/common/fsutil"
	"excitond/internal/config"
	"excitond/pkg/types"
)

// presetExts are the file extensions recognized as experiment presets.
var presetExts = []string{".yaml", ".yml", ".json", ".toml"}

// LoadDir scans a directory for experiment preset files and builds a
// registry from filenames. ID is the filename without its extension; Path is
// the absolute file path. Results are sorted by ID.
func LoadDir(dir string) ([]types.Preset, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var presets []types.Preset
	seen := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(presetExts, ext) {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate preset id %q (%s and %s)", id, prev, name)
		}
		seen[id] = name
		presets = append(presets, types.Preset{ID: id, Path: filepath.Join(abs, name)})
	}
	slices.SortFunc(presets, func(a, b types.Preset) int { return strings.Compare(a.ID, b.ID) })
	return presets, nil
}

// Find returns the preset with the given id.
func Find(presets []types.Preset, id string) (types.Preset, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return types.Preset{}, false
}

// Load parses a preset file into an experiment config.
func Load(p types.Preset) (types.ExperimentConfig, error) {
	cfg, err := config.LoadExperiment(p.Path)
	if err != nil {
		return cfg, fmt.Errorf("preset %s: %w", p.ID, err)
	}
	return cfg, nil
}
