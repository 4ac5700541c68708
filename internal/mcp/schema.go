package mcp

import "excitond/pkg/types"

// PresetsInput is the input of excitond_presets.
type PresetsInput struct{}

// PresetsOutput lists the presets the server can run.
type PresetsOutput struct {
	Presets []types.Preset `json:"presets" jsonschema:"presets known to the server"`
	Count   int            `json:"count" jsonschema:"number of presets"`
}

// SimulateInput is the input of excitond_simulate.
type SimulateInput struct {
	Preset string                  `json:"preset,omitempty" jsonschema:"preset to run; ignored when config is set"`
	Config *types.ExperimentConfig `json:"config,omitempty" jsonschema:"inline experiment configuration"`
	Seed   uint64                  `json:"seed,omitempty" jsonschema:"random seed; 0 lets the server choose"`
}

// TimeSummary describes the emission times of a run.
type TimeSummary struct {
	Count int     `json:"count"`
	MinS  float64 `json:"min_s"`
	MaxS  float64 `json:"max_s"`
	MeanS float64 `json:"mean_s"`
	StdS  float64 `json:"std_s"`
}

// SimulateOutput summarizes one run without the raw event streams.
type SimulateOutput struct {
	Seed      uint64            `json:"seed" jsonschema:"seed actually used"`
	Steps     int               `json:"steps" jsonschema:"clock ticks executed"`
	Remaining int               `json:"remaining" jsonschema:"particles still live at the end"`
	Counts    types.DecayCounts `json:"counts" jsonschema:"decays per channel"`
	Emissions TimeSummary       `json:"emissions" jsonschema:"emission time statistics"`
	// LifetimeS is the fitted photoluminescence decay time; LifetimeError
	// explains a missing fit.
	LifetimeS     float64 `json:"lifetime_s,omitempty" jsonschema:"fitted mono-exponential decay time in seconds"`
	LifetimeError string  `json:"lifetime_error,omitempty" jsonschema:"why no lifetime could be fitted"`
}

// StatusInput is the input of excitond_status.
type StatusInput struct{}

// RunsInput is the input of excitond_runs.
type RunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum records to return (default 50)"`
}

// RunsOutput lists recent runs, newest first.
type RunsOutput struct {
	Runs  []types.RunRecord `json:"runs"`
	Count int               `json:"count"`
}
