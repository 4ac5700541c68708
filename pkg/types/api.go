package types

// SimulateRequest is the payload of POST /simulate.
type SimulateRequest struct {
	// Optional preset identifier. Ignored when Config is set.
	// example: pulsed-1mhz
	Preset string `json:"preset,omitempty" example:"pulsed-1mhz"`
	// Inline experiment configuration.
	Config *ExperimentConfig `json:"config,omitempty"`
	// Random seed for reproducibility; 0 or omitted lets the server choose.
	// example: 42
	Seed uint64 `json:"seed,omitempty" example:"42"`
	// If true, the raw excitation stream is returned alongside emissions.
	// example: false
	IncludeExcitations bool `json:"include_excitations,omitempty" example:"false"`
}

// SimulateResponse is returned by POST /simulate.
type SimulateResponse struct {
	// Seed actually used for the run.
	// example: 42
	Seed uint64 `json:"seed" example:"42"`
	// Number of clock ticks executed.
	// example: 1001
	Steps int `json:"steps" example:"1001"`
	// Particles still live when the clock passed end_s.
	// example: 3
	Remaining int `json:"remaining" example:"3"`
	// Decays per channel.
	Counts DecayCounts `json:"counts"`
	// Emission events in step order.
	Emissions []EmissionEvent `json:"emissions"`
	// Excitation events, only when requested.
	Excitations []ExcitationEvent `json:"excitations,omitempty"`
}

// PresetsResponse wraps the list returned by GET /presets.
type PresetsResponse struct {
	Presets []Preset `json:"presets"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Simulations currently running.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Simulations waiting for a run slot.
	// example: 0
	Queued int `json:"queued" example:"0"`
	// Maximum concurrent simulations.
	// example: 2
	MaxConcurrent int `json:"max_concurrent" example:"2"`
	// Maximum queued simulations before backpressure triggers.
	// example: 8
	MaxQueueDepth int `json:"max_queue_depth" example:"8"`
	// Completed simulations since start.
	// example: 12
	RunsTotal uint64 `json:"runs_total" example:"12"`
	// Failed or canceled simulations since start.
	// example: 1
	FailuresTotal uint64 `json:"failures_total" example:"1"`
	// Number of presets known to the server.
	// example: 3
	Presets int `json:"presets" example:"3"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// RunRecord is one entry of the server's run history.
type RunRecord struct {
	// Manager-assigned run identifier.
	// example: run-7
	RunID string `json:"run_id" example:"run-7"`
	// Preset name, empty for inline configs.
	Preset string `json:"preset,omitempty"`
	// example: 42
	Seed      uint64      `json:"seed" example:"42"`
	Steps     int         `json:"steps"`
	Injected  int         `json:"injected"`
	Remaining int         `json:"remaining"`
	Counts    DecayCounts `json:"counts"`
	// Wall-clock duration of the run in seconds.
	ElapsedS float64 `json:"elapsed_s"`
	// Unix milliseconds when the run finished.
	FinishedAtUnixMs int64 `json:"finished_at_unix_ms"`
	// Failure message for runs that did not complete.
	Error string `json:"error,omitempty"`
}

// RunsResponse wraps the list returned by GET /runs, newest first.
type RunsResponse struct {
	Runs []RunRecord `json:"runs"`
}
