// Package manager hosts simulations for the HTTP layer. It is structured into
// small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - errors.go: error types and helpers (IsTooBusy, IsPresetNotFound, IsInvalidRequest).
//   - queue_admission.go: bounded queueing and run-slot admission.
//   - simulate.go: request resolution and the run itself.
//   - status_report.go: Status reporting.
//   - sanity.go: preflight checks over the preset registry.
//
// External packages should treat this package as the orchestration layer and use
// public methods only (e.g., NewWithConfig, Ready, ListPresets, Status, Simulate).
package manager
