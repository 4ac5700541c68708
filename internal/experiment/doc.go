// Package experiment couples an excitation source with an emitter population
// and drives them on a fixed-step simulation clock.
//
//   - experiment.go: Experiment, its three-state lifecycle (Configure, Run, Report).
//   - state.go: State values.
//   - errors.go: invalid-state and configuration errors (IsInvalidState, IsConfigError).
//   - events.go: lifecycle events and the EventPublisher hook.
//   - build.go: Build assembles profile, population and experiment from an ExperimentConfig.
//
// An Experiment is single-threaded: it owns its source and population for the
// duration of Run and must not be shared between goroutines.
package experiment
