// Package excitation generates the stream of excitation events injected into
// an emitter population.
//
//   - time.go: TimeGenerator and its variants (continuous-wave, Gaussian pulse train).
//   - location.go: LocationGenerator and the Gaussian spot variant.
//   - profile.go: Profile, which zips one time and one location generator into a
//     forward-only, time-ordered stream released incrementally via ReleaseUpTo.
//   - errors.go: invalid-parameter and degenerate-input errors.
//
// All generators draw from a caller-supplied *rand.Rand so that a run is
// reproducible given its seed.
package excitation
