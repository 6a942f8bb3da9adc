//go:build race

package poll

// RaceEnabled is true when the race detector is active. Stress tests use
// this to shrink their iteration counts and run times, since the race
// detector's instrumentation slows every CAS retry.
const RaceEnabled = true
