//go:build !race

package poll

// RaceEnabled is false when the race detector is not active.
const RaceEnabled = false
