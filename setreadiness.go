package poll

import "sync/atomic"

// SetReadiness is used to update readiness for an associated Registration.
// Unlike Registration, SetReadiness is safe to share and call concurrently
// from any number of goroutines.
type SetReadiness struct {
	node   *node
	closed atomic.Bool
}

// SetReadiness updates the node's readiness bits. If the resulting
// effective readiness (readiness ∩ interest) is non-empty, the node is
// queued for delivery; if this call is the one that transitions queued
// from clear to set, it pushes the node onto the MPSC queue and, if the
// push observes the consumer asleep, fires the awakener. Calling this on
// a node whose last Registration has been dropped is a silent no-op —
// there is no observer left to notify (spec.md §4.2, §7).
func (s *SetReadiness) SetReadiness(readiness Readiness) error {
	if s.node.setReadiness(uint8(readiness)) {
		return s.node.pushAndMaybeWake()
	}
	return nil
}

// Readiness returns the node's current readiness bits with a relaxed
// load. It provides no synchronization for any caller-owned payload data
// associated with the readiness change (spec.md §1 Non-goals).
func (s *SetReadiness) Readiness() Readiness {
	w := stateWord(s.node.state.LoadRelaxed())
	r, _, _, _, _, _, _ := unpackState(w)
	return Readiness(r)
}

// Close releases this handle's reference on the shared node. It must be
// called exactly once; further calls are no-ops.
func (s *SetReadiness) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.node.release()
	return nil
}
