// Package gate implements the multi-caller entry gate used by Poll.Poll:
// a bit-packed atomic lock word gives the common single-caller case a pure
// CAS fast path, while a mutex/condvar slow path coalesces contending
// callers — including callers that only want a non-blocking attempt.
package gate

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Gate admits exactly one caller at a time into a critical section.
type Gate struct {
	// state packs the lock flag in bit 0 and a waiter count in the rest.
	state atomix.Uint64

	mu   sync.Mutex
	cond *sync.Cond
}

// New returns a ready-to-use Gate.
func New() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Enter blocks the calling goroutine until it is admitted, or timeout
// elapses. A negative timeout blocks indefinitely. A zero timeout never
// blocks: Enter returns false immediately if another caller already holds
// the gate. Enter returns true when the caller has been admitted; the
// caller must call Exit exactly once in that case.
func (g *Gate) Enter(timeout time.Duration) bool {
	if g.state.CompareAndSwapAcqRel(0, 1) {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	inc := false
	backoff := iox.Backoff{}
	remaining := timeout

	for {
		cur := g.state.LoadAcquire()
		if cur&1 == 0 {
			next := cur | 1
			if inc {
				next -= 2
			}
			if !g.state.CompareAndSwapAcqRel(cur, next) {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			return true
		}

		if timeout == 0 {
			if inc {
				g.subWaiter()
			}
			return false
		}

		if !inc {
			if cur|1 == ^uint64(0) {
				panic("gate: waiter count overflow")
			}
			next := cur + 2
			if !g.state.CompareAndSwapAcqRel(cur, next) {
				backoff.Wait()
				continue
			}
			inc = true
		}

		start := time.Now()
		timedOut := g.waitTimeout(remaining)
		if timeout > 0 {
			elapsed := time.Since(start)
			if timedOut || elapsed >= remaining {
				g.subWaiter()
				return false
			}
			remaining -= elapsed
		}
	}
}

// Exit releases the gate. If any goroutine incremented the waiter count
// while contending for entry, one is woken.
func (g *Gate) Exit() {
	var prev uint64
	for {
		cur := g.state.LoadAcquire()
		next := cur &^ 1
		if g.state.CompareAndSwapAcqRel(cur, next) {
			prev = cur
			break
		}
	}
	if prev != 1 {
		g.mu.Lock()
		g.cond.Signal()
		g.mu.Unlock()
	}
}

func (g *Gate) subWaiter() {
	for {
		cur := g.state.LoadAcquire()
		if g.state.CompareAndSwapAcqRel(cur, cur-2) {
			return
		}
	}
}

// waitTimeout waits on the condvar, returning true if it woke because
// timeout elapsed rather than because of a Signal. A negative timeout
// waits indefinitely.
func (g *Gate) waitTimeout(timeout time.Duration) bool {
	if timeout < 0 {
		g.cond.Wait()
		return false
	}

	fired := make(chan struct{})
	timer := time.AfterFunc(timeout, func() {
		close(fired)
		g.mu.Lock()
		g.cond.Signal()
		g.mu.Unlock()
	})
	defer timer.Stop()

	g.cond.Wait()

	select {
	case <-fired:
		return true
	default:
		return false
	}
}
