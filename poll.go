package poll

import (
	"time"

	"code.hybscloud.com/spin"

	"github.com/readypoll/poll/gate"
	"github.com/readypoll/poll/internal/platform"
)

// Poll allows a program to wait on a set of registered sources until one
// or more become ready. See spec.md §4.5 / component E.
type Poll struct {
	selector platform.Selector
	awakener platform.Awakener
	queue    *mpscQueue
	gate     *gate.Gate
}

// New creates a Poll bound to the given kernel selector and awakener, and
// registers the awakener's own readiness under AwakenToken so the
// selector can report when it fired (spec.md §4.5 step 3, mirroring the
// original's Poll::new awakener registration — a supplemented feature
// drawn from original_source/src/poll.rs, see SPEC_FULL.md).
func New(selector platform.Selector, awakener platform.Awakener) (*Poll, error) {
	p := &Poll{
		selector: selector,
		awakener: awakener,
		gate:     gate.New(),
	}
	p.queue = newMPSCQueue(awakener)

	if err := awakener.Register(selector, uint64(AwakenToken)); err != nil {
		return nil, errIO("registering awakener with selector", err)
	}
	return p, nil
}

// Source is the contract a registered I/O source (kernel-backed or
// user-defined) fulfills, polymorphic over kernel sources and
// Registration (spec.md §6).
type Source interface {
	Register(p *Poll, token Token, interest Readiness, opts Opt) error
	Reregister(p *Poll, token Token, interest Readiness, opts Opt) error
	Deregister(p *Poll) error
}

// Register validates the arguments and forwards to the source's own
// Register method.
func (p *Poll) Register(src Source, token Token, interest Readiness, opts Opt) error {
	if err := validateArgs(token, interest); err != nil {
		return err
	}
	return src.Register(p, token, interest, opts)
}

// Reregister validates the arguments and forwards to the source's own
// Reregister method.
func (p *Poll) Reregister(src Source, token Token, interest Readiness, opts Opt) error {
	if err := validateArgs(token, interest); err != nil {
		return err
	}
	return src.Reregister(p, token, interest, opts)
}

// Deregister forwards to the source's own Deregister method.
func (p *Poll) Deregister(src Source) error {
	return src.Deregister(p)
}

// Poll blocks the calling goroutine until one or more registered sources
// are ready, the timeout elapses, or (with a zero timeout) returns
// immediately. A negative timeout blocks indefinitely. It returns the
// number of events written into events.
//
// Poll may be called concurrently from multiple goroutines; only one at a
// time is admitted into the critical section (spec.md §4.5 entry gate).
func (p *Poll) Poll(events *Events, timeout time.Duration) (int, error) {
	events.reset()

	if !p.gate.Enter(timeout) {
		return 0, nil
	}
	defer p.gate.Exit()

	return p.poll2(events, timeout)
}

func (p *Poll) poll2(events *Events, timeout time.Duration) (int, error) {
	slept := false

	selectorTimeout := timeout
	if timeout != 0 {
		if p.queue.prepareForSleep() {
			slept = true
		} else {
			selectorTimeout = 0
		}
	}

	awakened, err := p.selector.Select(events, uint64(AwakenToken), selectorTimeout)
	if err != nil {
		return 0, errIO("selector.Select", err)
	}

	if slept {
		p.queue.tryRemoveSleepMarker()
	}

	if awakened {
		if err := p.awakener.Cleanup(); err != nil {
			return 0, errIO("awakener.Cleanup", err)
		}
	}

	p.queue.drain(events)

	return events.Len(), nil
}

// drain repeatedly dequeues nodes into the remaining capacity of events,
// implementing spec.md §4.3's poll-loop drain.
func (q *mpscQueue) drain(events *Events) {
	var until *node

	for events.remaining() > 0 {
		result, n := q.dequeue(until)
		if result != dequeueData {
			return
		}
		if q.isMarker(n) {
			continue
		}

		if isDropped(stateWord(n.state.LoadAcquire())) {
			// dropped: no further user-visible events; release the
			// consumer's implicit reference (spec.md §3 invariant 4).
			n.release()
			continue
		}

		var eff uint8
		var tokenSlot uint8
		var reenqueue bool

		sw := spin.Wait{}
		for {
			cur := stateWord(n.state.LoadAcquire())
			readiness, interest, opts, _, wr, queued, _ := unpackState(cur)

			curEff := readiness & interest
			newInterest := interest
			newQueued := queued

			if Opt(opts)&Edge != 0 {
				newQueued = false
				if Opt(opts)&Oneshot != 0 && curEff != 0 {
					newInterest = 0
				}
			} else if curEff == 0 {
				newQueued = false
			} else {
				newQueued = true
			}

			// Publish tok_rd = tok_wr (invariant 2) in the same CAS.
			next := packState(readiness, newInterest, opts, wr, wr, newQueued, isDropped(cur))
			if n.state.CompareAndSwapAcqRel(uint64(cur), uint64(next)) {
				eff = curEff
				tokenSlot = wr
				reenqueue = newQueued
				break
			}
			sw.Once()
		}

		if reenqueue {
			// Ordering note (spec.md §4.3): re-enqueueing before reading
			// the token is fine because tok[tokenSlot] is stable — a
			// concurrent update can no longer target this slot (it now
			// equals both tok_rd and tok_wr, so nextTokenSlot steers
			// clear of it).
			q.enqueue(n)
			if until == nil {
				until = n
			}
		}

		if eff != 0 {
			events.PushNative(eff, uint64(n.tok[tokenSlot]))
		}
	}
}
