package poll

import "sync/atomic"

// Registration is a handle used for registering custom, user-defined
// readiness sources with a Poll instance. It is safe to send across
// goroutines but, unlike SetReadiness, is not meant to be shared: only one
// goroutine should call Update/Deregister/Close on a given Registration at
// a time (spec.md §4.2 — a contended Update is silently discarded, not
// queued or retried).
type Registration struct {
	node   *node
	closed atomic.Bool
}

// NewRegistration allocates a readiness node and returns the Registration
// and SetReadiness handle pair that share it (spec.md §4.2).
func NewRegistration(p *Poll, token Token, interest Readiness, opts Opt) (*Registration, *SetReadiness, error) {
	if err := validateArgs(token, interest); err != nil {
		return nil, nil, err
	}

	n := newNode(p.queue, token, interest, opts)
	return &Registration{node: n}, &SetReadiness{node: n}, nil
}

// Update changes the token, interest, and options associated with the
// registration (spec.md §4.2). It fails with InvalidPoll if p is not the
// Poll instance that created this Registration. A call that finds
// updateLock already held (i.e. a concurrent Update in flight for the same
// Registration) is silently discarded — callers must serialize their own
// calls to Update per registration. Unlike Poll.Register/Reregister,
// Update itself does not validate token/interest: Deregister relies on
// being able to pass an empty interest through unchanged (spec.md §4.2,
// §4.5 — argument validation is the Poll-level forwarders' job).
func (r *Registration) Update(p *Poll, token Token, interest Readiness, opts Opt) error {
	if p.queue != r.node.queue {
		return errInvalidPoll("update targets a different Poll instance than registered with")
	}

	n := r.node
	if !n.updateLock.CompareAndSwapAcqRel(0, 1) {
		return nil
	}

	mustEnqueue := n.update(token, interest, opts)
	n.updateLock.StoreRelease(0)

	if mustEnqueue {
		return n.pushAndMaybeWake()
	}
	return nil
}

// Register makes *Registration satisfy the Source interface by forwarding
// to Update, mirroring how a user-defined Evented type built on
// Registration would implement its own Register/Reregister.
func (r *Registration) Register(p *Poll, token Token, interest Readiness, opts Opt) error {
	return r.Update(p, token, interest, opts)
}

// Reregister makes *Registration satisfy the Source interface by
// forwarding to Update.
func (r *Registration) Reregister(p *Poll, token Token, interest Readiness, opts Opt) error {
	return r.Update(p, token, interest, opts)
}

// Deregister is equivalent to Update(poll, 0, 0, 0): it clears interest so
// no further events are delivered for this registration.
func (r *Registration) Deregister(p *Poll) error {
	return r.Update(p, Token(0), Readiness(0), Opt(0))
}

// Close releases the last Registration handle: it sets the dropped bit so
// no future events are delivered, then releases this handle's reference.
// Go has no destructors, so Close plays the role of the original's
// Drop-on-last-Registration behavior. Only the first call has an effect;
// further calls are no-ops.
func (r *Registration) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.node.flagAsDropped()
	r.node.release()
	return nil
}

func validateArgs(token Token, interest Readiness) error {
	if token == AwakenToken {
		return errInvalidArgs("token is reserved for the awakener")
	}
	if interest&(Readable|Writable) == 0 {
		return errInvalidArgs("interest must include Readable or Writable")
	}
	return nil
}
