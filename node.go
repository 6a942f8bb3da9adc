package poll

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/readypoll/poll/internal/platform"
)

// sentinelToken fills unused token slots at node creation.
const sentinelToken Token = 0

// node is component B: the record shared by one Registration handle, one
// or more SetReadiness handles, and the consumer. Field order follows the
// teacher's convention of separating atomically-accessed fields with pad
// members to avoid false sharing between producer and consumer threads.
type node struct {
	_ pad
	state atomix.Uint64 // packed stateWord
	_ pad
	next atomic.Pointer[node] // MPSC linkage; nil when not queued
	_ pad
	updateLock atomix.Uint64 // 0/1 single-writer gate, CAS'd once
	_ pad
	handleCount atomix.Uint64
	_ pad
	refCount atomix.Uint64
	_ pad

	// tok holds the three token slots. It is mutated only by the single
	// thread holding updateLock, and read only by the consumer after it
	// observes tok_rd via a state-word CAS it just performed itself — the
	// acquire on updateLock and release on its unlock plus the state-word
	// CAS make the slot write visible. See state.go's nextTokenSlot.
	tok [3]Token

	queue *mpscQueue
}

// newNode allocates a node with ref_count=3 (Registration, SetReadiness,
// implicit consumer reference) and handle_count=1, per spec.md §3.
func newNode(q *mpscQueue, token Token, interest Readiness, opts Opt) *node {
	n := &node{queue: q}
	n.tok[0] = token
	n.tok[1] = sentinelToken
	n.tok[2] = sentinelToken
	w := packState(0, uint8(interest), uint8(opts), 0, 0, false, false)
	n.state.StoreRelaxed(uint64(w))
	n.handleCount.StoreRelaxed(1)
	n.refCount.StoreRelaxed(3)
	return n
}

// addRef increments the reference count. Saturation past half the address
// space is a programmer defect (spec.md §3 invariant 5, §7): abort.
func (n *node) addRef() {
	v := n.refCount.AddAcqRel(1)
	if v > uint64(^uint(0)>>1) {
		panic("poll: node ref_count saturated")
	}
}

// release decrements the reference count. The last release triggers
// deallocation, preceded by an acquire fence — modeled here by the final
// LoadAcquire inherent in the CAS-based decrement loop.
func (n *node) release() {
	for {
		cur := n.refCount.LoadAcquire()
		if cur == 0 {
			panic("poll: node ref_count underflow")
		}
		if n.refCount.CompareAndSwapAcqRel(cur, cur-1) {
			if cur == 1 {
				// Acquire fence already satisfied by the CAS above;
				// the node becomes eligible for GC once every strong
				// *node reference that remains (handles, queue
				// linkage) is itself gone.
			}
			return
		}
	}
}

// flagAsDropped sets the dropped bit with a CAS loop that ORs the bit into
// the state word (the effect of a release fetch-or, spec.md §4.2):
// dropping the last Registration handle marks the node so no further
// enqueues happen from handle code and the consumer releases
// its implicit reference on next observation.
func (n *node) flagAsDropped() {
	for {
		cur := n.state.LoadAcquire()
		next := cur | uint64(droppedBit)
		if next == cur {
			return
		}
		if n.state.CompareAndSwapAcqRel(cur, next) {
			return
		}
	}
}

// maybeEnqueue is shared by setReadiness and update: it reports whether
// the just-performed state transition moved queued from clear to set, in
// which case the caller is obligated to push the node onto the queue and,
// if the push observed the consumer asleep, fire the awakener.
func maybeEnqueue(wasQueued bool, next stateWord) bool {
	return !wasQueued && isQueued(next)
}

// setReadiness is the CAS loop behind SetReadiness.SetReadiness. It
// returns whether the caller must now enqueue the node. Per spec.md §4.2,
// a set_readiness on a dropped node is a silent no-op.
func (n *node) setReadiness(readiness uint8) bool {
	sw := spin.Wait{}
	for {
		cur := stateWord(n.state.LoadAcquire())
		_, interest, opts, rd, wr, queued, dropped := unpackState(cur)
		if dropped {
			return false
		}

		eff := readiness & interest
		nextQueued := queued || eff != 0
		next := packState(readiness, interest, opts, rd, wr, nextQueued, dropped)

		if n.state.CompareAndSwapAcqRel(uint64(cur), uint64(next)) {
			return maybeEnqueue(queued, next)
		}
		sw.Once()
	}
}

// update is the CAS loop behind Registration.Update, not counting the
// updateLock acquisition (handled by the caller). It returns whether the
// caller must now enqueue the node.
func (n *node) update(token Token, interest Readiness, opts Opt) bool {
	initial := stateWord(n.state.LoadAcquire())
	_, _, _, rd, wr, _, _ := unpackState(initial)

	tokenChanged := token != n.tok[wr]
	newWr := wr
	if tokenChanged {
		newWr = nextTokenSlot(rd, wr)
		n.tok[newWr] = token
	}

	sw := spin.Wait{}
	for {
		cur := stateWord(n.state.LoadAcquire())
		readiness, _, _, curRd, curWr, queued, dropped := unpackState(cur)

		writeWr := curWr
		if tokenChanged {
			writeWr = newWr
		}

		eff := readiness & uint8(interest)
		nextQueued := queued || eff != 0
		next := packState(readiness, uint8(interest), uint8(opts), curRd, writeWr, nextQueued, dropped)

		if n.state.CompareAndSwapAcqRel(uint64(cur), uint64(next)) {
			return maybeEnqueue(queued, next)
		}
		sw.Once()
	}
}

// pushAndMaybeWake enqueues the node and fires the awakener if the queue
// reports the consumer was asleep. Used by both setReadiness's and
// update's callers once they learn they must enqueue.
func (n *node) pushAndMaybeWake() error {
	mustWake := n.queue.enqueue(n)
	if mustWake {
		return n.queue.wake()
	}
	return nil
}

// --- MPSC readiness queue (component C) ---

// mpscQueue is the intrusive MPSC linked list. head is the producer side,
// mutated under CAS by any thread; tail is consumer-private. end_marker
// and sleep_marker are pre-allocated sentinels owned by the queue,
// distinguished from data nodes by pointer identity, never freed
// independently of the queue itself.
//
// head, tail, and every node's next field are real *node-typed pointers
// (head/next via atomic.Pointer[node], tail as a plain field the consumer
// alone touches) rather than uintptr-tagged integers: a node linked into
// the queue must stay visible to the garbage collector for as long as it
// is reachable from here, even after every Registration/SetReadiness
// handle referencing it has been dropped and before the consumer has
// drained it.
type mpscQueue struct {
	_ pad
	head atomic.Pointer[node]
	_ pad
	tail *node // consumer-private, no atomic needed

	endMarker   node
	sleepMarker node

	awakener platform.Awakener
}

// newMPSCQueue builds a queue whose initial state is head == tail ==
// &end_marker, per spec.md §4.3.
func newMPSCQueue(awakener platform.Awakener) *mpscQueue {
	q := &mpscQueue{awakener: awakener}
	q.head.Store(&q.endMarker)
	q.tail = &q.endMarker
	return q
}

func (q *mpscQueue) isMarker(n *node) bool {
	return n == &q.endMarker || n == &q.sleepMarker
}

func (q *mpscQueue) wake() error {
	if q.awakener == nil {
		return nil
	}
	return q.awakener.Wakeup()
}

// enqueue pushes n onto the queue (§4.3 "Enqueue (multi-producer)").
// Returns true if the node's predecessor was the sleep marker, meaning the
// caller observed the consumer asleep and must fire the awakener.
func (q *mpscQueue) enqueue(n *node) bool {
	n.next.Store(nil)

	var prev *node
	sw := spin.Wait{}
	for {
		old := q.head.Load()
		if q.head.CompareAndSwap(old, n) {
			prev = old
			break
		}
		sw.Once()
	}

	prev.next.Store(n)

	return prev == &q.sleepMarker
}

// dequeueResult is the outcome of a single dequeue attempt, named after
// the 1024cores intrusive MPSC queue this algorithm is based on.
type dequeueResult int

const (
	dequeueEmpty dequeueResult = iota
	dequeueInconsistent
	dequeueData
)

// dequeue implements §4.3's "Dequeue (single consumer), parameterized by
// until" exactly. until breaks the re-enqueue loop for level-triggered
// nodes: if the next node to pop is until, Empty is reported instead of
// spinning on a node with no new readiness.
func (q *mpscQueue) dequeue(until *node) (dequeueResult, *node) {
	tail := q.tail
	next := tail.next.Load()

	if q.isMarker(tail) {
		if next == nil {
			return dequeueEmpty, nil
		}
		tail = next
		q.tail = tail
		next = tail.next.Load()
	}

	if tail == until {
		return dequeueEmpty, nil
	}

	if next != nil {
		q.tail = next
		return dequeueData, tail
	}

	if q.head.Load() != tail {
		return dequeueInconsistent, nil
	}

	// Advance head past a straggling producer.
	q.enqueue(&q.endMarker)

	next = tail.next.Load()
	if next != nil {
		q.tail = next
		return dequeueData, tail
	}

	return dequeueInconsistent, nil
}

// prepareForSleep is called by the consumer just before blocking in the
// kernel demultiplexer. It returns true if the consumer may safely block
// (the queue was empty), false if the queue is non-empty and the consumer
// must not block.
func (q *mpscQueue) prepareForSleep() bool {
	q.sleepMarker.next.Store(nil)

	if q.head.CompareAndSwap(&q.endMarker, &q.sleepMarker) {
		q.tail = &q.sleepMarker
		return true
	}
	return false
}

// tryRemoveSleepMarker attempts to restore head/tail to the end marker
// after the consumer wakes. On failure the sleep marker is already
// mid-queue and will be dequeued like any other marker (skipped, never
// emitted as an event).
func (q *mpscQueue) tryRemoveSleepMarker() {
	if q.head.CompareAndSwap(&q.sleepMarker, &q.endMarker) {
		q.tail = &q.endMarker
	}
}
