package poll_test

import (
	"testing"

	"github.com/readypoll/poll"
)

// TestEffectiveReadinessIsIntersection covers property "effective
// readiness = readiness ∩ interest": a readiness bit outside interest
// never produces an event, and interest is gated per-bit, not all-or-
// nothing.
func TestEffectiveReadinessIsIntersection(t *testing.T) {
	p := newTestPoll(t)
	r, s, err := poll.NewRegistration(p, 0, poll.Readable, poll.Edge)
	if err != nil {
		t.Fatalf("NewRegistration: %v", err)
	}
	if err := p.Register(r, 0, poll.Readable, poll.Edge); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := s.SetReadiness(poll.Writable); err != nil {
		t.Fatalf("SetReadiness(Writable): %v", err)
	}
	events := poll.NewEvents(8)
	n, err := p.Poll(events, 0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n != 0 {
		t.Fatalf("Poll with disjoint readiness/interest: got %d events, want 0", n)
	}

	if err := s.SetReadiness(poll.Readable | poll.Writable); err != nil {
		t.Fatalf("SetReadiness(Readable|Writable): %v", err)
	}
	n, err = p.Poll(events, 0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n != 1 {
		t.Fatalf("Poll with intersecting readiness: got %d events, want 1", n)
	}
	ev, _ := events.Get(0)
	if ev.Readiness != poll.Readable {
		t.Fatalf("event readiness: got %v, want only Readable (interest gates Writable out)", ev.Readiness)
	}
}

// TestQueuedCoalescesMultipleSetReadinessBeforePoll covers property 1,
// at-most-one-queued: several SetReadiness calls before a single Poll
// still produce only one event for that node.
func TestQueuedCoalescesMultipleSetReadinessBeforePoll(t *testing.T) {
	p := newTestPoll(t)
	r, s, err := poll.NewRegistration(p, 4, poll.Readable, poll.Level)
	if err != nil {
		t.Fatalf("NewRegistration: %v", err)
	}
	if err := p.Register(r, 4, poll.Readable, poll.Level); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.SetReadiness(poll.Readable); err != nil {
			t.Fatalf("SetReadiness(%d): %v", i, err)
		}
	}

	events := poll.NewEvents(8)
	n, err := p.Poll(events, 0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n != 1 {
		t.Fatalf("Poll after repeated SetReadiness: got %d events, want 1", n)
	}
}

// TestTokenFreshnessAcrossRapidUpdates covers property 3, token
// freshness: several Update calls in a row, with no intervening Poll,
// each rotate the token slot; the next delivered event must carry the
// most recently published token, never an intermediate one.
func TestTokenFreshnessAcrossRapidUpdates(t *testing.T) {
	p := newTestPoll(t)
	r, s, err := poll.NewRegistration(p, 1, poll.Readable, poll.Edge)
	if err != nil {
		t.Fatalf("NewRegistration: %v", err)
	}
	if err := p.Register(r, 1, poll.Readable, poll.Edge); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tokens := []poll.Token{2, 3, 4, 5, 6}
	for _, tok := range tokens {
		if err := p.Reregister(r, tok, poll.Readable, poll.Edge); err != nil {
			t.Fatalf("Reregister(%d): %v", tok, err)
		}
	}

	if err := s.SetReadiness(poll.Readable); err != nil {
		t.Fatalf("SetReadiness: %v", err)
	}

	events := poll.NewEvents(8)
	n, err := p.Poll(events, 0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n != 1 {
		t.Fatalf("Poll: got %d events, want 1", n)
	}
	ev, _ := events.Get(0)
	want := tokens[len(tokens)-1]
	if ev.Token != want {
		t.Fatalf("token: got %d, want %d (the most recent Reregister)", ev.Token, want)
	}
}
