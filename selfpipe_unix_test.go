//go:build !windows

package poll_test

import (
	"testing"

	"github.com/readypoll/poll"
	"github.com/readypoll/poll/internal/platform"
)

// TestPollWithSelfPipeAwakener exercises Poll.New against the reference
// self-pipe Awakener/Selector pair instead of the portable ChannelAwakener
// used elsewhere, confirming the two collaborators are interchangeable.
func TestPollWithSelfPipeAwakener(t *testing.T) {
	aw, err := platform.NewSelfPipeAwakener()
	if err != nil {
		t.Fatalf("NewSelfPipeAwakener: %v", err)
	}
	defer aw.Close()
	sel := platform.NewSelfPipeSelector(aw)

	p, err := poll.New(sel, aw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r, s, err := poll.NewRegistration(p, 3, poll.Readable, poll.Edge)
	if err != nil {
		t.Fatalf("NewRegistration: %v", err)
	}
	if err := p.Register(r, 3, poll.Readable, poll.Edge); err != nil {
		t.Fatalf("Register: %v", err)
	}

	events := poll.NewEvents(8)
	n, err := p.Poll(events, 0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n != 0 {
		t.Fatalf("Poll before readiness: got %d events, want 0", n)
	}

	if err := s.SetReadiness(poll.Readable); err != nil {
		t.Fatalf("SetReadiness: %v", err)
	}

	n, err = p.Poll(events, 0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n != 1 {
		t.Fatalf("Poll after readiness: got %d events, want 1", n)
	}
	ev, _ := events.Get(0)
	if ev.Readiness != poll.Readable || ev.Token != 3 {
		t.Fatalf("event: got %+v, want {Readable, 3}", ev)
	}
}
