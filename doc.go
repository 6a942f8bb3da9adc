// Package poll implements the readiness-notification core of a
// cross-platform non-blocking I/O multiplexer.
//
// Client code registers I/O sources (kernel-backed or user-defined) with a
// Poll and later blocks until one or more become ready. The kernel side
// delegates to a platform demultiplexer behind the internal/platform
// Selector interface; the work that lives in this package is the
// user-space readiness queue: a lock-free multi-producer/single-consumer
// structure that interleaves arbitrary-thread readiness updates with a
// single consumer thread that also blocks inside the kernel demultiplexer.
//
// # Quick Start
//
//	p, err := poll.New(selector, awakener)
//	reg, setReadiness, err := poll.NewRegistration(p, poll.Token(1), poll.Readable, poll.Edge)
//
//	events := poll.NewEvents(128)
//	n, err := p.Poll(events, -1) // block until something is ready
//
//	setReadiness.SetReadiness(poll.Readable) // from any goroutine
//
// # Edge-triggered and level-triggered
//
// A registration may request edge-triggered or level-triggered delivery via
// Opt. Edge-triggered registrations deliver one event per rising edge of
// effective readiness (readiness ∩ interest) and, if combined with Oneshot,
// clear their own interest after the first delivery. Level-triggered
// registrations are re-queued after every dequeue and keep delivering events
// as long as effective readiness stays non-empty.
//
// # Concurrency
//
// Registration.Update must not be called concurrently for the same
// Registration: a contended call is silently discarded rather than queued
// or retried. SetReadiness.SetReadiness is safe to call concurrently from
// any number of goroutines. Poll.Poll may be called concurrently from
// multiple goroutines; only one at a time is admitted into the critical
// section, the rest wait on the entry gate (see the gate package).
//
// # Non-goals
//
// This package does not provide fairness across registrations, bounded
// delivery latency, preservation of producer call order, or any
// synchronization of application payload data across the readiness
// boundary — callers must use their own memory ordering for that.
package poll
