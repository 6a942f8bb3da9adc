package platform

import "time"

// ChannelAwakener is a portable Awakener/Selector pair built on a buffered
// channel instead of a kernel fd. It is used by this module's own test
// suite to drive Poll deterministically on every platform, independent of
// the unix-specific SelfPipeAwakener.
type ChannelAwakener struct {
	ch chan struct{}
}

// NewChannelAwakener creates a ready-to-use awakener/selector pair.
func NewChannelAwakener() *ChannelAwakener {
	return &ChannelAwakener{ch: make(chan struct{}, 1)}
}

func (a *ChannelAwakener) Register(sel Selector, awakenToken uint64) error {
	return nil
}

// Wakeup is idempotent while a pending wakeup has not yet been observed:
// the channel has capacity 1, so redundant wakeups before the next Select
// do not block the caller.
func (a *ChannelAwakener) Wakeup() error {
	select {
	case a.ch <- struct{}{}:
	default:
	}
	return nil
}

// Cleanup drains any pending wakeup signal.
func (a *ChannelAwakener) Cleanup() error {
	select {
	case <-a.ch:
	default:
	}
	return nil
}

// Select blocks until Wakeup is called or timeout elapses. A negative
// timeout blocks indefinitely; zero returns immediately.
func (a *ChannelAwakener) Select(sink EventSink, awakenToken uint64, timeout time.Duration) (bool, error) {
	if timeout == 0 {
		select {
		case <-a.ch:
			return true, nil
		default:
			return false, nil
		}
	}
	if timeout < 0 {
		<-a.ch
		return true, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-a.ch:
		return true, nil
	case <-timer.C:
		return false, nil
	}
}
