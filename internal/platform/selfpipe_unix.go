//go:build !windows

package platform

import (
	"time"

	"golang.org/x/sys/unix"
)

// SelfPipeAwakener is a reference Awakener backed by a non-blocking pipe,
// the classic self-pipe trick. Grounded on the per-OS wake-fd helpers of
// event loop implementations in the wild (e.g. a darwin wakeup.go building
// the same pipe+CloseOnExec+non-blocking shape via syscall.Pipe): Wakeup
// writes one byte, Cleanup drains everything currently buffered, Register
// is a no-op placeholder since the reference SelfPipeSelector polls the read
// fd directly rather than through a real kernel demultiplexer.
type SelfPipeAwakener struct {
	readFD, writeFD int
}

// NewSelfPipeAwakener creates the pipe and sets both ends non-blocking.
func NewSelfPipeAwakener() (*SelfPipeAwakener, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, err
	}
	return &SelfPipeAwakener{readFD: fds[0], writeFD: fds[1]}, nil
}

// Register is a no-op: the companion Selector for this awakener reads the
// pipe's fd directly rather than through a registered interest set.
func (a *SelfPipeAwakener) Register(sel Selector, awakenToken uint64) error {
	return nil
}

// Wakeup writes a single byte to the pipe, unblocking any goroutine
// reading from readFD. EAGAIN (pipe buffer already has pending wakeups)
// is not an error — one byte is already enough to wake the reader.
func (a *SelfPipeAwakener) Wakeup() error {
	_, err := unix.Write(a.writeFD, []byte{0})
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

// Cleanup drains every byte currently buffered in the pipe.
func (a *SelfPipeAwakener) Cleanup() error {
	buf := make([]byte, 64)
	for {
		_, err := unix.Read(a.readFD, buf)
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close closes both ends of the pipe.
func (a *SelfPipeAwakener) Close() error {
	err1 := unix.Close(a.readFD)
	err2 := unix.Close(a.writeFD)
	if err1 != nil {
		return err1
	}
	return err2
}

// wait blocks until the read end becomes readable or timeout elapses,
// using a plain poll(2) call — the minimal kernel demultiplex this
// reference implementation needs for its own read fd.
func (a *SelfPipeAwakener) wait(timeout time.Duration) (bool, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	fds := []unix.PollFd{{Fd: int32(a.readFD), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
