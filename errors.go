package poll

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a non-blocking operation could not complete
// immediately. Poll.Poll never returns it (a zero timeout simply yields
// zero events); it exists for parity with the surrounding lock-free
// queue ecosystem and for internal classification.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control-flow signal, not a failure.
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// ErrorKind classifies the errors this package can return.
type ErrorKind int

const (
	// KindInvalidArgs marks a reserved token or an interest set missing
	// both Readable and Writable.
	KindInvalidArgs ErrorKind = iota
	// KindInvalidPoll marks an update against a Poll instance other than
	// the one that created the registration.
	KindInvalidPoll
	// KindIO marks an error propagated from the awakener or kernel
	// selector.
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgs:
		return "invalid-args"
	case KindInvalidPoll:
		return "invalid-poll"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the error type returned by this package's fallible operations.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error // wrapped cause, set for KindIO
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("poll: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("poll: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func errInvalidArgs(msg string) error {
	return &Error{Kind: KindInvalidArgs, Msg: msg}
}

func errInvalidPoll(msg string) error {
	return &Error{Kind: KindInvalidPoll, Msg: msg}
}

func errIO(msg string, cause error) error {
	return &Error{Kind: KindIO, Msg: msg, Err: cause}
}

// IsInvalidArgs reports whether err is a KindInvalidArgs Error.
func IsInvalidArgs(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInvalidArgs
}

// IsInvalidPoll reports whether err is a KindInvalidPoll Error.
func IsInvalidPoll(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInvalidPoll
}
