package poll_test

import (
	"errors"
	"testing"

	"github.com/readypoll/poll"
)

func TestErrorKindString(t *testing.T) {
	cases := map[poll.ErrorKind]string{
		poll.KindInvalidArgs: "invalid-args",
		poll.KindInvalidPoll: "invalid-poll",
		poll.KindIO:          "io",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("String(%d): got %q, want %q", kind, got, want)
		}
	}
}

func TestIsInvalidArgsAndIsInvalidPoll(t *testing.T) {
	p := newTestPoll(t)

	_, _, err := poll.NewRegistration(p, poll.AwakenToken, poll.Readable, poll.Edge)
	if !poll.IsInvalidArgs(err) {
		t.Fatalf("IsInvalidArgs: got false for %v", err)
	}
	if poll.IsInvalidPoll(err) {
		t.Fatalf("IsInvalidPoll: got true for an InvalidArgs error")
	}

	var plainErr error = errors.New("unrelated")
	if poll.IsInvalidArgs(plainErr) || poll.IsInvalidPoll(plainErr) {
		t.Fatal("classification functions matched an unrelated error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")

	wrapped := &poll.Error{Kind: poll.KindIO, Msg: "selector.Select", Err: cause}
	if !errors.Is(wrapped, cause) {
		t.Fatal("errors.Is did not see through Error.Unwrap")
	}
}
