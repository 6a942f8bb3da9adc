package poll

// Readiness is a small set of I/O readiness conditions, encoded in 4 bits.
// The exact bit assignment beyond Readable/Writable is an opaque,
// caller-defined extension point; this package only ever combines
// Readiness values with bitwise operations and never interprets
// individual unnamed bits.
type Readiness uint8

const (
	Readable Readiness = 1 << iota
	Writable
)

// Opt is a small set of poll options, encoded in 4 bits.
type Opt uint8

const (
	Edge Opt = 1 << iota
	Level
	Oneshot
)

// Token is an opaque identifier chosen by the caller and handed back with
// any Event sourced from the corresponding registration.
type Token uint64

// AwakenToken is reserved for the internal awakener registration; it is
// rejected by Register/Reregister/NewRegistration when supplied by a
// caller.
const AwakenToken Token = ^Token(0)
