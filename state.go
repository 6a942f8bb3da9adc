package poll

// stateWord is the packed representation of component A, the per-node
// atomic state. Bit layout, low to high:
//
//	4 bits  readiness
//	4 bits  interest
//	4 bits  poll options
//	2 bits  tok_rd  (token slot currently read by the consumer)
//	2 bits  tok_wr  (token slot last written by update)
//	1 bit   queued
//	1 bit   dropped
//
// All mutation happens via compare-and-swap on the full word. flagAsDropped
// is the one writer that changes a single bit regardless of the rest: its
// CAS loop ORs in the dropped bit.
type stateWord uint64

const (
	readinessShift = 0
	interestShift  = 4
	optsShift      = 8
	tokRdShift     = 12
	tokWrShift     = 14
	queuedShift    = 16
	droppedShift   = 17

	mask4 = 0xF
	mask2 = 0x3

	queuedBit  stateWord = 1 << queuedShift
	droppedBit stateWord = 1 << droppedShift
)

// packState assembles a stateWord from its fields.
func packState(readiness, interest, opts, tokRd, tokWr uint8, queued, dropped bool) stateWord {
	w := stateWord(readiness&mask4)<<readinessShift |
		stateWord(interest&mask4)<<interestShift |
		stateWord(opts&mask4)<<optsShift |
		stateWord(tokRd&mask2)<<tokRdShift |
		stateWord(tokWr&mask2)<<tokWrShift
	if queued {
		w |= queuedBit
	}
	if dropped {
		w |= droppedBit
	}
	return w
}

// unpackState decomposes a stateWord into its fields.
func unpackState(w stateWord) (readiness, interest, opts, tokRd, tokWr uint8, queued, dropped bool) {
	readiness = uint8((w >> readinessShift) & mask4)
	interest = uint8((w >> interestShift) & mask4)
	opts = uint8((w >> optsShift) & mask4)
	tokRd = uint8((w >> tokRdShift) & mask2)
	tokWr = uint8((w >> tokWrShift) & mask2)
	queued = w&queuedBit != 0
	dropped = w&droppedBit != 0
	return
}

// effectiveReadiness returns readiness ∩ interest.
func effectiveReadiness(w stateWord) uint8 {
	readiness, interest, _, _, _, _, _ := unpackState(w)
	return readiness & interest
}

// isQueued reports whether the queued bit is set.
func isQueued(w stateWord) bool {
	return w&queuedBit != 0
}

// isDropped reports whether the dropped bit is set.
func isDropped(w stateWord) bool {
	return w&droppedBit != 0
}

// nextTokenSlot returns the unique slot in {0,1,2} distinct from both rd
// and wr. When rd == wr it deterministically returns (wr+1) mod 3 — the
// writer never overwrites the slot the reader is or was last pointed at,
// so neither side needs a lock to read or write a single slot.
func nextTokenSlot(rd, wr uint8) uint8 {
	if rd != wr {
		return 3 - rd - wr
	}
	return (wr + 1) % 3
}
