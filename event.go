package wiresim

// EventKind tags one unit of surfaced transfer activity.
type EventKind int

const (
	// KindFirst marks headers and status becoming available.
	KindFirst EventKind = iota

	// KindData carries one body fragment.
	KindData

	// KindStall marks a simulated stall/timeout at a byte offset. It is
	// not a hard failure; the consumer decides whether the transfer is
	// interrupted.
	KindStall

	// KindTerminal marks end-of-body. Exactly one is surfaced per
	// exchange, and nothing follows it except at most one KindFailure.
	KindTerminal

	// KindFailure carries a transport failure, surfaced immediately
	// after KindTerminal when the exchange recorded an error.
	KindFailure
)

func (k EventKind) String() string {
	switch k {
	case KindFirst:
		return "first"
	case KindData:
		return "data"
	case KindStall:
		return "stall"
	case KindTerminal:
		return "terminal"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Event is one surfaced activity unit for an exchange. Which fields are
// meaningful depends on Kind: Data and Offset for KindData, Offset for
// KindStall, Err for KindFailure.
type Event struct {
	Kind EventKind

	// Data is the body fragment of a KindData event.
	Data []byte

	// Offset is the cumulative number of body bytes delivered after a
	// KindData event, or the offset at which a KindStall occurred.
	Offset int64

	// Err is the cause of a KindFailure event.
	Err error
}
