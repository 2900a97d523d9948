package ecat

// ExchangeState tracks the progress of one SDO request/response exchange.
//
// Exchanges advance Idle -> PreparePending -> PrepareConfirmed ->
// RunPending -> Complete. The two pending states may loop back to
// themselves on a rejected reply, or the whole exchange re-enters Idle when
// the link is busy.
type ExchangeState uint32

const (
	// StateIdle means no exchange is in flight.
	StateIdle ExchangeState = iota
	// StatePreparePending means a prepare frame was written and its reply is
	// awaited.
	StatePreparePending
	// StatePrepareConfirmed means the prepare reply validated and the
	// slave's mailbox is primed.
	StatePrepareConfirmed
	// StateRunPending means a run frame was written and its reply is
	// awaited.
	StateRunPending
	// StateComplete means the run reply validated and the exchange finished.
	StateComplete
)

// String returns the string representation of the state.
func (s ExchangeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparePending:
		return "prepare-pending"
	case StatePrepareConfirmed:
		return "prepare-confirmed"
	case StateRunPending:
		return "run-pending"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}
