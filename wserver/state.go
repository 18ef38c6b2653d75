package wserver

// State is the connection's position in the lifecycle of spec.md §4.5:
// Reading -> Processing -> BackendWorking -> Sending -> Done. The
// request is parsed inside the Reading step as soon as the frame is
// complete, so no Connection ever enters StateParsing. Every backend
// is driven in-band from BackendWorking; there is no WaitingTask state.
type State int

const (
	StateReading State = iota
	StateParsing
	StateProcessing
	StateBackendWorking
	StateSending
	StateDone
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "Reading"
	case StateParsing:
		return "Parsing"
	case StateProcessing:
		return "Processing"
	case StateBackendWorking:
		return "BackendWorking"
	case StateSending:
		return "Sending"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
