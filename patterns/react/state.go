package react

// State is a phase of a single run.
type State int

const (
	// StateAwaitingModel: the conversation is being sent to the model.
	StateAwaitingModel State = iota
	// StateExecutingTools: the requested tool calls are being run in order.
	StateExecutingTools
	// StateDone: the model replied without tool calls.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	case StateExecutingTools:
		return "executing_tools"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
