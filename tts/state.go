package tts

// StateType is the playback state of a session.
type StateType int

const (
	// StateStopped means nothing is being spoken. It is the initial state.
	StateStopped StateType = iota
	// StatePlaying means an utterance is being spoken.
	StatePlaying
	// StatePaused means the current utterance is held and can be resumed.
	StatePaused
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// StateMachine guards playback state transitions.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
	onChange    func(from, to StateType)
}

// NewStateMachine creates a state machine in the stopped state. Stopped is
// reachable from every state.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateStopped,
		transitions: map[StateType][]StateType{
			StateStopped: {StatePlaying},
			StatePlaying: {StatePaused, StateStopped},
			StatePaused:  {StatePlaying, StateStopped},
		},
	}
}

// Transition moves to the given state. It reports false for a transition the
// table does not allow. Moving to the current state is an accepted no-op.
func (sm *StateMachine) Transition(to StateType) bool {
	from := sm.current
	if from == to {
		return true
	}

	valid := false
	for _, state := range sm.transitions[from] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to
	if sm.onChange != nil {
		sm.onChange(from, to)
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}

// OnChange registers a callback run after every accepted state change.
func (sm *StateMachine) OnChange(fn func(from, to StateType)) {
	sm.onChange = fn
}
