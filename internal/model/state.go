package model

// State is the lifecycle state of a run. Running is the only non-terminal state.
type State string

const (
	StateRunning          State = "RUNNING"
	StateExhausted        State = "EXHAUSTED"
	StateThresholdReached State = "THRESHOLD_REACHED"
	StateTargetMet        State = "TARGET_MET"
	StateSafetyLimit      State = "SAFETY_LIMIT"
)

// Terminal reports whether no further steps may run from s.
func (s State) Terminal() bool {
	switch s {
	case StateExhausted, StateThresholdReached, StateTargetMet, StateSafetyLimit:
		return true
	default:
		return false
	}
}
