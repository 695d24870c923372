package model

import "testing"

func TestState_Terminal(t *testing.T) {
	tests := []struct {
		state    State
		terminal bool
	}{
		{StateRunning, false},
		{StateExhausted, true},
		{StateThresholdReached, true},
		{StateTargetMet, true},
		{StateSafetyLimit, true},
		{State("PAUSED"), false},
	}
	for _, tt := range tests {
		if got := tt.state.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestRunResult_WithdrawnSum(t *testing.T) {
	r := &RunResult{Records: []CycleRecord{{AmountWithdrawn: 15}, {AmountWithdrawn: 10}}}
	if got := r.WithdrawnSum(); got != 25 {
		t.Errorf("WithdrawnSum() = %d, want 25", got)
	}
}
