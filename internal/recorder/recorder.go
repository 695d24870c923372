package recorder

import (
	"time"

	"ResourceCycle/internal/model"

	"github.com/google/uuid"
)

// RunEvent holds everything recorded for one completed run.
type RunEvent struct {
	RunID     string
	Scenario  string
	Seed      int64
	StartedAt time.Time
	Result    *model.RunResult
}

// NewRunEvent stamps a run result with a fresh ID and the current time.
func NewRunEvent(scenario string, seed int64, res *model.RunResult) *RunEvent {
	return &RunEvent{
		RunID:     uuid.NewString(),
		Scenario:  scenario,
		Seed:      seed,
		StartedAt: time.Now(),
		Result:    res,
	}
}

// Recorder keeps a history of simulation runs for later analysis.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	Close() error
}

// Multi fans every call out to all recorders. The first error wins but every
// recorder is still called.
type Multi []Recorder

func (m Multi) RecordRun(evt *RunEvent) error {
	var firstErr error
	for _, r := range m {
		if err := r.RecordRun(evt); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) Close() error {
	var firstErr error
	for _, r := range m {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
