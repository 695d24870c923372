package scheduler

import (
	"sync"
	"testing"
	"time"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/recorder"
	"ResourceCycle/internal/simulator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

type memRecorder struct {
	mu     sync.Mutex
	events []*recorder.RunEvent
}

func (m *memRecorder) RecordRun(evt *recorder.RunEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *memRecorder) Close() error { return nil }

func (m *memRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func scenarios() []simulator.Scenario {
	return []simulator.Scenario{
		{Name: "tank", Mode: model.ModeDepletion, Available: 100, WithdrawalPerStep: 15},
		{
			Name: "rain", Mode: model.ModeReplenishment, CapacityMax: 200, Available: 100, WithdrawalPerStep: 20,
			Replenish:        simulator.ReplenishPolicy{Probability: 50, Min: 10, Max: 40, LowWaterMark: 50},
			SafetyLimitSteps: 20,
		},
	}
}

func TestRunNow_RecordsRun(t *testing.T) {
	rec := &memRecorder{}
	s := NewScheduler(rec, zaptest.NewLogger(t), 1)
	n, err := s.RegisterAll(scenarios())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var seen []string
	s.OnRun = func(name string, _ *model.RunResult) { seen = append(seen, name) }

	res, err := s.RunNow("tank")
	require.NoError(t, err)
	assert.Equal(t, model.StateExhausted, res.Summary.StopReason)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, "tank", rec.events[0].Scenario)
	assert.Equal(t, []string{"tank"}, seen)

	_, err = s.RunNow("missing")
	assert.Error(t, err)
}

func TestRunNow_SeedSequenceIsReproducible(t *testing.T) {
	run := func() []int64 {
		rec := &memRecorder{}
		s := NewScheduler(rec, zaptest.NewLogger(t), 99)
		_, err := s.RegisterAll(scenarios())
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			_, err := s.RunNow("rain")
			require.NoError(t, err)
		}
		seeds := make([]int64, 0, len(rec.events))
		for _, e := range rec.events {
			seeds = append(seeds, e.Seed)
		}
		return seeds
	}
	a, b := run(), run()
	assert.Equal(t, a, b)
	assert.NotEqual(t, a[0], a[1])
}

func TestRegisterAll_RejectsBadCron(t *testing.T) {
	s := NewScheduler(recorder.NewNoopRecorder(), zaptest.NewLogger(t), 1)
	sc := scenarios()
	sc[0].Cron = "not a cron"
	_, err := s.RegisterAll(sc)
	assert.Error(t, err)
}

func TestScheduler_FiresCronJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &memRecorder{}
	s := NewScheduler(rec, zaptest.NewLogger(t), 1)
	sc := scenarios()
	sc[0].Cron = "* * * * * *"

	fired := make(chan string, 8)
	s.OnRun = func(name string, _ *model.RunResult) {
		select {
		case fired <- name:
		default:
		}
	}

	n, err := s.RegisterAll(sc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s.Start()
	select {
	case name := <-fired:
		assert.Equal(t, "tank", name)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled scenario did not run")
	}
	s.Stop()

	assert.GreaterOrEqual(t, rec.count(), 1)
}
