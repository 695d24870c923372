package scheduler

import (
	"fmt"
	"math/rand"
	"sync"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/recorder"
	"ResourceCycle/internal/simulator"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs configured scenarios on their cron expressions.
type Scheduler struct {
	Cron     *cron.Cron
	Recorder recorder.Recorder
	Log      *zap.Logger

	// OnRun, when set, receives every completed run.
	OnRun func(name string, res *model.RunResult)

	scenarios map[string]simulator.Scenario

	// seeds hands each run its own seed; cron jobs run on separate goroutines.
	seedMu sync.Mutex
	seeds  *rand.Rand
}

// NewScheduler creates a Scheduler. seed makes the sequence of per-run seeds reproducible.
func NewScheduler(rec recorder.Recorder, logger *zap.Logger, seed int64) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Recorder:  rec,
		Log:       logger,
		scenarios: make(map[string]simulator.Scenario),
		seeds:     simulator.NewSource(seed),
	}
}

// RegisterAll registers every scenario that carries a cron expression and
// returns how many were scheduled. All scenarios become available to RunNow.
func (s *Scheduler) RegisterAll(scenarios []simulator.Scenario) (int, error) {
	scheduled := 0
	for _, sc := range scenarios {
		s.scenarios[sc.Name] = sc
		if sc.Cron == "" {
			continue
		}
		name := sc.Name
		if _, err := s.Cron.AddFunc(sc.Cron, func() {
			if _, err := s.RunNow(name); err != nil {
				s.Log.Error("scheduled run failed", zap.String("scenario", name), zap.Error(err))
			}
		}); err != nil {
			return scheduled, fmt.Errorf("register scenario %q: %w", name, err)
		}
		scheduled++
		s.Log.Info("scenario scheduled", zap.String("scenario", name), zap.String("cron", sc.Cron))
	}
	return scheduled, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

func (s *Scheduler) nextSeed() int64 {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	return s.seeds.Int63()
}

// RunNow executes a registered scenario immediately and records it.
// Recording failures are logged, not returned.
func (s *Scheduler) RunNow(name string) (*model.RunResult, error) {
	sc, ok := s.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}

	seed := sc.Seed
	if sc.Mode == model.ModeReplenishment {
		seed = s.nextSeed()
	}
	res, err := sc.Run(simulator.NewSource(seed))
	if err != nil {
		return nil, err
	}

	sum := res.Summary
	s.Log.Info("scenario run",
		zap.String("scenario", name),
		zap.Int64("seed", seed),
		zap.String("stop_reason", string(sum.StopReason)),
		zap.Int("steps", sum.Steps),
		zap.Int64("consumed", sum.ConsumedTotal),
		zap.Int64("final_available", sum.FinalAvailable))

	if err := s.Recorder.RecordRun(recorder.NewRunEvent(name, seed, res)); err != nil {
		s.Log.Error("record run", zap.String("scenario", name), zap.Error(err))
	}
	if s.OnRun != nil {
		s.OnRun(name, res)
	}
	return res, nil
}
