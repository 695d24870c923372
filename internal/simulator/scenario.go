package simulator

import (
	"fmt"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/pool"
)

// Scenario is a named, fully parameterized run. Each call to Run starts from
// a fresh pool so a scenario can be replayed any number of times.
type Scenario struct {
	Name              string          `yaml:"name"`
	Mode              model.Mode      `yaml:"mode"`
	CapacityMax       int64           `yaml:"capacity_max"`
	Available         int64           `yaml:"available"`
	WithdrawalPerStep int64           `yaml:"withdrawal_per_step"`
	MinimumThreshold  int64           `yaml:"minimum_threshold"`
	Target            int64           `yaml:"target"`
	Replenish         ReplenishPolicy `yaml:"replenish"`
	SafetyLimitSteps  int             `yaml:"safety_limit_steps"`
	Seed              int64           `yaml:"seed"`
	Cron              string          `yaml:"cron"`
}

// Validate checks the parameters the scenario's mode needs.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: scenario name is required", ErrInvalidConfig)
	}
	if s.Available < 0 || s.CapacityMax < 0 {
		return fmt.Errorf("%w: scenario %q: available and capacity_max must be non-negative", ErrInvalidConfig, s.Name)
	}
	if s.WithdrawalPerStep <= 0 {
		return fmt.Errorf("%w: scenario %q: withdrawal_per_step must be positive", ErrInvalidConfig, s.Name)
	}
	switch s.Mode {
	case model.ModeDepletion:
		if s.MinimumThreshold < 0 {
			return fmt.Errorf("%w: scenario %q: minimum_threshold must be non-negative", ErrInvalidConfig, s.Name)
		}
	case model.ModeReplenishment:
		if s.SafetyLimitSteps < 1 {
			return fmt.Errorf("%w: scenario %q: safety_limit_steps must be at least 1", ErrInvalidConfig, s.Name)
		}
		if err := s.Replenish.Validate(); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	case model.ModeTarget:
		if s.Target <= 0 {
			return fmt.Errorf("%w: scenario %q: target must be positive", ErrInvalidConfig, s.Name)
		}
	default:
		return fmt.Errorf("%w: scenario %q: unknown mode %q", ErrInvalidConfig, s.Name, s.Mode)
	}
	return nil
}

// Run executes the scenario against a new pool. A nil rng falls back to a
// source seeded with s.Seed.
func (s Scenario) Run(rng Source) (*model.RunResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	p, err := pool.New(s.CapacityMax, s.Available)
	if err != nil {
		return nil, fmt.Errorf("%w: scenario %q: %v", ErrInvalidConfig, s.Name, err)
	}

	switch s.Mode {
	case model.ModeReplenishment:
		if rng == nil {
			rng = NewSource(s.Seed)
		}
		return RunWithReplenishment(p, s.WithdrawalPerStep, s.Replenish, s.SafetyLimitSteps, rng)
	case model.ModeTarget:
		return RunToTarget(p, s.WithdrawalPerStep, s.Target)
	default:
		return RunDepletion(p, s.WithdrawalPerStep, s.MinimumThreshold)
	}
}
