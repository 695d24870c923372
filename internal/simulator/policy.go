package simulator

import (
	"fmt"
	"math"

	"ResourceCycle/internal/pool"
)

// ReplenishPolicy controls stochastic refills during RunWithReplenishment.
type ReplenishPolicy struct {
	Probability   int   `yaml:"probability"`    // percent chance per step, 0..100
	Min           int64 `yaml:"min"`            // inclusive
	Max           int64 `yaml:"max"`            // inclusive
	LowWaterMark  int64 `yaml:"low_water_mark"` // refills are rolled only while Available < LowWaterMark
	CapAtCapacity bool  `yaml:"cap_at_capacity"`
}

// Validate checks the policy bounds.
func (rp ReplenishPolicy) Validate() error {
	if rp.Probability < 0 || rp.Probability > 100 {
		return fmt.Errorf("%w: replenish probability must be within [0,100], got %d", ErrInvalidConfig, rp.Probability)
	}
	if rp.Min < 0 {
		return fmt.Errorf("%w: replenish min must be non-negative, got %d", ErrInvalidConfig, rp.Min)
	}
	if rp.Min > rp.Max {
		return fmt.Errorf("%w: replenish range min %d exceeds max %d", ErrInvalidConfig, rp.Min, rp.Max)
	}
	// The draw needs Max-Min+1 to fit in an int64.
	if rp.Max-rp.Min == math.MaxInt64 {
		return fmt.Errorf("%w: replenish range [%d,%d] is too wide", ErrInvalidConfig, rp.Min, rp.Max)
	}
	if rp.LowWaterMark < 0 {
		return fmt.Errorf("%w: low water mark must be non-negative, got %d", ErrInvalidConfig, rp.LowWaterMark)
	}
	return nil
}

// apply rolls for a refill and adds it to p. The source is only consulted
// while the pool sits below the low-water mark.
func (rp ReplenishPolicy) apply(p *pool.ResourcePool, rng Source) int64 {
	if rp.Probability == 0 || p.Available >= rp.LowWaterMark {
		return 0
	}
	if rng.Intn(100) >= rp.Probability {
		return 0
	}
	amount := rp.Min + rng.Int63n(rp.Max-rp.Min+1)
	return p.Replenish(amount, rp.CapAtCapacity)
}
