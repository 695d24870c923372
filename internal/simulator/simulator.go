// Package simulator runs bounded withdraw-then-check cycles against a
// resource pool. Every run is a plain function of its inputs: the pool is
// mutated in place and the per-step records are returned, nothing is printed.
package simulator

import (
	"fmt"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/pool"
)

// cycle tracks one run. The loop body always completes a step before the
// state may leave Running.
type cycle struct {
	pool    *pool.ResourcePool
	mode    model.Mode
	state   model.State
	initial int64
	records []model.CycleRecord
}

func newCycle(p *pool.ResourcePool, mode model.Mode) *cycle {
	return &cycle{
		pool:    p,
		mode:    mode,
		state:   model.StateRunning,
		initial: p.Available,
	}
}

// step runs one body of the loop: optional refill, then the capped withdrawal.
func (c *cycle) step(request int64, refill func() int64) model.CycleRecord {
	before := c.pool.Available
	var replenished int64
	if refill != nil {
		replenished = refill()
	}
	withdrawn := c.pool.Withdraw(request)
	rec := model.CycleRecord{
		Index:             len(c.records) + 1,
		AvailableBefore:   before,
		AmountReplenished: replenished,
		AmountWithdrawn:   withdrawn,
		AvailableAfter:    c.pool.Available,
	}
	c.records = append(c.records, rec)
	return rec
}

func (c *cycle) stop(s model.State) {
	if c.state.Terminal() {
		panic(fmt.Sprintf("simulator: stop(%s) after terminal state %s", s, c.state))
	}
	c.state = s
}

func (c *cycle) result() *model.RunResult {
	res := &model.RunResult{
		Records: c.records,
		Summary: model.Summary{
			Mode:             c.mode,
			StopReason:       c.state,
			Steps:            len(c.records),
			CapacityMax:      c.pool.CapacityMax,
			InitialAvailable: c.initial,
			FinalAvailable:   c.pool.Available,
			ConsumedTotal:    c.pool.ConsumedTotal,
			ReplenishedTotal: c.pool.ReplenishedTotal,
			PercentRemaining: c.pool.PercentOfCapacity(),
		},
	}
	res.Summary.TotalWithdrawn = res.WithdrawnSum()
	return res
}

func checkCommon(p *pool.ResourcePool, withdrawalPerStep int64) error {
	if p == nil {
		return fmt.Errorf("%w: pool is nil", ErrInvalidConfig)
	}
	if withdrawalPerStep <= 0 {
		return fmt.Errorf("%w: withdrawal per step must be positive, got %d", ErrInvalidConfig, withdrawalPerStep)
	}
	return nil
}

// RunDepletion withdraws min(withdrawalPerStep, available) per step and keeps
// going while the pool stays above minimumThreshold. A zero threshold drains
// the pool. An empty pool yields no records and stops as Exhausted.
func RunDepletion(p *pool.ResourcePool, withdrawalPerStep, minimumThreshold int64) (*model.RunResult, error) {
	if err := checkCommon(p, withdrawalPerStep); err != nil {
		return nil, err
	}
	if minimumThreshold < 0 {
		return nil, fmt.Errorf("%w: minimum threshold must be non-negative, got %d", ErrInvalidConfig, minimumThreshold)
	}
	p.MinimumThreshold = minimumThreshold

	c := newCycle(p, model.ModeDepletion)
	if p.Empty() {
		c.stop(model.StateExhausted)
		return c.result(), nil
	}

	for {
		c.step(withdrawalPerStep, nil)
		if p.Empty() {
			c.stop(model.StateExhausted)
			break
		}
		if p.Available <= minimumThreshold {
			c.stop(model.StateThresholdReached)
			break
		}
	}
	return c.result(), nil
}

// RunWithReplenishment drains the pool while policy may refill it. Each step
// first rolls for a refill, then withdraws. The run ends when the pool is
// empty or after safetyLimitSteps steps, whichever comes first; an empty pool
// takes precedence when both hold.
func RunWithReplenishment(p *pool.ResourcePool, withdrawalPerStep int64, policy ReplenishPolicy, safetyLimitSteps int, rng Source) (*model.RunResult, error) {
	if err := checkCommon(p, withdrawalPerStep); err != nil {
		return nil, err
	}
	if safetyLimitSteps < 1 {
		return nil, fmt.Errorf("%w: safety limit must be at least 1 step, got %d", ErrInvalidConfig, safetyLimitSteps)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is nil", ErrInvalidConfig)
	}

	c := newCycle(p, model.ModeReplenishment)
	if p.Empty() {
		c.stop(model.StateExhausted)
		return c.result(), nil
	}

	refill := func() int64 { return policy.apply(p, rng) }
	for {
		c.step(withdrawalPerStep, refill)
		if p.Empty() {
			c.stop(model.StateExhausted)
			break
		}
		if len(c.records) >= safetyLimitSteps {
			c.stop(model.StateSafetyLimit)
			break
		}
	}
	return c.result(), nil
}

// RunToTarget withdraws until target units have been taken in total or the
// pool runs dry. Falling short of target is reported through
// Summary.TargetMet, not as an error.
func RunToTarget(p *pool.ResourcePool, withdrawalPerStep, target int64) (*model.RunResult, error) {
	if err := checkCommon(p, withdrawalPerStep); err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target must be positive, got %d", ErrInvalidConfig, target)
	}

	c := newCycle(p, model.ModeTarget)
	var total int64
	if p.Empty() {
		c.stop(model.StateExhausted)
	} else {
		for {
			rec := c.step(min(withdrawalPerStep, target-total), nil)
			total += rec.AmountWithdrawn
			if total >= target {
				c.stop(model.StateTargetMet)
				break
			}
			if p.Empty() {
				c.stop(model.StateExhausted)
				break
			}
		}
	}

	res := c.result()
	res.Summary.Target = target
	res.Summary.TargetMet = c.state == model.StateTargetMet
	return res, nil
}
