package pool

import (
	"fmt"
	"math"
)

// ResourcePool is a scalar quantity drawn down by a simulation run.
// A pool belongs to exactly one run and is discarded afterwards.
type ResourcePool struct {
	CapacityMax      int64 // display bound, enforced only by capped replenishment
	Available        int64
	ConsumedTotal    int64
	ReplenishedTotal int64
	MinimumThreshold int64 // 0 means run until empty
}

// New creates a pool holding available units.
func New(capacityMax, available int64) (*ResourcePool, error) {
	if capacityMax < 0 {
		return nil, fmt.Errorf("capacity_max must be non-negative, got %d", capacityMax)
	}
	if available < 0 {
		return nil, fmt.Errorf("available must be non-negative, got %d", available)
	}
	return &ResourcePool{CapacityMax: capacityMax, Available: available}, nil
}

// Withdraw takes up to requested units and returns the amount actually taken.
func (p *ResourcePool) Withdraw(requested int64) int64 {
	if requested <= 0 {
		return 0
	}
	amount := requested
	// Cap to available balance
	if amount > p.Available {
		amount = p.Available
	}
	p.Available -= amount
	p.ConsumedTotal = addSaturating(p.ConsumedTotal, amount)
	return amount
}

// Replenish adds amount to the pool. With capAtCapacity set and a non-zero
// CapacityMax, the pool never grows past CapacityMax. Available saturates at
// math.MaxInt64. Returns the amount applied.
func (p *ResourcePool) Replenish(amount int64, capAtCapacity bool) int64 {
	if amount <= 0 {
		return 0
	}
	if capAtCapacity && p.CapacityMax > 0 {
		room := p.CapacityMax - p.Available
		if room <= 0 {
			return 0
		}
		if amount > room {
			amount = room
		}
	}
	if room := math.MaxInt64 - p.Available; amount > room {
		amount = room
	}
	p.Available += amount
	p.ReplenishedTotal = addSaturating(p.ReplenishedTotal, amount)
	return amount
}

// addSaturating adds two non-negative values, clamping at math.MaxInt64.
func addSaturating(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// Empty reports whether nothing is left to withdraw.
func (p *ResourcePool) Empty() bool { return p.Available == 0 }

// PercentOfCapacity returns Available as a percentage of CapacityMax,
// or 0 when no capacity is set.
func (p *ResourcePool) PercentOfCapacity() float64 {
	if p.CapacityMax <= 0 {
		return 0
	}
	return float64(p.Available) / float64(p.CapacityMax) * 100
}
