// Package stats summarizes many seeded runs of one scenario.
package stats

import (
	"errors"
	"fmt"
	"sort"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/simulator"

	"gonum.org/v1/gonum/stat"
)

// BatchStats describes the distribution of outcomes over a batch of runs.
type BatchStats struct {
	Scenario string
	Runs     int
	BaseSeed int64

	StepsMean   float64
	StepsStdDev float64
	StepsP50    float64
	StepsP90    float64
	StepsMax    int

	ReplenishedMean    float64
	FinalAvailableMean float64
	TargetMetRate      float64 // fraction of runs, 0..1

	StopReasons map[model.State]int
}

// Batch runs sc once per seed in [baseSeed, baseSeed+runs).
func Batch(sc simulator.Scenario, runs int, baseSeed int64) (*BatchStats, error) {
	if runs <= 0 {
		return nil, errors.New("runs must be positive")
	}

	steps := make([]float64, 0, runs)
	replenished := make([]float64, 0, runs)
	final := make([]float64, 0, runs)
	bs := &BatchStats{
		Scenario:    sc.Name,
		Runs:        runs,
		BaseSeed:    baseSeed,
		StopReasons: make(map[model.State]int),
	}

	var met int
	for i := 0; i < runs; i++ {
		res, err := sc.Run(simulator.NewSource(baseSeed + int64(i)))
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		s := res.Summary
		steps = append(steps, float64(s.Steps))
		replenished = append(replenished, float64(s.ReplenishedTotal))
		final = append(final, float64(s.FinalAvailable))
		bs.StopReasons[s.StopReason]++
		if s.TargetMet {
			met++
		}
		if s.Steps > bs.StepsMax {
			bs.StepsMax = s.Steps
		}
	}

	bs.StepsMean, bs.StepsStdDev = stat.MeanStdDev(steps, nil)
	if runs == 1 {
		bs.StepsStdDev = 0
	}
	sort.Float64s(steps)
	bs.StepsP50 = stat.Quantile(0.5, stat.Empirical, steps, nil)
	bs.StepsP90 = stat.Quantile(0.9, stat.Empirical, steps, nil)
	bs.ReplenishedMean = stat.Mean(replenished, nil)
	bs.FinalAvailableMean = stat.Mean(final, nil)
	bs.TargetMetRate = float64(met) / float64(runs)

	return bs, nil
}
