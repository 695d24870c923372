package stats

import (
	"testing"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/simulator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_DeterministicScenario(t *testing.T) {
	sc := simulator.Scenario{Name: "tank", Mode: model.ModeDepletion, Available: 100, WithdrawalPerStep: 15}
	bs, err := Batch(sc, 10, 1)
	require.NoError(t, err)

	assert.Equal(t, 10, bs.Runs)
	assert.InDelta(t, 7.0, bs.StepsMean, 1e-9)
	assert.InDelta(t, 0.0, bs.StepsStdDev, 1e-9)
	assert.InDelta(t, 7.0, bs.StepsP50, 1e-9)
	assert.InDelta(t, 7.0, bs.StepsP90, 1e-9)
	assert.Equal(t, 7, bs.StepsMax)
	assert.Equal(t, 10, bs.StopReasons[model.StateExhausted])
	assert.Equal(t, 0.0, bs.ReplenishedMean)
}

func TestBatch_ReplenishmentRespectsSafetyLimit(t *testing.T) {
	sc := simulator.Scenario{
		Name: "tank", Mode: model.ModeReplenishment, CapacityMax: 200, Available: 120, WithdrawalPerStep: 25,
		Replenish:        simulator.ReplenishPolicy{Probability: 60, Min: 20, Max: 60, LowWaterMark: 50},
		SafetyLimitSteps: 15,
	}
	bs, err := Batch(sc, 100, 1000)
	require.NoError(t, err)

	assert.LessOrEqual(t, bs.StepsMax, 15)
	assert.LessOrEqual(t, bs.StepsP90, 15.0)
	assert.LessOrEqual(t, bs.StepsP50, bs.StepsP90)
	assert.Equal(t, 100, bs.StopReasons[model.StateExhausted]+bs.StopReasons[model.StateSafetyLimit])
	assert.Greater(t, bs.ReplenishedMean, 0.0)

	again, err := Batch(sc, 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, bs, again)
}

func TestBatch_TargetMetRate(t *testing.T) {
	sc := simulator.Scenario{Name: "troops", Mode: model.ModeTarget, Available: 50, WithdrawalPerStep: 20, Target: 75}
	bs, err := Batch(sc, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, bs.TargetMetRate)
	assert.Equal(t, 3, bs.StopReasons[model.StateExhausted])
}

func TestBatch_Rejects(t *testing.T) {
	sc := simulator.Scenario{Name: "tank", Mode: model.ModeDepletion, Available: 100, WithdrawalPerStep: 15}
	_, err := Batch(sc, 0, 1)
	assert.Error(t, err)

	sc.WithdrawalPerStep = 0
	_, err = Batch(sc, 5, 1)
	assert.ErrorIs(t, err, simulator.ErrInvalidConfig)
}
