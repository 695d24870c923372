package simulator

import (
	"testing"

	"ResourceCycle/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_RunDispatchesOnMode(t *testing.T) {
	tests := []struct {
		name  string
		sc    Scenario
		steps int
		stop  model.State
	}{
		{
			name:  "depletion",
			sc:    Scenario{Name: "tank", Mode: model.ModeDepletion, CapacityMax: 100, Available: 100, WithdrawalPerStep: 15},
			steps: 7,
			stop:  model.StateExhausted,
		},
		{
			name:  "depletion with floor",
			sc:    Scenario{Name: "tank", Mode: model.ModeDepletion, Available: 100, WithdrawalPerStep: 15, MinimumThreshold: 10},
			steps: 6,
			stop:  model.StateThresholdReached,
		},
		{
			name:  "target",
			sc:    Scenario{Name: "troops", Mode: model.ModeTarget, Available: 200, WithdrawalPerStep: 20, Target: 75},
			steps: 4,
			stop:  model.StateTargetMet,
		},
		{
			name: "replenishment hits safety limit",
			sc: Scenario{
				Name: "rain", Mode: model.ModeReplenishment, Available: 100, WithdrawalPerStep: 10,
				Replenish:        ReplenishPolicy{Probability: 100, Min: 10, Max: 10, LowWaterMark: 1000},
				SafetyLimitSteps: 5,
			},
			steps: 5,
			stop:  model.StateSafetyLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.sc.Run(nil)
			require.NoError(t, err)
			assert.Equal(t, tt.steps, res.Summary.Steps)
			assert.Equal(t, tt.stop, res.Summary.StopReason)
			assert.Equal(t, tt.sc.Mode, res.Summary.Mode)
		})
	}
}

func TestScenario_ReplaysFromSeed(t *testing.T) {
	sc := Scenario{
		Name: "tank", Mode: model.ModeReplenishment, CapacityMax: 200, Available: 150, WithdrawalPerStep: 20,
		Replenish:        ReplenishPolicy{Probability: 35, Min: 10, Max: 50, LowWaterMark: 50},
		SafetyLimitSteps: 20,
		Seed:             42,
	}
	a, err := sc.Run(nil)
	require.NoError(t, err)
	b, err := sc.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, a.Records, b.Records)
}

func TestScenario_Validate(t *testing.T) {
	tests := []struct {
		name string
		sc   Scenario
	}{
		{"missing name", Scenario{Mode: model.ModeDepletion, WithdrawalPerStep: 1}},
		{"unknown mode", Scenario{Name: "x", Mode: "drain", WithdrawalPerStep: 1}},
		{"zero withdrawal", Scenario{Name: "x", Mode: model.ModeDepletion}},
		{"negative available", Scenario{Name: "x", Mode: model.ModeDepletion, Available: -1, WithdrawalPerStep: 1}},
		{"target without target", Scenario{Name: "x", Mode: model.ModeTarget, WithdrawalPerStep: 1}},
		{"replenishment without limit", Scenario{Name: "x", Mode: model.ModeReplenishment, WithdrawalPerStep: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sc.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			_, err = tt.sc.Run(nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
