package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectVehicleDistributions(t *testing.T) {
	t.Run("inflated starting distribution", func(t *testing.T) {
		v := CharitableVehicle{CurrentValue: 1_000_000}
		// 40,000 × (1.02 + 1.0404)
		got := projectVehicleDistributions(v, 0.04, 0, 0.02, 2)
		assertMoneyEquals(t, 40_800+41_616, got, "two years")
	})

	t.Run("legal minimum dominates", func(t *testing.T) {
		v := CharitableVehicle{CurrentValue: 1_000_000, DistributionRequirement: 0.05}
		// 1,000,000 × 1.10 = 1,100,000; 5% is 55,000 > 40,000
		got := projectVehicleDistributions(v, 0.04, 0.10, 0, 1)
		assertMoneyEquals(t, 55_000, got, "required distribution")
	})

	t.Run("zero years", func(t *testing.T) {
		v := CharitableVehicle{CurrentValue: 1_000_000}
		assert.Equal(t, 0.0, projectVehicleDistributions(v, 0.04, 0.05, 0.02, 0))
	})
}

func TestEvaluateVehicleMix(t *testing.T) {
	p := mustResolve(t, createTestConfig())
	in := p.vehicleMixInputs()

	assertMoneyEquals(t, 4_500_000, in.Capital, "30% of assets")
	assertMoneyEquals(t, 50_000, in.Contribution, "10% of income")

	mix := EvaluateVehicleMix(in, NewNormalSampler(NewSeededRNG(1, vehicleMixStream)))
	require.Len(t, mix, len(VehicleTypes))

	total := 0.0
	for _, vt := range VehicleTypes {
		share, ok := mix[vt]
		require.True(t, ok, "missing %s", vt)
		assert.Greater(t, share, 0.0)
		total += share
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	again := EvaluateVehicleMix(in, NewNormalSampler(NewSeededRNG(1, vehicleMixStream)))
	assert.Equal(t, mix, again, "same stream, same mix")
}

func TestDefaultVehicleCharacteristics_CoverEveryType(t *testing.T) {
	for _, vt := range VehicleTypes {
		ch, ok := DefaultVehicleCharacteristics[vt]
		require.True(t, ok, "missing %s", vt)
		assert.True(t, inUnitRange(ch.DistributionRequirement))
		assert.True(t, inUnitRange(ch.AdminCostRate))
	}
	assert.InDelta(t, 1.0, mixDistributionWeight+mixTaxWeight+mixControlWeight+mixFlexibilityWeight, 1e-12)
}
