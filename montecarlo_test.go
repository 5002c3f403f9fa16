package main

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLegacy(t *testing.T, cfg *Config, opts RunOptions) *SimulationResult {
	t.Helper()
	result, err := RunLegacySimulation(context.Background(), cfg, opts)
	require.NoError(t, err)
	return result
}

// =============================================================================
// Reproducibility
// =============================================================================

func TestRunLegacySimulation_SameSeedSameResult(t *testing.T) {
	cfg := createTestConfig()
	first := runLegacy(t, cfg, RunOptions{Seed: 42})
	second := runLegacy(t, cfg, RunOptions{Seed: 42})
	assert.Equal(t, first, second)
}

func TestRunLegacySimulation_WorkerCountDoesNotChangeResult(t *testing.T) {
	cfg := createTestConfig()
	serial := runLegacy(t, cfg, RunOptions{Seed: 7, Workers: 1})
	parallel := runLegacy(t, cfg, RunOptions{Seed: 7, Workers: 8})
	assert.Equal(t, serial, parallel)
}

func TestRunLegacySimulation_DifferentSeedsDiffer(t *testing.T) {
	cfg := createTestConfig()
	a := runLegacy(t, cfg, RunOptions{Seed: 1, SkipSearch: true})
	b := runLegacy(t, cfg, RunOptions{Seed: 2, SkipSearch: true})
	assert.NotEqual(t, a.FamilyWealth, b.FamilyWealth)
}

func TestRunLegacySimulation_DoesNotMutateConfig(t *testing.T) {
	cfg := createTestConfig()
	snapshot := cfg.Clone()
	runLegacy(t, cfg, RunOptions{Seed: 3})
	assert.Equal(t, snapshot, cfg)
}

func TestRunLegacySimulation_EchoesRunMetadata(t *testing.T) {
	result := runLegacy(t, createTestConfig(), RunOptions{Seed: 5, RunID: "run-1", SkipSearch: true})
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, uint64(5), result.Seed)
	assert.Equal(t, 50, result.Runs)
	assert.Equal(t, 10, result.Years)
	assert.Nil(t, result.OptimalVehicleMix, "the mix is skipped with the search")
}

// =============================================================================
// Validation and cancellation
// =============================================================================

func TestRunLegacySimulation_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no assets", func(c *Config) { c.Assets = nil }, ErrNoAssets},
		{"no vehicles", func(c *Config) { c.Vehicles = nil }, ErrNoVehicles},
		{"no family", func(c *Config) { c.Family = nil }, ErrNoFamily},
		{"negative years", func(c *Config) { c.Simulation.Years = -1 }, ErrInvalidHorizon},
		{"negative runs", func(c *Config) { c.Simulation.Runs = -5 }, ErrInvalidHorizon},
		{"negative asset value", func(c *Config) { c.Assets[0].CurrentValue = -1 }, ErrNegativeValue},
		{"unknown asset class", func(c *Config) { c.Assets[0].Class = "crypto" }, ErrUnknownAssetClass},
		{"admin cost above one", func(c *Config) { c.Vehicles[0].AdminCostRate = 1.5 }, ErrRateRange},
		{"unknown vehicle type", func(c *Config) { c.Vehicles[0].Type = "pooled_income_fund" }, ErrUnknownOption},
		{"interest above one", func(c *Config) { c.Family[0].PhilanthropicInterest = 2 }, ErrRateRange},
		{"asymmetric matrix", func(c *Config) { c.CorrelationMatrix[0][1] = 0.5 }, ErrCorrelationAsymmetric},
		{"group out of range", func(c *Config) { c.Assets[1].CorrelationGroup = 3 }, ErrCorrelationGroup},
		{"unknown convention", func(c *Config) { c.Simulation.FamilyValueConvention = "gross" }, ErrUnknownOption},
		{"unknown withdrawal strategy", func(c *Config) { c.Withdrawal.Strategy = "yolo" }, ErrUnknownOption},
		{"unknown correlation mode", func(c *Config) { c.Simulation.CorrelationMode = "copula" }, ErrUnknownOption},
		{"NaN asset value", func(c *Config) { c.Assets[0].CurrentValue = math.NaN() }, ErrNegativeValue},
		{"infinite asset value", func(c *Config) { c.Assets[0].CurrentValue = math.Inf(1) }, ErrNegativeValue},
		{"infinite expected return", func(c *Config) { c.Assets[0].ExpectedReturn = math.Inf(1) }, ErrRateRange},
		{"NaN expected return", func(c *Config) { c.Assets[1].ExpectedReturn = math.NaN() }, ErrRateRange},
		{"NaN volatility", func(c *Config) { c.Assets[0].Volatility = math.NaN() }, ErrNegativeValue},
		{"infinite vehicle contribution", func(c *Config) { c.Vehicles[0].AnnualContribution = math.Inf(1) }, ErrNegativeValue},
		{"NaN admin cost", func(c *Config) { c.Vehicles[0].AdminCostRate = math.NaN() }, ErrRateRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := createTestConfig()
			tc.mutate(cfg)

			result, err := RunLegacySimulation(context.Background(), cfg, RunOptions{Seed: 1})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.ErrorIs(t, ValidateConfig(cfg), tc.wantErr)
		})
	}
}

func TestRunLegacySimulation_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunLegacySimulation(ctx, createTestConfig(), RunOptions{Seed: 1})
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, context.Canceled))
}

// =============================================================================
// Edge cases
// =============================================================================

func TestRunLegacySimulation_ZeroYears(t *testing.T) {
	cfg := createTestConfig()
	cfg.Simulation.Years = 0

	result := runLegacy(t, cfg, RunOptions{Seed: 1, SkipSearch: true})
	require.Len(t, result.MeanPath, 1)
	assertMoneyEquals(t, 15_000_000, result.MeanPath[0].Portfolio, "initial portfolio")
	assertMoneyEquals(t, 13_000_000, result.FamilyWealth, "family wealth is the initial value")
	assert.Equal(t, 0.0, result.FailureRate)
	assert.Equal(t, 1.0, result.PerpetuityProbability)
}

func TestRunLegacySimulation_DefaultRuns(t *testing.T) {
	cfg := createTestConfig()
	cfg.Simulation.Runs = 0
	cfg.Simulation.Years = 1

	result := runLegacy(t, cfg, RunOptions{Seed: 1, SkipSearch: true})
	assert.Equal(t, 500, result.Runs)
}

func TestRunLegacySimulation_NonFiniteTrialsAreFailures(t *testing.T) {
	cfg := createTestConfig()
	// Finite inputs whose growth overflows within the first year
	cfg.Assets[0].ExpectedReturn = 1e308

	result := runLegacy(t, cfg, RunOptions{Seed: 1, SkipSearch: true})
	assert.Equal(t, 50, result.FaultedTrials)
	assert.Equal(t, 1.0, result.FailureRate)
	assert.Equal(t, 0.0, result.SustainabilityScore)
	assert.Nil(t, result.MeanPath)
	assert.Equal(t, Percentiles{}, result.FamilyWealthPercentiles)
}

func TestRunLegacySimulation_Sunsetting(t *testing.T) {
	cfg := createTestConfig()
	cfg.Vehicles[0].DistributionRequirement = 1.0
	cfg.Vehicles[0].AnnualContribution = 0
	cfg.LegacyPlan.Sunsetting = true
	cfg.LegacyPlan.SunsetYear = 5

	result := runLegacy(t, cfg, RunOptions{Seed: 1, SkipSearch: true})
	assert.Equal(t, 1.0, result.SunsetProbability)
	assert.Equal(t, 0.0, result.PerpetuityProbability)
}

func TestRunLegacySimulation_SunsetOnlyForSunsettingPlans(t *testing.T) {
	cfg := createTestConfig()
	cfg.Vehicles[0].DistributionRequirement = 1.0

	result := runLegacy(t, cfg, RunOptions{Seed: 1, SkipSearch: true})
	assert.Equal(t, 0.0, result.SunsetProbability)
}

func TestRunLegacySimulation_SkippedVehiclesReported(t *testing.T) {
	cfg := createTestConfig()
	cfg.Vehicles[0].Strategy = "missing"

	result := runLegacy(t, cfg, RunOptions{Seed: 1, SkipSearch: true})
	assert.Equal(t, []string{"family-foundation"}, result.SkippedVehicles)
	assert.Equal(t, 0.0, result.PhilanthropicCapitalDeployed)
	assert.Equal(t, 1.0, result.PerpetuityProbability, "a carried vehicle keeps its value")
}

func TestRunLegacySimulation_SkippedPrimaryVehicleHasNoWithdrawalRate(t *testing.T) {
	cfg := createTestConfig()
	cfg.Vehicles[0].Strategy = "missing"

	result := runLegacy(t, cfg, RunOptions{Seed: 1})
	assert.Equal(t, []string{"family-foundation"}, result.SkippedVehicles)
	assert.Equal(t, 0.0, result.OptimalWithdrawalRate)
}

// =============================================================================
// Result bounds
// =============================================================================

func TestRunLegacySimulation_ScoresBounded(t *testing.T) {
	result := runLegacy(t, createTestConfig(), RunOptions{Seed: 11})

	for name, v := range map[string]float64{
		"sustainability":      result.SustainabilityScore,
		"failure rate":        result.FailureRate,
		"successor readiness": result.SuccessorReadiness,
		"family engagement":   result.FamilyEngagementScore,
		"perpetuity":          result.PerpetuityProbability,
		"balance":             result.BalanceScore,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}
	assert.InDelta(t, 1.0, result.SustainabilityScore+result.FailureRate, 1e-12)
	assert.GreaterOrEqual(t, result.PhilanthropicImpact, 0.0)

	total := 0.0
	for _, share := range result.OptimalVehicleMix {
		total += share
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	p := result.FamilyWealthPercentiles
	assert.LessOrEqual(t, p.P10, p.P50)
	assert.LessOrEqual(t, p.P50, p.P90)

	require.Len(t, result.MeanPath, 11)
	for y, year := range result.MeanPath {
		assert.Equal(t, y, year.Year)
	}
	assert.GreaterOrEqual(t, result.OptimalWithdrawalRate, 0.0)
	assert.LessOrEqual(t, result.OptimalWithdrawalRate, 0.07)
}

func TestRunLegacySimulation_CholeskyMode(t *testing.T) {
	cfg := createTestConfig()
	cfg.Simulation.CorrelationMode = CholeskyCorrelation

	a := runLegacy(t, cfg, RunOptions{Seed: 4, SkipSearch: true})
	b := runLegacy(t, cfg, RunOptions{Seed: 4, SkipSearch: true})
	assert.Equal(t, a, b)
	assert.Greater(t, a.FamilyWealth, 0.0)
}

// =============================================================================
// Tax batch
// =============================================================================

func TestRunTaxSimulation(t *testing.T) {
	cfg := createTestConfig()
	result, err := RunTaxSimulation(context.Background(), cfg, RunOptions{Seed: 8, RunID: "tax-1"})
	require.NoError(t, err)

	assert.Equal(t, "tax-1", result.RunID)
	assert.Equal(t, 10, result.Runs)
	assert.Equal(t, 5, result.Years)
	assert.Equal(t, 10, result.CatalogSize)
	assert.Equal(t, 0, result.FaultedTrials)
	assert.Greater(t, result.TotalAfterTaxValue, 0.0)
	assert.GreaterOrEqual(t, result.TotalTaxesPaid, 0.0)
	assert.GreaterOrEqual(t, result.SuccessRate, 0.0)
	assert.LessOrEqual(t, result.SuccessRate, 1.0)

	entityTotal := 0.0
	for _, share := range result.OptimalEntityMix {
		entityTotal += share
	}
	assert.LessOrEqual(t, entityTotal, 1.0+1e-9)

	again, err := RunTaxSimulation(context.Background(), cfg, RunOptions{Seed: 8, RunID: "tax-1", Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestReduceTaxOutcomes_MedianIgnoresFaultedTrials(t *testing.T) {
	tp := &taxPlan{years: 1, initialValue: 100}
	outcomes := []taxTrialOutcome{
		{taxes: 10},
		{faulted: true},
		{taxes: 30},
		{faulted: true},
		{taxes: 20},
	}

	result := reduceTaxOutcomes(tp, outcomes)
	assert.Equal(t, 2, result.FaultedTrials)
	assert.InDelta(t, 0.20, result.MedianAnnualTaxRate, 1e-12)

	allFaulted := reduceTaxOutcomes(tp, []taxTrialOutcome{{faulted: true}, {faulted: true}})
	assert.Equal(t, 0.0, allFaulted.MedianAnnualTaxRate)
	assert.Equal(t, 2, allFaulted.FaultedTrials)
}

func TestRunTaxSimulation_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no tax assets", func(c *Config) { c.Tax.Assets = nil }, ErrNoTaxAssets},
		{"unknown jurisdiction", func(c *Config) { c.Tax.Assets[0].Jurisdiction = "Atlantis" }, ErrUnknownJurisdiction},
		{"unknown entity", func(c *Config) { c.Tax.Assets[0].EntityType = "dynasty" }, ErrUnknownEntity},
		{"negative basis", func(c *Config) { c.Tax.Assets[0].CostBasis = -1 }, ErrNegativeValue},
		{"negative tax years", func(c *Config) { c.Tax.Years = -1 }, ErrInvalidHorizon},
		{"unknown catalog", func(c *Config) { c.Tax.Catalog = "everything" }, ErrUnknownOption},
		{"bad harvest threshold", func(c *Config) {
			c.Tax.HarvestingStrategies = []HarvestingStrategy{{Threshold: 2}}
		}, ErrRateRange},
		{"bad valuation date", func(c *Config) { c.Tax.ValuationDate = "yesterday" }, ErrInvalidConfiguration},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := createTestConfig()
			tc.mutate(cfg)
			_, err := RunTaxSimulation(context.Background(), cfg, RunOptions{Seed: 1})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestRunTaxSimulation_ExhaustiveCatalog(t *testing.T) {
	cfg := createTestConfig()
	cfg.Tax.Catalog = CatalogExhaustive
	cfg.Tax.Runs = 2

	result, err := RunTaxSimulation(context.Background(), cfg, RunOptions{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 26, result.CatalogSize)
}
