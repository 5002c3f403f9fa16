package main

import (
	"math"
	"testing"
)

// moneyTolerance is one cent
const moneyTolerance = 0.01

func assertMoneyEquals(t *testing.T, expected, actual float64, description string) {
	t.Helper()
	if math.Abs(expected-actual) > moneyTolerance {
		t.Errorf("%s: expected $%.2f, got $%.2f (diff: $%.2f)",
			description, expected, actual, actual-expected)
	}
}

// createTestConfig returns a small family office that runs quickly:
// two assets, one foundation, one family member
func createTestConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Years: 10,
			Runs:  50,
		},
		Economics: EconomicsConfig{
			InflationRate:           0.02,
			FamilyGrowthRate:        0.01,
			ImpactPremium:           -0.01,
			PhilanthropicAllocation: 0.3,
			FamilyAllocation:        0.7,
		},
		Assets: []Asset{
			{ID: "global-equity", Class: Equity, CurrentValue: 10_000_000, ExpectedReturn: 0.07, Volatility: 0.15, CorrelationGroup: 1},
			{ID: "treasuries", Class: FixedIncome, CurrentValue: 5_000_000, ExpectedReturn: 0.03, Volatility: 0.05, CorrelationGroup: 2},
		},
		Vehicles: []CharitableVehicle{
			{
				ID:                      "family-foundation",
				Type:                    PrivateFoundation,
				CurrentValue:            2_000_000,
				AnnualContribution:      100_000,
				AdminCostRate:           0.01,
				DistributionRequirement: 0.05,
				Strategy:                StrategyBalanced,
				CauseAreas:              []string{"Education"},
				FamilyInvolvement:       100,
			},
		},
		Family: []FamilyMember{
			{
				ID:                    "founder",
				Age:                   60,
				LifeExpectancy:        90,
				AnnualIncome:          500_000,
				AnnualExpenses:        200_000,
				PhilanthropicInterest: 0.8,
				CauseAreas:            []string{"Education"},
				TimeCommitment:        100,
				Successor:             true,
			},
		},
		LegacyPlan: LegacyPlan{
			MinimumFamilyInvolvement: 100,
			PrimaryEntity:            PrivateFoundation,
			PhilanthropicPercentage:  0.3,
		},
		Strategies:        DefaultInvestmentStrategies(),
		CorrelationMatrix: [][]float64{{1, 0.2}, {0.2, 1}},
		Withdrawal: WithdrawalConfig{
			SearchRuns: 20,
		},
		Tax: TaxConfig{
			Years: 5,
			Runs:  10,
			Assets: []TaxAsset{
				{
					Asset:         Asset{ID: "brokerage", Class: Equity, CurrentValue: 1_000_000, ExpectedReturn: 0.06, Volatility: 0.15},
					CostBasis:     600_000,
					Jurisdiction:  US,
					EntityType:    Individual,
					IncomeYield:   0.02,
					HoldingPeriod: 400,
				},
			},
			AnnualWithdrawal: 20_000,
			ValuationDate:    "2025-01-01",
		},
		Sensitivity: SensitivityConfig{
			Runs: 10,
		},
	}
}

// deterministicConfig has every volatility at zero, so paths are exact
func deterministicConfig() *Config {
	cfg := createTestConfig()
	for i := range cfg.Assets {
		cfg.Assets[i].Volatility = 0
	}
	cfg.Strategies = map[string]InvestmentStrategy{
		"flat": {
			Returns:    map[AssetClass]float64{FixedIncome: 0.02},
			Volatility: map[AssetClass]float64{FixedIncome: 0},
			Allocation: map[AssetClass]float64{FixedIncome: 1},
		},
	}
	cfg.Vehicles[0].Strategy = "flat"
	return cfg
}

func mustResolve(t *testing.T, cfg *Config) *plan {
	t.Helper()
	p, err := resolveConfig(cfg, nil)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	return p
}
