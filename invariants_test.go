package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant tests check properties that must hold for every trial, whatever
// the seed.

var invariantSeeds = []uint64{1, 17, 2024, 987654321}

func collectOutcomes(t *testing.T, cfg *Config, seed uint64) (*plan, []trialOutcome) {
	t.Helper()
	p, outcomes, err := simulateLegacyOutcomes(context.Background(), cfg, RunOptions{Seed: seed, SkipSearch: true})
	require.NoError(t, err)
	return p, outcomes
}

func TestInvariant_PathStartsAtInitialValues(t *testing.T) {
	cfg := createTestConfig()
	for _, seed := range invariantSeeds {
		_, outcomes := collectOutcomes(t, cfg, seed)
		for i, o := range outcomes {
			assertMoneyEquals(t, 15_000_000, o.path.Portfolio[0], "portfolio[0]")
			assertMoneyEquals(t, 2_000_000, o.path.Charitable[0], "charitable[0]")
			if o.path.Distributions[0] != 0 {
				t.Errorf("seed %d trial %d: distributions[0] = %v", seed, i, o.path.Distributions[0])
			}
		}
	}
}

func TestInvariant_DistributionsNeverNegative(t *testing.T) {
	cfg := createTestConfig()
	for _, seed := range invariantSeeds {
		_, outcomes := collectOutcomes(t, cfg, seed)
		for i, o := range outcomes {
			for y, d := range o.path.Distributions {
				if d < 0 {
					t.Errorf("seed %d trial %d year %d: distribution %v", seed, i, y, d)
				}
			}
		}
	}
}

func TestInvariant_FamilyIsPortfolioNetOfVehicles(t *testing.T) {
	cfg := createTestConfig()
	for _, seed := range invariantSeeds {
		_, outcomes := collectOutcomes(t, cfg, seed)
		for _, o := range outcomes {
			for y := range o.path.Family {
				assert.InDelta(t, o.path.Portfolio[y]-o.path.Charitable[y], o.path.Family[y], 1e-6)
			}
		}
	}
}

func TestInvariant_TrialDependsOnlyOnItsIndex(t *testing.T) {
	small := createTestConfig()
	small.Simulation.Runs = 10
	large := createTestConfig()
	large.Simulation.Runs = 30

	_, a := collectOutcomes(t, small, 77)
	_, b := collectOutcomes(t, large, 77)
	for i := range a {
		assert.Equal(t, a[i].path, b[i].path, "trial %d", i)
	}
}

func TestInvariant_SuccessionRosterOnlyShrinks(t *testing.T) {
	cfg, err := LoadDefaultConfig()
	require.NoError(t, err)

	path := NewSuccessionModel(cfg.Family).Run(60)
	for y := 1; y < len(path.Alive); y++ {
		assert.LessOrEqual(t, path.AliveCount(y), path.AliveCount(y-1), "year %d", y)
		assert.LessOrEqual(t, path.Involvement[y], path.Involvement[y-1], "year %d", y)
	}
}

func TestInvariant_OutcomeScoresInRange(t *testing.T) {
	cfg := createTestConfig()
	for _, seed := range invariantSeeds {
		_, outcomes := collectOutcomes(t, cfg, seed)
		for _, o := range outcomes {
			assert.GreaterOrEqual(t, o.impact, 0.0)
			for _, v := range []float64{o.successorReadiness, o.engagement, o.balance} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}
