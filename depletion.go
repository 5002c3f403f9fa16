package main

import (
	"context"
)

// SpendingCapacityResult is the largest family spending level the portfolio
// sustains at the target confidence
type SpendingCapacityResult struct {
	TargetConfidence       float64           `json:"target_confidence"`
	Multiplier             float64           `json:"multiplier"` // applied to every member's expenses
	BaselineExpenses       float64           `json:"baseline_expenses"`
	SustainableExpenses    float64           `json:"sustainable_expenses"`
	Sustainability         float64           `json:"sustainability"` // at the chosen multiplier
	BaselineSustainability float64           `json:"baseline_sustainability"`
	Iterations             int               `json:"iterations"`
	Result                 *SimulationResult `json:"result"` // full run at the chosen spending level
}

const (
	capacityMaxMultiplier = 1024.0
	capacityTolerance     = 0.0001
	capacityMaxIterations = 100
)

// CalculateSpendingCapacity binary-searches a multiplier on family expenses
// for the highest spending whose sustainability stays at or above the
// target confidence. Trials are simulated once: the portfolio paths do not
// depend on spending, only the failure floor does.
func CalculateSpendingCapacity(ctx context.Context, config *Config, opts RunOptions) (*SpendingCapacityResult, error) {
	searchOpts := opts
	searchOpts.SkipSearch = true

	p, outcomes, err := simulateLegacyOutcomes(ctx, config, searchOpts)
	if err != nil {
		return nil, err
	}

	target := config.Withdrawal.GetTargetConfidence()
	res := &SpendingCapacityResult{
		TargetConfidence:       target,
		BaselineExpenses:       p.totalExpenses,
		BaselineSustainability: sustainabilityAt(outcomes, p.failureFloor),
	}

	sustains := func(m float64) bool {
		return sustainabilityAt(outcomes, p.failureFloor*m) >= target
	}

	// Bounds: low always sustains (or is 0), high never does
	low, high := 0.0, 1.0
	for sustains(high) && high < capacityMaxMultiplier {
		low = high
		high *= 2
	}

	if sustains(0) {
		for i := 0; i < capacityMaxIterations && high-low > capacityTolerance; i++ {
			mid := (low + high) / 2
			if sustains(mid) {
				low = mid
			} else {
				high = mid
			}
			res.Iterations++
		}
	} else {
		low = 0
	}

	res.Multiplier = low
	res.SustainableExpenses = p.totalExpenses * low
	res.Sustainability = sustainabilityAt(outcomes, p.failureFloor*low)

	res.Result, err = RunLegacySimulation(ctx, cloneConfigWithMultiplier(config, low), searchOpts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// sustainabilityAt is the share of trials whose final family wealth clears
// the floor; faulted trials never do
func sustainabilityAt(outcomes []trialOutcome, floor float64) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	ok := 0
	for _, o := range outcomes {
		if !o.faulted && o.finalFamily >= floor {
			ok++
		}
	}
	return float64(ok) / float64(len(outcomes))
}

// cloneConfigWithMultiplier creates a copy of config with every member's
// expenses scaled by multiplier
func cloneConfigWithMultiplier(config *Config, multiplier float64) *Config {
	newConfig := config.Clone()
	for i := range newConfig.Family {
		newConfig.Family[i].AnnualExpenses *= multiplier
	}
	return newConfig
}
