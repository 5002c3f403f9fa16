package main

import (
	"context"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// trialOutcome is everything the reduction needs from one legacy trial
type trialOutcome struct {
	path               Path
	finalFamily        float64
	distributions      float64
	impact             float64
	successorReadiness float64
	engagement         float64
	balance            float64
	withdrawalRate     float64
	failed             bool
	perpetual          bool
	sunset             bool
	faulted            bool
}

// finite reports whether every scalar of the outcome is a usable number
func (o trialOutcome) finite() bool {
	for _, v := range []float64{o.finalFamily, o.distributions, o.impact, o.successorReadiness, o.engagement, o.balance, o.withdrawalRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RunLegacySimulation runs the legacy planning Monte Carlo and reduces the
// trials to summary statistics. The same config and seed always produce the
// same result, whatever the worker count.
func RunLegacySimulation(ctx context.Context, config *Config, opts RunOptions) (*SimulationResult, error) {
	start := time.Now()
	logger := opts.Logger.orSilent()

	p, outcomes, err := simulateLegacyOutcomes(ctx, config, opts)
	if err != nil {
		return nil, err
	}

	var mix map[VehicleType]float64
	if !opts.SkipSearch {
		mix = EvaluateVehicleMix(p.vehicleMixInputs(), NewNormalSampler(NewSeededRNG(opts.Seed, vehicleMixStream)))
	}

	result := reduceLegacyOutcomes(p, outcomes, mix)
	result.RunID = opts.RunID
	result.Seed = opts.Seed

	if result.FaultedTrials > 0 {
		logger.Warn().
			Str("run_id", opts.RunID).
			Int("faulted", result.FaultedTrials).
			Msg("Some trials produced non-finite values and were counted as failures")
	}
	logger.Info().
		Str("run_id", opts.RunID).
		Int("runs", p.runs).
		Int("years", p.years).
		Uint64("seed", opts.Seed).
		Dur("elapsed", time.Since(start)).
		Float64("sustainability", result.SustainabilityScore).
		Msg("Legacy simulation complete")

	return result, nil
}

// simulateLegacyOutcomes validates the config and runs every trial
func simulateLegacyOutcomes(ctx context.Context, config *Config, opts RunOptions) (*plan, []trialOutcome, error) {
	logger := opts.Logger.orSilent()

	p, err := resolveConfig(config, logger)
	if err != nil {
		return nil, nil, err
	}

	workers := opts.workerCount(p.runs)
	logger.Debug().
		Str("run_id", opts.RunID).
		Int("runs", p.runs).
		Int("years", p.years).
		Int("workers", workers).
		Uint64("seed", opts.Seed).
		Msg("Starting legacy simulation")

	outcomes := make([]trialOutcome, p.runs)
	err = runTrials(ctx, p.runs, workers, func(i int) {
		outcomes[i] = p.safeTrial(i, opts.Seed, opts.SkipSearch)
	})
	if err != nil {
		return nil, nil, err
	}
	return p, outcomes, nil
}

// safeTrial runs one trial and turns a panic or a non-finite outcome into a
// faulted failure
func (p *plan) safeTrial(i int, seed uint64, skipSearch bool) (out trialOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = trialOutcome{faulted: true, failed: true}
		}
	}()

	out = p.runTrial(i, seed, skipSearch)
	if !out.finite() {
		return trialOutcome{faulted: true, failed: true}
	}
	return out
}

// runTrial evolves one independent future of the family office
func (p *plan) runTrial(i int, seed uint64, skipSearch bool) trialOutcome {
	s := NewTrialSampler(seed, i)
	st := newTrialState(p)

	path := NewPortfolioEvolver(p).Run(st, s)
	succession := NewSuccessionModel(p.family).Run(p.years)

	out := trialOutcome{
		path:          path,
		finalFamily:   path.FinalFamily(),
		distributions: path.TotalDistributions(),
	}
	out.failed = out.finalFamily < p.failureFloor
	out.perpetual = path.FinalCharitable() >= path.Charitable[0]
	if p.legacy.Sunsetting {
		out.sunset = path.Charitable[p.sunsetYear] <= 0.05*path.Charitable[0]
	}

	out.impact = ImpactScore(path.Distributions, len(p.uniqueCauses), p.alignment)
	out.successorReadiness = SuccessorReadiness(p.family, succession.FinalSuccessors())
	out.engagement = FamilyEngagement(succession.FinalInvolvement(), p.legacy.MinimumFamilyInvolvement)
	out.balance = BalanceScore(out.finalFamily, path.FinalCharitable(), p.totalExpenses, p.avgInterest, p.philTarget)

	// A skipped primary vehicle has no distributions to sustain
	if strategy := p.vehicleStrategyFor(p.primaryVehicle); !skipSearch && strategy != nil {
		out.withdrawalRate, _ = SustainableWithdrawalRate(
			p.vehicles[p.primaryVehicle],
			strategy,
			p.withdrawal,
			s,
		)
	}
	return out
}

// reduceLegacyOutcomes folds the trials in index order
func reduceLegacyOutcomes(p *plan, outcomes []trialOutcome, mix map[VehicleType]float64) *SimulationResult {
	n := float64(len(outcomes))
	result := &SimulationResult{
		Runs:              len(outcomes),
		Years:             p.years,
		OptimalVehicleMix: mix,
		SkippedVehicles:   append([]string(nil), p.skipped...),
	}
	if len(outcomes) == 0 {
		return result
	}

	var failures, perpetual, sunset int
	finals := make([]float64, 0, len(outcomes))
	meanPath := make([]YearSummary, p.years+1)
	pathCount := 0

	for _, o := range outcomes {
		if o.faulted {
			result.FaultedTrials++
		}
		if o.failed {
			failures++
		}
		if o.faulted {
			continue
		}
		if o.perpetual {
			perpetual++
		}
		if o.sunset {
			sunset++
		}

		result.PhilanthropicImpact += o.impact
		result.FamilyWealth += o.finalFamily
		result.PhilanthropicCapitalDeployed += o.distributions
		result.SuccessorReadiness += o.successorReadiness
		result.FamilyEngagementScore += o.engagement
		result.BalanceScore += o.balance
		result.OptimalWithdrawalRate += o.withdrawalRate
		finals = append(finals, o.finalFamily)

		for y := range meanPath {
			meanPath[y].Portfolio += o.path.Portfolio[y]
			meanPath[y].Charitable += o.path.Charitable[y]
			meanPath[y].Distributions += o.path.Distributions[y]
			meanPath[y].Family += o.path.Family[y]
		}
		pathCount++
	}

	result.PhilanthropicImpact /= n
	result.FamilyWealth /= n
	result.PhilanthropicCapitalDeployed /= n
	result.SuccessorReadiness /= n
	result.FamilyEngagementScore /= n
	result.BalanceScore /= n
	result.OptimalWithdrawalRate /= n

	result.FailureRate = float64(failures) / n
	result.SustainabilityScore = 1 - result.FailureRate
	result.PerpetuityProbability = float64(perpetual) / n
	if p.legacy.Sunsetting {
		result.SunsetProbability = float64(sunset) / n
	}

	result.FamilyWealthPercentiles = percentiles(finals)

	// The mean path averages the trials that completed
	if pathCount > 0 {
		for y := range meanPath {
			meanPath[y].Year = y
			meanPath[y].Portfolio /= float64(pathCount)
			meanPath[y].Charitable /= float64(pathCount)
			meanPath[y].Distributions /= float64(pathCount)
			meanPath[y].Family /= float64(pathCount)
		}
		result.MeanPath = meanPath
	}
	return result
}

// percentiles returns P10/P50/P90 of the values using the empirical quantile
func percentiles(values []float64) Percentiles {
	if len(values) == 0 {
		return Percentiles{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Percentiles{
		P10: stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90: stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}
