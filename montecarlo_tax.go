package main

import (
	"context"
	"math"
	"sort"
	"time"
)

// taxPlan is the validated, read-only input of a tax batch
type taxPlan struct {
	years            int
	runs             int
	assets           []TaxAsset
	catalog          []EntityJurisdiction
	calc             *TaxCalculator
	transferCosts    map[EntityType]float64
	strategies       []HarvestingStrategy
	annualWithdrawal float64
	inflation        float64
	initialValue     float64
}

// resolveTaxConfig validates the tax section and fixes the catalog and rates
func resolveTaxConfig(config *Config) (*taxPlan, error) {
	cfg := config.Clone()
	tc := &cfg.Tax

	years := tc.GetYears(cfg.Simulation.Years)
	runs := tc.GetRuns(cfg.Simulation.GetRuns())
	if tc.Years < 0 || tc.Runs < 0 || years < 0 {
		return nil, configErrorf(ErrInvalidHorizon, "tax years %d, runs %d", tc.Years, tc.Runs)
	}
	if len(tc.Assets) == 0 {
		return nil, ErrNoTaxAssets
	}

	tp := &taxPlan{
		years:            years,
		runs:             runs,
		assets:           tc.Assets,
		transferCosts:    tc.GetEntityTransferCosts(),
		strategies:       tc.GetHarvestingStrategies(),
		annualWithdrawal: tc.AnnualWithdrawal,
		inflation:        tc.GetInflationRate(cfg.Economics.InflationRate),
	}

	for _, a := range tp.assets {
		if err := validateAsset(a.Asset); err != nil {
			return nil, err
		}
		if !a.Jurisdiction.Valid() {
			return nil, configErrorf(ErrUnknownJurisdiction, "tax asset %q jurisdiction %q", a.ID, a.Jurisdiction)
		}
		if !a.EntityType.Valid() {
			return nil, configErrorf(ErrUnknownEntity, "tax asset %q entity %q", a.ID, a.EntityType)
		}
		if a.CostBasis < 0 || a.IncomeYield < 0 {
			return nil, configErrorf(ErrNegativeValue, "tax asset %q", a.ID)
		}
		tp.initialValue += a.CurrentValue
	}
	for _, h := range tp.strategies {
		if !inUnitRange(h.Threshold) || h.MaxAnnualLoss < 0 {
			return nil, configErrorf(ErrRateRange, "harvesting threshold %g, max loss %g", h.Threshold, h.MaxAnnualLoss)
		}
	}

	mode := tc.GetCatalog()
	if mode != CatalogCommon && mode != CatalogExhaustive {
		return nil, configErrorf(ErrUnknownOption, "tax catalog %q", mode)
	}
	tp.catalog = EntityCatalog(mode)

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if tc.ValuationDate != "" {
		d, err := time.Parse("2006-01-02", tc.ValuationDate)
		if err != nil {
			return nil, configErrorf(ErrInvalidConfiguration, "valuation date %q", tc.ValuationDate)
		}
		asOf = d
	}
	tp.calc = NewTaxCalculator(tc.GetRates(), tc.GetLongTermHoldingDays(), asOf)

	return tp, nil
}

// taxTrialOutcome is one trial of the tax batch
type taxTrialOutcome struct {
	afterTax        float64 // after the withdrawal schedule
	taxes           float64
	harvested       float64
	estate          float64
	entityMix       map[EntityType]float64
	jurisdictionMix map[Jurisdiction]float64
	success         bool
	faulted         bool
}

func (o taxTrialOutcome) finite() bool {
	for _, v := range []float64{o.afterTax, o.taxes, o.harvested, o.estate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RunTaxSimulation runs the tax structuring Monte Carlo: per trial it picks
// the best entity/jurisdiction structure, compares harvesting strategies and
// checks the inflation-grown withdrawal schedule against the after-tax value
func RunTaxSimulation(ctx context.Context, config *Config, opts RunOptions) (*TaxSimulationResult, error) {
	start := time.Now()
	logger := opts.Logger.orSilent()

	tp, err := resolveTaxConfig(config)
	if err != nil {
		return nil, err
	}

	workers := opts.workerCount(tp.runs)
	logger.Debug().
		Str("run_id", opts.RunID).
		Int("runs", tp.runs).
		Int("years", tp.years).
		Int("catalog", len(tp.catalog)).
		Int("workers", workers).
		Msg("Starting tax simulation")

	outcomes := make([]taxTrialOutcome, tp.runs)
	err = runTrials(ctx, tp.runs, workers, func(i int) {
		outcomes[i] = tp.safeTrial(i, opts.Seed)
	})
	if err != nil {
		return nil, err
	}

	result := reduceTaxOutcomes(tp, outcomes)
	result.RunID = opts.RunID
	result.Seed = opts.Seed

	if result.FaultedTrials > 0 {
		logger.Warn().Str("run_id", opts.RunID).Int("faulted", result.FaultedTrials).Msg("Faulted tax trials counted as failures")
	}
	logger.Info().
		Str("run_id", opts.RunID).
		Int("runs", tp.runs).
		Int("years", tp.years).
		Uint64("seed", opts.Seed).
		Dur("elapsed", time.Since(start)).
		Float64("success_rate", result.SuccessRate).
		Msg("Tax simulation complete")

	return result, nil
}

func (tp *taxPlan) safeTrial(i int, seed uint64) (out taxTrialOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = taxTrialOutcome{faulted: true}
		}
	}()

	out = tp.runTrial(i, seed)
	if !out.finite() {
		return taxTrialOutcome{faulted: true}
	}
	return out
}

func (tp *taxPlan) runTrial(i int, seed uint64) taxTrialOutcome {
	s := NewTrialSampler(seed, i)

	search := SearchEntityJurisdiction(tp.assets, tp.catalog, tp.calc, tp.years, tp.transferCosts, s)
	out := taxTrialOutcome{
		afterTax:        search.TotalValue,
		entityMix:       search.EntityMix,
		jurisdictionMix: search.JurisdictionMix,
	}

	// Harvesting strategies are compared on the assets as currently held
	best := 0.0
	for _, h := range tp.strategies {
		value, taxes, harvested, estate := 0.0, 0.0, 0.0, 0.0
		for _, asset := range tp.assets {
			path := SimulateTaxAssetPath(asset, tp.years, s)
			res := tp.calc.CalculateAssetTaxes(asset, path, h)
			net := res.FinalValue - res.TotalTax
			value += net
			taxes += res.TotalTax
			harvested += res.HarvestedLosses
			estate += tp.calc.EstateTaxExposure(net, asset.Jurisdiction, asset.EntityType)
		}
		if value > best {
			best = value
			out.afterTax = value
			out.taxes = taxes
			out.harvested = harvested
			out.estate = estate
		}
	}

	out.success = true
	withdrawal := tp.annualWithdrawal
	for year := 0; year < tp.years; year++ {
		withdrawal *= 1 + tp.inflation
		if out.afterTax < withdrawal {
			out.success = false
			break
		}
		out.afterTax -= withdrawal
	}
	return out
}

// reduceTaxOutcomes averages the trials in index order
func reduceTaxOutcomes(tp *taxPlan, outcomes []taxTrialOutcome) *TaxSimulationResult {
	n := float64(len(outcomes))
	result := &TaxSimulationResult{
		Runs:                   len(outcomes),
		Years:                  tp.years,
		OptimalEntityMix:       make(map[EntityType]float64, len(EntityTypes)),
		OptimalJurisdictionMix: make(map[Jurisdiction]float64, len(Jurisdictions)),
		CatalogSize:            len(tp.catalog),
	}
	if len(outcomes) == 0 {
		return result
	}

	successes := 0
	taxes := make([]float64, 0, len(outcomes))
	values := make([]float64, 0, len(outcomes))

	for _, o := range outcomes {
		if o.faulted {
			result.FaultedTrials++
			continue
		}
		if o.success {
			successes++
		}
		result.TotalAfterTaxValue += o.afterTax
		result.TotalTaxesPaid += o.taxes
		result.TotalHarvestedLosses += o.harvested
		result.EstateTaxExposure += o.estate
		taxes = append(taxes, o.taxes)
		values = append(values, o.afterTax)

		for e, w := range o.entityMix {
			result.OptimalEntityMix[e] += w
		}
		for j, w := range o.jurisdictionMix {
			result.OptimalJurisdictionMix[j] += w
		}
	}

	result.TotalAfterTaxValue /= n
	result.TotalTaxesPaid /= n
	result.TotalHarvestedLosses /= n
	result.EstateTaxExposure /= n
	result.SuccessRate = float64(successes) / n
	for e := range result.OptimalEntityMix {
		result.OptimalEntityMix[e] /= n
	}
	for j := range result.OptimalJurisdictionMix {
		result.OptimalJurisdictionMix[j] /= n
	}

	// Median trial taxes spread over the initial value and the horizon
	sort.Float64s(taxes)
	if denom := tp.initialValue * float64(tp.years); denom > 0 && len(taxes) > 0 {
		result.MedianAnnualTaxRate = taxes[len(taxes)/2] / denom
	}

	result.AfterTaxPercentiles = percentiles(values)
	return result
}
