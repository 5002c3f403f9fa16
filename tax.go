package main

import (
	"math"
	"time"
)

// DefaultHarvestingStrategy is used when comparing entity/jurisdiction pairs
var DefaultHarvestingStrategy = HarvestingStrategy{
	Threshold:             0.10,
	MaxAnnualLoss:         3_000_000,
	ReinvestmentDelayDays: 30,
}

// DefaultTaxRates returns the built-in base rates per jurisdiction and
// modifiers per entity type
func DefaultTaxRates() TaxRates {
	return TaxRates{
		OrdinaryIncome:        jurisdictionMap(0.37, 0.45, 0.22, 0.22, 0),
		LongTermCapitalGains:  jurisdictionMap(0.20, 0.20, 0.20, 0, 0),
		ShortTermCapitalGains: jurisdictionMap(0.37, 0.45, 0.22, 0.22, 0),
		Dividends:             jurisdictionMap(0.20, 0.39, 0.35, 0, 0),
		EstateTax:             jurisdictionMap(0.40, 0.40, 0.25, 0, 0),
		EntityModifiers: map[EntityType]EntityModifiers{
			Individual:               {IncomeTax: 1.0, CapitalGains: 1.0, Dividends: 1.0, EstateTax: 1.0},
			RevocableTrust:           {IncomeTax: 1.0, CapitalGains: 1.0, Dividends: 1.0, EstateTax: 0.9},
			IrrevocableTrust:         {IncomeTax: 1.1, CapitalGains: 1.0, Dividends: 1.0, EstateTax: 0},
			FamilyLimitedPartnership: {IncomeTax: 1.0, CapitalGains: 0.85, Dividends: 1.0, EstateTax: 0.6},
			EntityLLC:                {IncomeTax: 1.0, CapitalGains: 0.9, Dividends: 1.0, EstateTax: 0.8},
			Foundation:               {IncomeTax: 0, CapitalGains: 0, Dividends: 0, EstateTax: 0},
		},
	}
}

// jurisdictionMap builds a rate map in Jurisdictions order
func jurisdictionMap(values ...float64) map[Jurisdiction]float64 {
	m := make(map[Jurisdiction]float64, len(values))
	for i, v := range values {
		m[Jurisdictions[i]] = v
	}
	return m
}

// Clone returns a deep copy of the rate tables
func (r TaxRates) Clone() TaxRates {
	clone := TaxRates{
		OrdinaryIncome:        cloneJurisdictionMap(r.OrdinaryIncome),
		LongTermCapitalGains:  cloneJurisdictionMap(r.LongTermCapitalGains),
		ShortTermCapitalGains: cloneJurisdictionMap(r.ShortTermCapitalGains),
		Dividends:             cloneJurisdictionMap(r.Dividends),
		EstateTax:             cloneJurisdictionMap(r.EstateTax),
	}
	if r.EntityModifiers != nil {
		clone.EntityModifiers = make(map[EntityType]EntityModifiers, len(r.EntityModifiers))
		for k, v := range r.EntityModifiers {
			clone.EntityModifiers[k] = v
		}
	}
	return clone
}

func cloneJurisdictionMap(m map[Jurisdiction]float64) map[Jurisdiction]float64 {
	if m == nil {
		return nil
	}
	out := make(map[Jurisdiction]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TaxYear is one simulated year of a taxable asset
type TaxYear struct {
	Value  float64 // value at the end of the year
	Income float64
	Loss   float64
}

// SimulateTaxAssetPath draws a yearly return for the asset and records its
// income and market loss. Gains are not added to the value; only income
// accrues and losses are subtracted.
func SimulateTaxAssetPath(asset TaxAsset, years int, s *NormalSampler) []TaxYear {
	path := make([]TaxYear, years)
	value := asset.CurrentValue

	for year := 0; year < years; year++ {
		r := s.Draw(asset.ExpectedReturn, asset.Volatility)
		income := value * asset.IncomeYield
		loss := value * math.Max(-r, 0)
		value += income - loss
		path[year] = TaxYear{Value: value, Income: income, Loss: loss}
	}
	return path
}

// AssetTaxResult is the tax outcome of one asset over one path
type AssetTaxResult struct {
	FinalValue        float64
	IncomeTax         float64
	DeferredIncomeTax float64 // tax-deferred assets: income taxed once at the horizon
	CapitalGainsTax   float64
	TotalTax          float64
	HarvestedLosses   float64
	UnrealizedGain    float64
	LongTerm          bool
}

// TaxCalculator applies one set of rate tables
type TaxCalculator struct {
	Rates               TaxRates
	LongTermHoldingDays int
	AsOf                time.Time
}

// NewTaxCalculator builds a calculator valued as of asOf
func NewTaxCalculator(rates TaxRates, longTermDays int, asOf time.Time) *TaxCalculator {
	return &TaxCalculator{Rates: rates, LongTermHoldingDays: longTermDays, AsOf: asOf}
}

func (tc *TaxCalculator) modifiers(e EntityType) EntityModifiers {
	return tc.Rates.EntityModifiers[e]
}

// CalculateAssetTaxes computes income and capital gains tax for one asset
// path under a harvesting strategy
func (tc *TaxCalculator) CalculateAssetTaxes(asset TaxAsset, path []TaxYear, h HarvestingStrategy) AssetTaxResult {
	j, mods := asset.Jurisdiction, tc.modifiers(asset.EntityType)
	res := AssetTaxResult{FinalValue: asset.CurrentValue}

	adjustedBasis := asset.CostBasis
	deferredIncome := 0.0

	for _, y := range path {
		if asset.TaxDeferred {
			deferredIncome += y.Income
		} else {
			res.IncomeTax += y.Income * tc.Rates.Dividends[j] * mods.Dividends
		}

		if y.Loss > y.Value*h.Threshold && y.Loss <= h.MaxAnnualLoss {
			res.HarvestedLosses += y.Loss
			adjustedBasis -= y.Loss
		}
	}
	if len(path) > 0 {
		res.FinalValue = path[len(path)-1].Value
	}

	if deferredIncome > 0 {
		res.DeferredIncomeTax = deferredIncome * tc.Rates.OrdinaryIncome[j] * mods.IncomeTax
	}

	res.UnrealizedGain = res.FinalValue - adjustedBasis
	res.LongTerm = asset.HoldingPeriodDays(tc.AsOf) > tc.LongTermHoldingDays

	cgRate := tc.Rates.ShortTermCapitalGains[j] * mods.CapitalGains
	if res.LongTerm {
		cgRate = tc.Rates.LongTermCapitalGains[j] * mods.CapitalGains
	}
	if res.UnrealizedGain > 0 {
		res.CapitalGainsTax = res.UnrealizedGain * cgRate
	}
	offset := math.Min(res.CapitalGainsTax, res.HarvestedLosses*cgRate)
	res.CapitalGainsTax -= offset

	res.TotalTax = res.IncomeTax + res.DeferredIncomeTax + res.CapitalGainsTax
	return res
}

// EstateTaxExposure is the estate tax due if value passed at the horizon
func (tc *TaxCalculator) EstateTaxExposure(value float64, j Jurisdiction, e EntityType) float64 {
	if value <= 0 {
		return 0
	}
	return value * tc.Rates.EstateTax[j] * tc.modifiers(e).EstateTax
}

// HoldingPeriodDays returns the explicit holding period, or the age of the
// earliest tax lot when none is set
func (a TaxAsset) HoldingPeriodDays(asOf time.Time) int {
	if a.HoldingPeriod > 0 || len(a.TaxLots) == 0 {
		return a.HoldingPeriod
	}

	var earliest time.Time
	for _, lot := range a.TaxLots {
		d, err := time.Parse("2006-01-02", lot.PurchaseDate)
		if err != nil {
			continue
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	if earliest.IsZero() || !asOf.After(earliest) {
		return 0
	}
	return int(asOf.Sub(earliest).Hours() / 24)
}

// WithAssignment returns a copy of the asset held under another entity and jurisdiction
func (a TaxAsset) WithAssignment(e EntityType, j Jurisdiction) TaxAsset {
	clone := a.Clone()
	clone.EntityType = e
	clone.Jurisdiction = j
	return clone
}

// CalculateAssetTaxes applies rates with the default one-day long-term cutoff
func CalculateAssetTaxes(asset TaxAsset, path []TaxYear, rates TaxRates, h HarvestingStrategy) AssetTaxResult {
	return NewTaxCalculator(rates, 1, time.Now()).CalculateAssetTaxes(asset, path, h)
}
