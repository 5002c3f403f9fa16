package main

// EntityJurisdiction is one candidate holding structure
type EntityJurisdiction struct {
	Entity       EntityType   `json:"entity"`
	Jurisdiction Jurisdiction `json:"jurisdiction"`
}

// DefaultEntityTransferCosts is the one-off cost of moving an asset into each entity
func DefaultEntityTransferCosts() map[EntityType]float64 {
	return map[EntityType]float64{
		Individual:               0,
		RevocableTrust:           50_000,
		IrrevocableTrust:         100_000,
		FamilyLimitedPartnership: 75_000,
		EntityLLC:                40_000,
		Foundation:               250_000,
	}
}

// EntitySearchResult is the best structure found for one trial
type EntitySearchResult struct {
	Best            EntityJurisdiction
	Found           bool
	TotalValue      float64 // after tax and transfer costs
	EntityMix       map[EntityType]float64
	JurisdictionMix map[Jurisdiction]float64
}

// SearchEntityJurisdiction re-simulates every asset under each candidate
// structure with the default harvesting strategy and keeps the structure with
// the highest after-tax, after-transfer-cost value. A candidate must beat the
// running best strictly, starting from 0, so if nothing ends positive no
// structure is chosen and both mixes stay at zero.
func SearchEntityJurisdiction(assets []TaxAsset, catalog []EntityJurisdiction, calc *TaxCalculator, years int, transferCosts map[EntityType]float64, s *NormalSampler) EntitySearchResult {
	res := EntitySearchResult{
		EntityMix:       make(map[EntityType]float64, len(EntityTypes)),
		JurisdictionMix: make(map[Jurisdiction]float64, len(Jurisdictions)),
	}

	bestValue := 0.0
	for _, candidate := range catalog {
		total := 0.0
		for _, asset := range assets {
			assigned := asset.WithAssignment(candidate.Entity, candidate.Jurisdiction)
			path := SimulateTaxAssetPath(assigned, years, s)
			taxes := calc.CalculateAssetTaxes(assigned, path, DefaultHarvestingStrategy)
			total += taxes.FinalValue - taxes.TotalTax - transferCosts[candidate.Entity]
		}
		if total > bestValue {
			bestValue = total
			res.Best = candidate
			res.Found = true
		}
	}

	res.TotalValue = bestValue
	if res.Found {
		res.EntityMix[res.Best.Entity] = 1
		res.JurisdictionMix[res.Best.Jurisdiction] = 1
	}
	return res
}
