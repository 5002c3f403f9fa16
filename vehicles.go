package main

// VehicleCharacteristics describe the structural trade-offs of a vehicle type
type VehicleCharacteristics struct {
	AdminCostRate           float64
	DistributionRequirement float64
	TaxEfficiency           float64 // 0-1
	Control                 float64 // 0-1
	Flexibility             float64 // 0-1
}

// DefaultVehicleCharacteristics is the reference table used by the vehicle mix
var DefaultVehicleCharacteristics = map[VehicleType]VehicleCharacteristics{
	PrivateFoundation: {AdminCostRate: 0.010, DistributionRequirement: 0.05, TaxEfficiency: 0.80, Control: 1.0, Flexibility: 0.9},
	DonorAdvisedFund:  {AdminCostRate: 0.007, DistributionRequirement: 0.00, TaxEfficiency: 0.90, Control: 0.7, Flexibility: 0.8},
	CharitableTrust:   {AdminCostRate: 0.008, DistributionRequirement: 0.04, TaxEfficiency: 0.85, Control: 0.8, Flexibility: 0.6},
	DirectGiving:      {AdminCostRate: 0.000, DistributionRequirement: 1.00, TaxEfficiency: 0.70, Control: 0.5, Flexibility: 0.5},
	VehicleLLC:        {AdminCostRate: 0.005, DistributionRequirement: 0.00, TaxEfficiency: 0.60, Control: 1.0, Flexibility: 1.0},
}

// Score weights
const (
	mixDistributionWeight = 0.40
	mixTaxWeight          = 0.25
	mixControlWeight      = 0.20
	mixFlexibilityWeight  = 0.15
)

// VehicleMixInputs are the trial-invariant inputs of the vehicle comparison
type VehicleMixInputs struct {
	Capital      float64 // seed capital of each test vehicle
	Contribution float64 // annual contribution of each test vehicle
	Years        int
	Inflation    float64
	Strategy     *resolvedStrategy
	Withdrawal   WithdrawalParams
}

// vehicleMixInputs derives the test vehicle from the family balance sheet:
// 30% of assets as capital and 10% of family income as contribution
func (p *plan) vehicleMixInputs() VehicleMixInputs {
	return VehicleMixInputs{
		Capital:      0.3 * p.totalAssets,
		Contribution: 0.1 * p.totalIncome,
		Years:        p.years,
		Inflation:    p.inflation,
		Strategy:     &p.balanced,
		Withdrawal:   p.withdrawal,
	}
}

// EvaluateVehicleMix scores every vehicle type on a test vehicle and
// returns the scores normalised to sum to 1
func EvaluateVehicleMix(in VehicleMixInputs, s *NormalSampler) map[VehicleType]float64 {
	scores := make(map[VehicleType]float64, len(VehicleTypes))
	total := 0.0

	for _, vt := range VehicleTypes {
		ch := DefaultVehicleCharacteristics[vt]
		test := CharitableVehicle{
			ID:                      "mix-" + string(vt),
			Type:                    vt,
			CurrentValue:            in.Capital,
			AnnualContribution:      in.Contribution,
			AdminCostRate:           ch.AdminCostRate,
			DistributionRequirement: ch.DistributionRequirement,
			Strategy:                StrategyBalanced,
		}

		rate, _ := SustainableWithdrawalRate(test, in.Strategy, in.Withdrawal, s)
		distributed := projectVehicleDistributions(test, rate, in.Strategy.ExpectedReturn(), in.Inflation, in.Years)

		distScore := 0.0
		if denom := in.Capital + in.Contribution*float64(in.Years); denom > 0 {
			distScore = distributed / denom
		}
		score := mixDistributionWeight*distScore +
			mixTaxWeight*ch.TaxEfficiency +
			mixControlWeight*ch.Control +
			mixFlexibilityWeight*ch.Flexibility

		scores[vt] = score
		total += score
	}

	if total > 0 {
		for vt := range scores {
			scores[vt] /= total
		}
	}
	return scores
}

// projectVehicleDistributions runs a deterministic projection at the expected
// return. Each year pays the larger of the inflated starting distribution and
// the legal minimum.
func projectVehicleDistributions(v CharitableVehicle, rate, expectedReturn, inflation float64, years int) float64 {
	value := v.CurrentValue
	dist := value * rate
	total := 0.0

	for year := 1; year <= years; year++ {
		value *= 1 + expectedReturn
		value += v.AnnualContribution
		value -= value * v.AdminCostRate

		dist *= 1 + inflation
		actual := dist
		if required := value * v.DistributionRequirement; required > actual {
			actual = required
		}
		value -= actual
		total += actual
	}
	return total
}
