package main

import (
	"context"
)

// SensitivityResult holds the outcome of one return-shift combination
type SensitivityResult struct {
	PortfolioShift        float64 `json:"portfolio_shift"`
	VehicleShift          float64 `json:"vehicle_shift"`
	Sustainability        float64 `json:"sustainability"`
	FamilyWealth          float64 `json:"family_wealth"`
	FamilyWealthP10       float64 `json:"family_wealth_p10"`
	PhilanthropicImpact   float64 `json:"philanthropic_impact"`
	PerpetuityProbability float64 `json:"perpetuity_probability"`
}

// SensitivityAnalysis holds the complete grid
type SensitivityAnalysis struct {
	Results         [][]SensitivityResult `json:"results"` // [portfolioIdx][vehicleIdx]
	PortfolioShifts []float64             `json:"portfolio_shifts"`
	VehicleShifts   []float64             `json:"vehicle_shifts"`
	RunsPerCell     int                   `json:"runs_per_cell"`
	Seed            uint64                `json:"seed"`
	RunID           string                `json:"run_id,omitempty"`
}

// RunSensitivityAnalysis re-runs the legacy simulation over a grid of
// shifts to portfolio asset returns and to charitable strategy returns
func RunSensitivityAnalysis(ctx context.Context, config *Config, opts RunOptions) (*SensitivityAnalysis, error) {
	sc := config.Sensitivity
	portfolioMin, portfolioMax := sc.PortfolioShiftMin, sc.PortfolioShiftMax
	vehicleMin, vehicleMax := sc.VehicleShiftMin, sc.VehicleShiftMax

	// Set defaults if not configured
	if portfolioMin == 0 && portfolioMax == 0 {
		portfolioMin, portfolioMax = -0.02, 0.02
	}
	if vehicleMin == 0 && vehicleMax == 0 {
		vehicleMin, vehicleMax = -0.02, 0.02
	}
	step := sc.GetStepSize()

	analysis := &SensitivityAnalysis{
		PortfolioShifts: buildRateSteps(portfolioMin, portfolioMax, step),
		VehicleShifts:   buildRateSteps(vehicleMin, vehicleMax, step),
		RunsPerCell:     sc.GetRuns(),
		Seed:            opts.Seed,
		RunID:           opts.RunID,
	}

	cellOpts := opts
	cellOpts.SkipSearch = true
	cellOpts.Logger = NewSilentLogger()

	analysis.Results = make([][]SensitivityResult, len(analysis.PortfolioShifts))
	for pi, ps := range analysis.PortfolioShifts {
		analysis.Results[pi] = make([]SensitivityResult, len(analysis.VehicleShifts))
		for vi, vs := range analysis.VehicleShifts {
			testConfig := cloneConfigForSensitivity(config, ps, vs)
			testConfig.Simulation.Runs = analysis.RunsPerCell

			result, err := RunLegacySimulation(ctx, testConfig, cellOpts)
			if err != nil {
				return nil, err
			}
			analysis.Results[pi][vi] = SensitivityResult{
				PortfolioShift:        ps,
				VehicleShift:          vs,
				Sustainability:        result.SustainabilityScore,
				FamilyWealth:          result.FamilyWealth,
				FamilyWealthP10:       result.FamilyWealthPercentiles.P10,
				PhilanthropicImpact:   result.PhilanthropicImpact,
				PerpetuityProbability: result.PerpetuityProbability,
			}
		}
	}

	opts.Logger.orSilent().Info().
		Str("run_id", opts.RunID).
		Int("cells", len(analysis.PortfolioShifts)*len(analysis.VehicleShifts)).
		Int("runs_per_cell", analysis.RunsPerCell).
		Msg("Sensitivity analysis complete")

	return analysis, nil
}

// cloneConfigForSensitivity creates a config copy with every asset return
// shifted by portfolioShift and every strategy sleeve return by vehicleShift.
// Sleeves relying on class defaults get the default made explicit first.
func cloneConfigForSensitivity(config *Config, portfolioShift, vehicleShift float64) *Config {
	newConfig := config.Clone()

	for i := range newConfig.Assets {
		newConfig.Assets[i].ExpectedReturn += portfolioShift
	}

	for name, s := range newConfig.Strategies {
		if s.Returns == nil {
			s.Returns = make(map[AssetClass]float64)
		}
		for class := range s.Allocation {
			r, ok := s.Returns[class]
			if !ok {
				r = DefaultClassAssumptions[class].Return
			}
			s.Returns[class] = r + vehicleShift
		}
		newConfig.Strategies[name] = s
	}
	return newConfig
}

// BestCell returns the indices of the cell with the highest sustainability,
// breaking ties on family wealth
func (a *SensitivityAnalysis) BestCell() (int, int) {
	bestP, bestV := -1, -1
	for pi, row := range a.Results {
		for vi, cell := range row {
			if bestP < 0 {
				bestP, bestV = pi, vi
				continue
			}
			best := a.Results[bestP][bestV]
			if cell.Sustainability > best.Sustainability ||
				(cell.Sustainability == best.Sustainability && cell.FamilyWealth > best.FamilyWealth) {
				bestP, bestV = pi, vi
			}
		}
	}
	return bestP, bestV
}
