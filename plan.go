package main

import (
	"math"
)

// plan is a validated, resolved, read-only view of a Config. Every trial
// reads from the same plan and writes only to its own trialState.
type plan struct {
	years int
	runs  int

	assets   []Asset
	vehicles []CharitableVehicle
	family   []FamilyMember

	returns         ReturnGenerator
	impactPremium   float64
	convention      FamilyValueConvention
	vehicleStrategy []int // index into strategies, -1 = unresolved (skipped)
	strategies      []resolvedStrategy
	balanced        resolvedStrategy
	skipped         []string

	primaryVehicle int
	withdrawal     WithdrawalParams

	legacy         LegacyPlan
	philTarget     float64
	totalExpenses  float64
	totalIncome    float64
	totalAssets    float64
	failureFloor   float64 // 10 × expenses grown to the horizon
	avgInterest    float64
	uniqueCauses   []string
	alignment      float64
	sunsetYear     int
	inflation      float64
	initialCharity float64
}

// ValidateConfig runs the same checks a simulation runs before its first trial
func ValidateConfig(config *Config) error {
	_, err := resolveConfig(config, nil)
	return err
}

// resolveConfig validates the configuration and resolves strategy names and
// correlation groups. The config is deep-copied first so later edits by the
// caller cannot reach a running batch.
func resolveConfig(config *Config, logger *Logger) (*plan, error) {
	logger = logger.orSilent()
	cfg := config.Clone()

	if cfg.Simulation.Years < 0 || cfg.Simulation.Runs < 0 {
		return nil, configErrorf(ErrInvalidHorizon, "years %d, runs %d", cfg.Simulation.Years, cfg.Simulation.Runs)
	}
	if len(cfg.Assets) == 0 {
		return nil, ErrNoAssets
	}
	if len(cfg.Vehicles) == 0 {
		return nil, ErrNoVehicles
	}
	if len(cfg.Family) == 0 {
		return nil, ErrNoFamily
	}

	for _, a := range cfg.Assets {
		if err := validateAsset(a); err != nil {
			return nil, err
		}
	}
	for _, v := range cfg.Vehicles {
		if err := validateVehicle(v); err != nil {
			return nil, err
		}
	}
	for _, m := range cfg.Family {
		if !inUnitRange(m.PhilanthropicInterest) {
			return nil, configErrorf(ErrRateRange, "family member %q philanthropic interest %g", m.ID, m.PhilanthropicInterest)
		}
		if m.AnnualExpenses < 0 || m.AnnualIncome < 0 || m.TimeCommitment < 0 {
			return nil, configErrorf(ErrNegativeValue, "family member %q", m.ID)
		}
	}
	for name, s := range cfg.Strategies {
		for class := range s.Allocation {
			if !class.Valid() {
				return nil, configErrorf(ErrUnknownAssetClass, "strategy %q allocation class %q", name, class)
			}
		}
	}

	convention := cfg.Simulation.GetFamilyValueConvention()
	if convention != NetOfVehicles && convention != SeparateVehicles {
		return nil, configErrorf(ErrUnknownOption, "family value convention %q", convention)
	}
	strategy := cfg.Withdrawal.GetStrategy()
	if !strategy.Valid() {
		return nil, configErrorf(ErrUnknownOption, "withdrawal strategy %q", strategy)
	}
	if !inUnitRange(cfg.LegacyPlan.PhilanthropicPercentage) {
		return nil, configErrorf(ErrRateRange, "philanthropic percentage %g", cfg.LegacyPlan.PhilanthropicPercentage)
	}

	returns, err := NewReturnGenerator(cfg.Simulation.GetCorrelationMode(), cfg.Assets, cfg.CorrelationMatrix)
	if err != nil {
		return nil, err
	}

	p := &plan{
		years:         cfg.Simulation.Years,
		runs:          cfg.Simulation.GetRuns(),
		assets:        cfg.Assets,
		vehicles:      cfg.Vehicles,
		family:        cfg.Family,
		returns:       returns,
		impactPremium: cfg.Economics.ImpactPremium,
		convention:    convention,
		legacy:        cfg.LegacyPlan,
		inflation:     cfg.Economics.InflationRate,
	}

	p.resolveStrategies(cfg, logger)

	p.primaryVehicle = 0
	for i, v := range p.vehicles {
		if v.Type == cfg.LegacyPlan.PrimaryEntity {
			p.primaryVehicle = i
			break
		}
	}

	p.withdrawal = WithdrawalParams{
		Strategy:         strategy,
		Years:            p.years,
		Runs:             cfg.Withdrawal.GetSearchRuns(),
		TargetConfidence: cfg.Withdrawal.GetTargetConfidence(),
		InflationRate:    cfg.Economics.InflationRate,
		Grid:             WithdrawalRateGrid(cfg.Withdrawal.GetMinRate(), cfg.Withdrawal.GetMaxRate(), cfg.Withdrawal.GetStep()),
		Guardrails: GuardrailsSettings{
			UpperLimit: cfg.Withdrawal.GetGuardrailsUpperLimit(),
			LowerLimit: cfg.Withdrawal.GetGuardrailsLowerLimit(),
			Adjustment: cfg.Withdrawal.GetGuardrailsAdjustment(),
		},
		VPW: VPWSettings{
			StartAge:          cfg.EldestMemberAge(),
			CeilingMultiplier: cfg.Withdrawal.GetVPWCeilingMultiplier(),
		},
	}

	// Philanthropic target: the legacy plan's share, falling back to the
	// economic allocation when the plan leaves it unset
	p.philTarget = cfg.LegacyPlan.PhilanthropicPercentage
	if p.philTarget == 0 {
		p.philTarget = cfg.Economics.PhilanthropicAllocation
	}

	p.totalExpenses = cfg.TotalFamilyExpenses()
	p.totalIncome = cfg.TotalFamilyIncome()
	p.totalAssets = cfg.TotalAssetValue()
	p.initialCharity = cfg.TotalCharitableValue()
	p.failureFloor = 10 * p.totalExpenses * math.Pow(1+cfg.Economics.FamilyGrowthRate, float64(p.years))

	interest := 0.0
	for _, m := range p.family {
		interest += m.PhilanthropicInterest
	}
	p.avgInterest = interest / float64(len(p.family))

	p.uniqueCauses = UniqueCauseAreas(p.vehicles)
	p.alignment = MissionAlignment(p.uniqueCauses, p.family)

	if cfg.LegacyPlan.Sunsetting {
		p.sunsetYear = cfg.LegacyPlan.SunsetYear
		if p.sunsetYear <= 0 || p.sunsetYear > p.years {
			p.sunsetYear = p.years
		}
	}

	return p, nil
}

// resolveStrategies maps every vehicle to a strategy index once. Unknown
// names are skipped: the vehicle is carried at its current value.
func (p *plan) resolveStrategies(cfg *Config, logger *Logger) {
	index := make(map[string]int)
	p.vehicleStrategy = make([]int, len(p.vehicles))

	for i, v := range p.vehicles {
		if idx, ok := index[v.Strategy]; ok {
			p.vehicleStrategy[i] = idx
			continue
		}
		s, ok := cfg.Strategies[v.Strategy]
		if !ok {
			p.vehicleStrategy[i] = -1
			p.skipped = append(p.skipped, v.ID)
			logger.Warn().
				Str("vehicle", v.ID).
				Str("strategy", v.Strategy).
				Msg("Investment strategy not found, vehicle will be carried at its current value")
			continue
		}
		index[v.Strategy] = len(p.strategies)
		p.vehicleStrategy[i] = len(p.strategies)
		p.strategies = append(p.strategies, resolveStrategy(v.Strategy, s))
	}

	if s, ok := cfg.Strategies[StrategyBalanced]; ok {
		p.balanced = resolveStrategy(StrategyBalanced, s)
	} else {
		logger.Debug().Msg("No balanced strategy configured, using the built-in one for the vehicle mix")
		p.balanced = resolveStrategy(StrategyBalanced, DefaultInvestmentStrategies()[StrategyBalanced])
	}
}

// vehicleStrategyFor returns the resolved strategy of vehicle i, or nil when skipped
func (p *plan) vehicleStrategyFor(i int) *resolvedStrategy {
	idx := p.vehicleStrategy[i]
	if idx < 0 {
		return nil
	}
	return &p.strategies[idx]
}

func validateAsset(a Asset) error {
	if !a.Class.Valid() {
		return configErrorf(ErrUnknownAssetClass, "asset %q class %q", a.ID, a.Class)
	}
	if !isNonNegative(a.CurrentValue) {
		return configErrorf(ErrNegativeValue, "asset %q value %g", a.ID, a.CurrentValue)
	}
	if !isFinite(a.ExpectedReturn) {
		return configErrorf(ErrRateRange, "asset %q expected return %g", a.ID, a.ExpectedReturn)
	}
	if !isNonNegative(a.Volatility) {
		return configErrorf(ErrNegativeValue, "asset %q volatility %g", a.ID, a.Volatility)
	}
	return nil
}

func validateVehicle(v CharitableVehicle) error {
	if !v.Type.Valid() {
		return configErrorf(ErrUnknownOption, "vehicle %q type %q", v.ID, v.Type)
	}
	if !isNonNegative(v.CurrentValue) || !isNonNegative(v.AnnualContribution) {
		return configErrorf(ErrNegativeValue, "vehicle %q", v.ID)
	}
	if !inUnitRange(v.AdminCostRate) {
		return configErrorf(ErrRateRange, "vehicle %q admin cost rate %g", v.ID, v.AdminCostRate)
	}
	if !inUnitRange(v.DistributionRequirement) {
		return configErrorf(ErrRateRange, "vehicle %q distribution requirement %g", v.ID, v.DistributionRequirement)
	}
	return nil
}

func inUnitRange(x float64) bool {
	return x >= 0 && x <= 1
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// isNonNegative rejects NaN and infinities along with negatives
func isNonNegative(x float64) bool {
	return isFinite(x) && x >= 0
}
