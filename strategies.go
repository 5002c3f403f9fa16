package main

// ClassAssumption is the long-run return and volatility assumed for an asset class
type ClassAssumption struct {
	Return     float64
	Volatility float64
}

// DefaultClassAssumptions fill in strategy sleeves that name an allocation
// but leave out the return or volatility for that class
var DefaultClassAssumptions = map[AssetClass]ClassAssumption{
	Equity:        {Return: 0.07, Volatility: 0.18},
	FixedIncome:   {Return: 0.03, Volatility: 0.05},
	RealEstate:    {Return: 0.05, Volatility: 0.14},
	PrivateEquity: {Return: 0.10, Volatility: 0.25},
	Hedge:         {Return: 0.06, Volatility: 0.14},
	Cash:          {Return: 0.01, Volatility: 0.01},
}

// Strategy names shipped with the default configuration
const (
	StrategyConservative = "conservative"
	StrategyBalanced     = "balanced"
	StrategyGrowth       = "growth"
)

// DefaultInvestmentStrategies returns the three house strategies
func DefaultInvestmentStrategies() map[string]InvestmentStrategy {
	return map[string]InvestmentStrategy{
		StrategyConservative: {
			Returns:    classMap(0.06, 0.03, 0.04, 0.08, 0.05, 0.01),
			Volatility: classMap(0.15, 0.05, 0.12, 0.25, 0.12, 0.01),
			Allocation: classMap(0.30, 0.40, 0.10, 0.05, 0.05, 0.10),
		},
		StrategyBalanced: {
			Returns:    classMap(0.07, 0.03, 0.05, 0.10, 0.06, 0.01),
			Volatility: classMap(0.18, 0.05, 0.14, 0.25, 0.14, 0.01),
			Allocation: classMap(0.50, 0.25, 0.10, 0.05, 0.07, 0.03),
		},
		StrategyGrowth: {
			Returns:    classMap(0.08, 0.03, 0.06, 0.12, 0.07, 0.01),
			Volatility: classMap(0.20, 0.05, 0.16, 0.30, 0.16, 0.01),
			Allocation: classMap(0.65, 0.10, 0.10, 0.08, 0.05, 0.02),
		},
	}
}

// classMap builds a per-class map in AssetClasses order
func classMap(values ...float64) map[AssetClass]float64 {
	m := make(map[AssetClass]float64, len(values))
	for i, v := range values {
		m[AssetClasses[i]] = v
	}
	return m
}

// sleeve is one allocation class of a resolved strategy
type sleeve struct {
	class  AssetClass
	weight float64
	mean   float64
	sd     float64
}

// resolvedStrategy is a strategy with its sleeves in draw order
type resolvedStrategy struct {
	name        string
	sleeves     []sleeve
	totalWeight float64
}

// resolveStrategy orders the allocation classes canonically and fills any
// missing return or volatility from the class defaults.
func resolveStrategy(name string, s InvestmentStrategy) resolvedStrategy {
	rs := resolvedStrategy{name: name}

	add := func(class AssetClass, weight float64) {
		def := DefaultClassAssumptions[class]
		mean, ok := s.Returns[class]
		if !ok {
			mean = def.Return
		}
		sd, ok := s.Volatility[class]
		if !ok {
			sd = def.Volatility
		}
		rs.sleeves = append(rs.sleeves, sleeve{class: class, weight: weight, mean: mean, sd: sd})
		rs.totalWeight += weight
	}

	for _, class := range AssetClasses {
		if w, ok := s.Allocation[class]; ok {
			add(class, w)
		}
	}
	return rs
}

// Draw samples one year's blended return. A strategy whose weights sum to
// zero returns 0 after consuming its draws.
func (rs *resolvedStrategy) Draw(s *NormalSampler) float64 {
	total := 0.0
	for _, sl := range rs.sleeves {
		total += s.Draw(sl.mean, sl.sd) * sl.weight
	}
	if rs.totalWeight > 0 {
		return total / rs.totalWeight
	}
	return 0
}

// ExpectedReturn is the weight-normalised mean return
func (rs *resolvedStrategy) ExpectedReturn() float64 {
	if rs.totalWeight <= 0 {
		return 0
	}
	total := 0.0
	for _, sl := range rs.sleeves {
		total += sl.mean * sl.weight
	}
	return total / rs.totalWeight
}
