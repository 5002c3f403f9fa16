package main

// Path is one trial's yearly totals. Index 0 holds the initial values with
// zero distributions; index y holds the totals at the end of year y.
type Path struct {
	Portfolio     []float64
	Charitable    []float64
	Distributions []float64
	Family        []float64
}

func newPath(years int) Path {
	return Path{
		Portfolio:     make([]float64, years+1),
		Charitable:    make([]float64, years+1),
		Distributions: make([]float64, years+1),
		Family:        make([]float64, years+1),
	}
}

// Years is the number of simulated years on the path
func (p Path) Years() int {
	return len(p.Portfolio) - 1
}

func (p Path) FinalFamily() float64 {
	return p.Family[len(p.Family)-1]
}

func (p Path) FinalCharitable() float64 {
	return p.Charitable[len(p.Charitable)-1]
}

// TotalDistributions sums every year's charitable distributions
func (p Path) TotalDistributions() float64 {
	total := 0.0
	for _, d := range p.Distributions {
		total += d
	}
	return total
}

// trialState is the per-trial arena: values are indexed by the stable
// position of the asset or vehicle in the plan
type trialState struct {
	assetValues   []float64
	vehicleValues []float64
	returns       []float64
	shocks        []float64
}

func newTrialState(p *plan) *trialState {
	st := &trialState{
		assetValues:   make([]float64, len(p.assets)),
		vehicleValues: make([]float64, len(p.vehicles)),
		returns:       make([]float64, len(p.assets)),
		shocks:        make([]float64, p.returns.ShockCount()),
	}
	for i, a := range p.assets {
		st.assetValues[i] = a.CurrentValue
	}
	for i, v := range p.vehicles {
		st.vehicleValues[i] = v.CurrentValue
	}
	return st
}

// PortfolioEvolver advances the family portfolio and the charitable vehicles
// one year at a time
type PortfolioEvolver struct {
	plan *plan
}

func NewPortfolioEvolver(p *plan) *PortfolioEvolver {
	return &PortfolioEvolver{plan: p}
}

// Run evolves st over the plan horizon and records the yearly totals
func (e *PortfolioEvolver) Run(st *trialState, s *NormalSampler) Path {
	path := newPath(e.plan.years)
	portfolio, charitable := st.totals()
	e.record(&path, 0, portfolio, charitable, 0)

	for year := 1; year <= e.plan.years; year++ {
		portfolio, charitable, distributions := e.advanceYear(st, s)
		e.record(&path, year, portfolio, charitable, distributions)
	}
	return path
}

// advanceYear applies one year of market returns, contributions, admin
// costs and distributions
func (e *PortfolioEvolver) advanceYear(st *trialState, s *NormalSampler) (portfolio, charitable, distributions float64) {
	p := e.plan

	p.returns.Returns(s, st.shocks, st.returns)
	for i, a := range p.assets {
		r := st.returns[i]
		if a.ImpactFocused {
			r += p.impactPremium
		}
		st.assetValues[i] *= 1 + r
		portfolio += st.assetValues[i]
	}

	for i, v := range p.vehicles {
		strategy := p.vehicleStrategyFor(i)
		if strategy == nil {
			charitable += st.vehicleValues[i]
			continue
		}

		value := st.vehicleValues[i]
		value *= 1 + strategy.Draw(s)
		value += v.AnnualContribution
		value -= value * v.AdminCostRate

		dist := value * v.DistributionRequirement
		if dist < 0 {
			dist = 0
		}
		value -= dist

		st.vehicleValues[i] = value
		charitable += value
		distributions += dist
	}
	return portfolio, charitable, distributions
}

func (e *PortfolioEvolver) record(path *Path, year int, portfolio, charitable, distributions float64) {
	path.Portfolio[year] = portfolio
	path.Charitable[year] = charitable
	path.Distributions[year] = distributions
	path.Family[year] = e.familyValue(portfolio, charitable)
}

// familyValue applies the configured family value convention
func (e *PortfolioEvolver) familyValue(portfolio, charitable float64) float64 {
	if e.plan.convention == SeparateVehicles {
		return portfolio
	}
	return portfolio - charitable
}

func (st *trialState) totals() (portfolio, charitable float64) {
	for _, v := range st.assetValues {
		portfolio += v
	}
	for _, v := range st.vehicleValues {
		charitable += v
	}
	return portfolio, charitable
}
